package data_test

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal/data"

	"github.com/stretchr/testify/assert"
)

func TestEmptyPage(t *testing.T) {
	page := data.EmptyPage[data.Department]()
	assert.NotNil(t, page.Items)
	assert.Len(t, page.Items, 0)
	assert.Equal(t, 0, page.Count)

	bytes, err := json.Marshal(page)
	assert.Nil(t, err)
	assert.JSONEq(t, `{"items":[],"count":0}`, string(bytes))
}

func TestPageRequestParams(t *testing.T) {
	// limit of zero isn't clamped
	params := data.PageRequest{Limit: 0, Offset: 0}.ToParams()
	assert.Equal(t, "limit=0&offset=0", params.Encode())

	params = data.PageRequest{Limit: 20, Offset: 40}.ToParams()
	assert.Equal(t, "limit=20&offset=40", params.Encode())

	var pageRequest data.PageRequest
	err := pageRequest.FromParams(url.Values{})
	assert.Nil(t, err)
	assert.Equal(t, data.PageRequest{Limit: data.DefaultLimit, Offset: 0}, pageRequest)

	err = pageRequest.FromParams(url.Values{"limit": {"5"}, "offset": {"10"}})
	assert.Nil(t, err)
	assert.Equal(t, data.PageRequest{Limit: 5, Offset: 10}, pageRequest)

	err = pageRequest.FromParams(url.Values{"limit": {"five"}})
	assert.NotNil(t, err)

	assert.Equal(t, "limit=5,offset=10", data.PageRequest{Limit: 5, Offset: 10}.ToKey())
}

func TestDepartmentId(t *testing.T) {
	assert.Equal(t, data.DepartmentId("5"), data.NewDepartmentId(5))
	assert.Equal(t, data.DepartmentId("5"), data.NewDepartmentId(int64(5)))
	assert.Equal(t, data.DepartmentId("sales"), data.NewDepartmentId("sales"))
	assert.Equal(t, "a%2Fb", data.NewDepartmentId("a/b").PathEscaped())

	i, err := data.NewDepartmentId(42).Int64()
	assert.Nil(t, err)
	assert.Equal(t, int64(42), i)
	_, err = data.NewDepartmentId("sales").Int64()
	assert.NotNil(t, err)
}

func TestEmployeeHireDate(t *testing.T) {
	cases := map[string]time.Time{
		`"2026-01-28T00:00:00Z"`:       time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC),
		`"2026-01-28T10:30:00"`:        time.Date(2026, 1, 28, 10, 30, 0, 0, time.UTC),
		`"2026-01-28"`:                 time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC),
		`"2026-01-28T10:30:00.123456"`: time.Date(2026, 1, 28, 10, 30, 0, 123456000, time.UTC),
		`"2026-01-28T10:30:00+03:00"`:  time.Date(2026, 1, 28, 7, 30, 0, 0, time.UTC),
	}
	for input, expected := range cases {
		var employee data.Employee

		err := json.Unmarshal([]byte(`{"id":1,"hire_date":`+input+`}`), &employee)
		assert.Nil(t, err, input)
		assert.True(t, expected.Equal(employee.HireDate.Time), input)
	}

	var employee data.Employee
	err := json.Unmarshal([]byte(`{"id":1,"hire_date":"yesterday"}`), &employee)
	assert.NotNil(t, err)
}

func TestEmployeeHireDateCached(t *testing.T) {
	var page, cached data.Page[data.Employee]

	err := json.Unmarshal([]byte(`{"items":[{"id":1,"hire_date":"2026-01-28T10:30:00.123456"},{"id":2,"hire_date":null}],"count":2}`), &page)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to decode page")
	}
	bytes, err := page.MarshalBinary()
	assert.Nil(t, err)
	assert.Contains(t, string(bytes), `"hire_date":"2026-01-28T10:30:00.123456Z"`)
	assert.Contains(t, string(bytes), `"hire_date":null`)
	err = cached.UnmarshalBinary(bytes)
	assert.Nil(t, err)
	if assert.Len(t, cached.Items, 2) {
		assert.True(t, page.Items[0].HireDate.Equal(cached.Items[0].HireDate.Time))
		assert.True(t, cached.Items[1].HireDate.IsZero())
	}
}

func TestCacheCountersHitRatio(t *testing.T) {
	counters := &data.CacheCounters{}
	assert.Equal(t, float64(0), counters.HitRatio())

	counters = &data.CacheCounters{
		CounterHits:   map[string]int{"a": 3},
		CounterMisses: map[string]int{"a": 1, "b": 4},
	}
	assert.InDelta(t, 37.5, counters.HitRatio(), 0.001)
}
