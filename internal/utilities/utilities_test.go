package utilities_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buffer bytes.Buffer

	logger := utilities.NewLogger(&buffer)
	ctx := internal.CtxWithCorrelationId(context.TODO(), "correlation")

	// unconfigured logger only emits errors
	logger.Info(ctx, "info %d", 1)
	assert.Equal(t, 0, buffer.Len())
	logger.Error(ctx, "error %d\n", 1)
	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if assert.Len(t, lines, 1) {
		var entry map[string]any

		err := json.Unmarshal([]byte(lines[0]), &entry)
		assert.Nil(t, err)
		assert.Equal(t, "error", entry["level"])
		assert.Equal(t, "error 1", entry["message"])
		assert.Equal(t, "correlation", entry["correlation_id"])
	}

	buffer.Reset()
	err := logger.Configure(map[string]string{"LOG_LEVEL": "debug"})
	assert.Nil(t, err)
	logger.Trace(context.TODO(), "trace")
	logger.Debug(context.TODO(), "debug")
	logger.Info(context.TODO(), "info")
	lines = strings.Split(strings.TrimSpace(buffer.String()), "\n")
	assert.Len(t, lines, 2)
	assert.NotContains(t, buffer.String(), "correlation_id")

	err = logger.Configure(map[string]string{"LOG_FORMAT": "xml"})
	assert.NotNil(t, err)
	err = logger.Configure(map[string]string{"LOG_FORMAT": "console"})
	assert.Nil(t, err)
}

func TestCounter(t *testing.T) {
	var wg sync.WaitGroup

	counter := utilities.NewCounter()
	hit, miss := counter.Read("departments")
	assert.Equal(t, -1, hit)
	assert.Equal(t, -1, miss)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				counter.IncrementHit("departments")
				return
			}
			counter.IncrementMiss("departments")
		}(i)
	}
	wg.Wait()
	hit, miss = counter.Read("departments")
	assert.Equal(t, 5, hit)
	assert.Equal(t, 5, miss)
	counters := counter.ReadAll()
	assert.Equal(t, 5, counters.CounterHits["departments"])
	assert.InDelta(t, 50.0, counters.HitRatio(), 0.001)
	counter.Reset()
	hit, _ = counter.Read("departments")
	assert.Equal(t, -1, hit)
}

func TestTimers(t *testing.T) {
	timers := utilities.NewTimers()

	index := timers.Start("departments")
	time.Sleep(time.Millisecond)
	elapsed := timers.Stop("departments", index)
	assert.Greater(t, elapsed, int64(0))
	assert.Equal(t, int64(-1), timers.Stop("departments", index+1))
	assert.Equal(t, int64(-1), timers.Stop("employees", 0))

	// running timers aren't averaged
	_ = timers.Start("departments")
	all := timers.ReadAll()
	assert.Equal(t, elapsed, all.Totals["departments"])
	assert.Equal(t, elapsed, all.Averages["departments"])

	timers.Clear()
	assert.Len(t, timers.ReadAll().Totals, 0)
}
