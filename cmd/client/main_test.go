package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/antonio-alexander/go-org-directory/internal/data"

	"github.com/stretchr/testify/assert"
)

func newBackend(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		default:
			w.WriteHeader(http.StatusInternalServerError)
		case data.RouteDepartments:
			_, _ = w.Write([]byte(`{"items":[{"id":1,"title":"Engineering","parent_id":null,"children":[]},{"id":2,"title":"Backend","parent_id":1,"children":[]}],"count":25}`))
		case "/api/v1/departments/2/employees":
			_, _ = w.Write([]byte(`{"items":[{"id":7,"first_name":"Ivan","last_name":"Petrov","middle_name":"Sergeevich","amount":120000,"hire_date":"2023-04-01T00:00:00","position_title":"Team Lead","department_id":2}],"count":1}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, envs map[string]string, args ...string) (string, error) {
	var stdout bytes.Buffer

	err := Main(args, envs, &stdout, make(chan os.Signal, 1))
	return stdout.String(), err
}

func TestDepartmentsJson(t *testing.T) {
	server := newBackend(t)

	output, err := run(t, map[string]string{"BACKEND_BASE_URL": server.URL},
		"departments", "--limit", "2", "--offset", "0", "--output", "json")
	assert.Nil(t, err)
	var page data.Page[data.Department]
	err = json.Unmarshal([]byte(output), &page)
	assert.Nil(t, err)
	assert.Equal(t, 25, page.Count)
	assert.Len(t, page.Items, 2)
}

func TestEmployeesTable(t *testing.T) {
	server := newBackend(t)

	output, err := run(t, map[string]string{}, "employees", "2",
		"--base-url", server.URL, "--no-color")
	assert.Nil(t, err)
	assert.Contains(t, output, "POSITION")
	assert.Contains(t, output, "Petrov Ivan Sergeevich")
	assert.Contains(t, output, "Team Lead")
	assert.Contains(t, output, "2023-04-01")
	assert.Contains(t, output, "1-1 of 1")
}

func TestFailureIsEmpty(t *testing.T) {
	server := newBackend(t)

	output, err := run(t, map[string]string{"BACKEND_BASE_URL": server.URL, "LOG_LEVEL": "error"},
		"employees", "404", "-o", "json")
	assert.Nil(t, err)
	assert.JSONEq(t, `{"items":[],"count":0}`, output)

	output, err = run(t, map[string]string{"BACKEND_BASE_URL": server.URL},
		"employees", "404", "--no-color")
	assert.Nil(t, err)
	assert.Contains(t, output, "no items (count: 0)")
}

func TestInvalidUsage(t *testing.T) {
	server := newBackend(t)
	envs := map[string]string{"BACKEND_BASE_URL": server.URL}

	_, err := run(t, envs, "employees")
	assert.NotNil(t, err)
	_, err = run(t, envs, "departments", "--output", "xml")
	assert.NotNil(t, err)
	_, err = run(t, map[string]string{"BACKEND_BASE_URL": "localhost:8000"}, "departments")
	assert.NotNil(t, err)
	_, err = run(t, map[string]string{"CACHE_TYPE": "memcached"}, "departments")
	assert.NotNil(t, err)
}

func TestCachedDepartments(t *testing.T) {
	server := newBackend(t)

	output, err := run(t, map[string]string{
		"BACKEND_BASE_URL": server.URL,
		"CACHE_TYPE":       "memory",
		"CACHE_DISABLED":   "false",
	}, "departments", "-o", "json")
	assert.Nil(t, err)
	assert.Contains(t, output, "Engineering")
}

func TestBaseUrlFlag(t *testing.T) {
	server := newBackend(t)

	output, err := run(t, nil, "departments", "--base-url", server.URL, "-o", "json")
	assert.Nil(t, err)
	assert.Contains(t, output, "Engineering")

	envs := map[string]string{"BACKEND_BASE_URL": "http://localhost:1"}
	_, err = run(t, envs, "departments", "--base-url", server.URL, "-o", "json")
	assert.Nil(t, err)
	assert.Equal(t, map[string]string{"BACKEND_BASE_URL": "http://localhost:1"}, envs)
}
