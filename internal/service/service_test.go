package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/antonio-alexander/go-org-directory/internal/client"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/logic"
	"github.com/antonio-alexander/go-org-directory/internal/metrics"
	"github.com/antonio-alexander/go-org-directory/internal/service"
	"github.com/antonio-alexander/go-org-directory/internal/sql"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/stretchr/testify/assert"
)

var (
	envs = map[string]string{
		"SERVICE_ADDRESS":                "localhost",
		"SERVICE_SHUTDOWN_TIMEOUT":       "5",
		"SERVICE_CORS_ALLOW_CREDENTIALS": "",
		"SERVICE_CORS_ALLOWED_ORIGINS":   "",
		"SERVICE_CORS_ALLOWED_METHODS":   "",
		"SERVICE_CORS_DISABLED":          "",
		"SERVICE_CORS_DEBUG":             "",
		"SERVICE_TIMERS_ENABLED":         "true",
	}
)

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 && strings.HasPrefix(s[0], "SERVICE_") {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

// repository is an in-memory sql.Repository
type repository struct {
	sync.RWMutex
	departments []data.Department
	employees   []data.Employee
	err         error
}

func newRepository(nDepartments, nEmployees int) *repository {
	r := &repository{}
	for i := 1; i <= nDepartments; i++ {
		department := data.Department{
			Id:       int64(i),
			Title:    fmt.Sprintf("department %d", i),
			Children: []data.Department{},
		}
		if i > 1 {
			parentId := int64(1)
			department.ParentId = &parentId
		}
		r.departments = append(r.departments, department)
	}
	for i := 1; i <= nEmployees; i++ {
		r.employees = append(r.employees, data.Employee{
			Id:           int64(i),
			FirstName:    fmt.Sprintf("first %d", i),
			LastName:     fmt.Sprintf("last %d", i),
			Amount:       int64(1000 * i),
			DepartmentId: int64(i%nDepartments + 1),
		})
	}
	return r
}

func window[T any](items []T, pageRequest data.PageRequest) *data.Page[T] {
	page := &data.Page[T]{Items: []T{}, Count: len(items)}
	for i := pageRequest.Offset; i < len(items) && i < pageRequest.Offset+pageRequest.Limit; i++ {
		page.Items = append(page.Items, items[i])
	}
	return page
}

func (r *repository) DepartmentsList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error) {
	r.RLock()
	defer r.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	return window(r.departments, pageRequest), nil
}

func (r *repository) DepartmentRead(ctx context.Context, id int64) (*data.Department, error) {
	r.RLock()
	defer r.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	for _, department := range r.departments {
		if department.Id != id {
			continue
		}
		for _, child := range r.departments {
			if child.ParentId != nil && *child.ParentId == id {
				department.Children = append(department.Children, child)
			}
		}
		return &department, nil
	}
	return nil, sql.ErrDepartmentNotFound
}

func (r *repository) DepartmentEmployeesList(ctx context.Context, departmentId int64, pageRequest data.PageRequest) (*data.Page[data.Employee], error) {
	r.RLock()
	defer r.RUnlock()

	var employees []data.Employee

	if r.err != nil {
		return nil, r.err
	}
	for _, employee := range r.employees {
		if employee.DepartmentId == departmentId {
			employees = append(employees, employee)
		}
	}
	return window(employees, pageRequest), nil
}

func (r *repository) EmployeesList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Employee], error) {
	r.RLock()
	defer r.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	return window(r.employees, pageRequest), nil
}

func (r *repository) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	r.RLock()
	defer r.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	for _, employee := range r.employees {
		if employee.Id == id {
			return &employee, nil
		}
	}
	return nil, sql.ErrEmployeeNotFound
}

type serviceTest struct {
	*httptest.Server
	repository *repository
	metrics    *metrics.Manager
	timers     utilities.Timers
}

func newServiceTest(t *testing.T) *serviceTest {
	repository := newRepository(5, 100)
	manager := metrics.NewManager()
	timers := utilities.NewTimers()
	logger := utilities.NewLogger(io.Discard)
	s := service.NewService(repository, manager, timers, logger)
	err := s.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure service")
	}
	server := httptest.NewServer(s)
	t.Cleanup(server.Close)
	return &serviceTest{
		Server:     server,
		repository: repository,
		metrics:    manager,
		timers:     timers,
	}
}

func (s *serviceTest) get(t *testing.T, uri string, v any) int {
	response, err := http.Get(s.URL + uri)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to execute request")
	}
	defer response.Body.Close()
	bytes, err := io.ReadAll(response.Body)
	assert.Nil(t, err)
	if v != nil {
		err = json.Unmarshal(bytes, v)
		assert.Nil(t, err, string(bytes))
	}
	return response.StatusCode
}

func TestDepartments(t *testing.T) {
	s := newServiceTest(t)

	// list with defaults
	var page data.Page[data.Department]
	statusCode := s.get(t, data.RouteDepartments, &page)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, 5, page.Count)
	assert.Len(t, page.Items, 5)

	// list a window
	page = data.Page[data.Department]{}
	statusCode = s.get(t, data.RouteDepartments+"?limit=2&offset=3", &page)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, 5, page.Count)
	if assert.Len(t, page.Items, 2) {
		assert.Equal(t, int64(4), page.Items[0].Id)
	}

	// read with children
	var department data.Department
	statusCode = s.get(t, fmt.Sprintf(data.RouteDepartmentsIdf, "1"), &department)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Nil(t, department.ParentId)
	assert.Len(t, department.Children, 4)

	// read a department that doesn't exist
	var errorResponse data.ErrorResponse
	statusCode = s.get(t, fmt.Sprintf(data.RouteDepartmentsIdf, "42"), &errorResponse)
	assert.Equal(t, http.StatusGone, statusCode)
	assert.Equal(t, data.ErrorResponse{Ok: false, ErrorCode: data.ErrorCodeDepartmentNotFound}, errorResponse)

	// read with an id that isn't an integer
	errorResponse = data.ErrorResponse{}
	statusCode = s.get(t, fmt.Sprintf(data.RouteDepartmentsIdf, "abc"), &errorResponse)
	assert.Equal(t, http.StatusUnprocessableEntity, statusCode)
	assert.Equal(t, data.ErrorCodeInvalidId, errorResponse.ErrorCode)
}

func TestDepartmentEmployees(t *testing.T) {
	s := newServiceTest(t)

	var page data.Page[data.Employee]
	statusCode := s.get(t, fmt.Sprintf(data.RouteDepartmentEmployeesf, "2")+"?limit=5&offset=0", &page)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, 20, page.Count)
	assert.Len(t, page.Items, 5)
	for _, employee := range page.Items {
		assert.Equal(t, int64(2), employee.DepartmentId)
	}

	// a department without employees is an empty page
	page = data.Page[data.Employee]{}
	statusCode = s.get(t, fmt.Sprintf(data.RouteDepartmentEmployeesf, "99"), &page)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, 0, page.Count)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestEmployees(t *testing.T) {
	s := newServiceTest(t)

	var page data.Page[data.Employee]
	statusCode := s.get(t, data.RouteEmployees+"?offset=95", &page)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, 100, page.Count)
	assert.Len(t, page.Items, 5)

	var employee data.Employee
	statusCode = s.get(t, fmt.Sprintf(data.RouteEmployeesIdf, 7), &employee)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, "first 7", employee.FirstName)

	var errorResponse data.ErrorResponse
	statusCode = s.get(t, fmt.Sprintf(data.RouteEmployeesIdf, 1000), &errorResponse)
	assert.Equal(t, http.StatusGone, statusCode)
	assert.Equal(t, data.ErrorCodeEmployeeNotFound, errorResponse.ErrorCode)
}

func TestInvalidPagination(t *testing.T) {
	s := newServiceTest(t)

	for _, query := range []string{
		"?limit=0",
		"?limit=-1",
		"?offset=-1",
		"?limit=ten",
		"?offset=1.5",
	} {
		for _, route := range []string{
			data.RouteDepartments,
			fmt.Sprintf(data.RouteDepartmentEmployeesf, "1"),
			data.RouteEmployees,
		} {
			var errorResponse data.ErrorResponse

			statusCode := s.get(t, route+query, &errorResponse)
			assert.Equal(t, http.StatusUnprocessableEntity, statusCode, route+query)
			assert.Equal(t, data.ErrorCodeInvalidPagination, errorResponse.ErrorCode)
		}
	}
}

func TestRepositoryError(t *testing.T) {
	s := newServiceTest(t)
	s.repository.Lock()
	s.repository.err = errors.New("connection refused")
	s.repository.Unlock()

	var errorResponse data.ErrorResponse
	statusCode := s.get(t, data.RouteDepartments, &errorResponse)
	assert.Equal(t, http.StatusInternalServerError, statusCode)
	assert.Equal(t, data.ErrorCodeInternal, errorResponse.ErrorCode)
	assert.False(t, errorResponse.Ok)
	assert.Empty(t, errorResponse.Message)
}

func TestMetricsAndVersion(t *testing.T) {
	s := newServiceTest(t)

	_ = s.get(t, data.RouteDepartments, nil)
	_ = s.get(t, fmt.Sprintf(data.RouteDepartmentsIdf, "42"), nil)

	response, err := http.Get(s.URL + data.RouteMetrics)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to read metrics")
	}
	defer response.Body.Close()
	bytes, err := io.ReadAll(response.Body)
	assert.Nil(t, err)
	assert.Contains(t, string(bytes), `route="/api/v1/departments/{department_id}"`)
	assert.Contains(t, string(bytes), `status="410"`)

	response, err = http.Get(s.URL + "/")
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to read version")
	}
	defer response.Body.Close()
	bytes, err = io.ReadAll(response.Body)
	assert.Nil(t, err)
	assert.Contains(t, string(bytes), "Version:")

	assert.Contains(t, s.timers.ReadAll().Totals, "departments_list")
}

func TestCors(t *testing.T) {
	s := newServiceTest(t)

	request, err := http.NewRequest(http.MethodGet, s.URL+data.RouteDepartments, nil)
	assert.Nil(t, err)
	request.Header.Set("Origin", "http://localhost:5173")
	response, err := http.DefaultClient.Do(request)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to execute request")
	}
	defer response.Body.Close()
	assert.Equal(t, "*", response.Header.Get("Access-Control-Allow-Origin"))
}

// TestFetcher walks the fetcher against the backend end to end.
func TestFetcher(t *testing.T) {
	s := newServiceTest(t)

	c := client.NewClient()
	err := c.Configure(map[string]string{"BACKEND_BASE_URL": s.URL})
	assert.Nil(t, err)
	err = c.Open(context.TODO())
	assert.Nil(t, err)
	defer c.Close(context.TODO())
	l := logic.NewLogic(c, utilities.NewLogger(io.Discard))

	departments := l.FetchDepartments(context.TODO(), data.PageRequest{Limit: 10, Offset: 0})
	assert.Equal(t, 5, departments.Count)
	employees := l.FetchDepartmentEmployees(context.TODO(), data.NewDepartmentId(3),
		data.PageRequest{Limit: 20, Offset: 0})
	assert.Equal(t, 20, employees.Count)
	assert.Len(t, employees.Items, 20)

	// the backend rejects limit zero, which the fetcher passes through
	employees = l.FetchDepartmentEmployees(context.TODO(), data.NewDepartmentId(3),
		data.PageRequest{Limit: 0, Offset: 0})
	assert.Equal(t, data.EmptyPage[data.Employee](), employees)
}

func TestOpenClose(t *testing.T) {
	listener, err := net.Listen("tcp", "localhost:0")
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to find a free port")
	}
	_, port, _ := net.SplitHostPort(listener.Addr().String())
	_ = listener.Close()

	ctx := context.TODO()
	s := service.NewService(newRepository(1, 1), utilities.NewLogger(io.Discard))
	err = s.Configure(map[string]string{
		"SERVICE_ADDRESS": "localhost",
		"SERVICE_PORT":    port,
	})
	assert.Nil(t, err)
	err = s.Open(ctx)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open service")
	}
	response, err := http.Get("http://" + net.JoinHostPort("localhost", port) + data.RouteDepartments)
	if assert.Nil(t, err) {
		_ = response.Body.Close()
		assert.Equal(t, http.StatusOK, response.StatusCode)
	}
	err = s.Close(ctx)
	assert.Nil(t, err)

	// a service without a repository can't be opened
	err = service.NewService().Open(ctx)
	assert.NotNil(t, err)
}
