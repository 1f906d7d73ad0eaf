package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/metrics"
	"github.com/antonio-alexander/go-org-directory/internal/sql"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		shutdownTimeout  time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
		timersEnabled    bool
	}
	ctx      context.Context
	cancel   context.CancelFunc
	validate *validator.Validate
	metrics  *metrics.Manager
	*mux.Router
	*http.Server
	utilities.Logger
	utilities.Timers
	sql.Repository
}

// NewService creates the backend's REST api over a sql.Repository. It also
// serves http.Handler so it can be exercised without listening.
func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	http.Handler
} {
	router := mux.NewRouter()
	s := &service{
		Router:   router,
		Server:   &http.Server{Handler: router},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	s.config.port = "8000"
	s.config.shutdownTimeout = 10 * time.Second
	s.config.allowedMethods = []string{http.MethodGet, http.MethodOptions}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case sql.Repository:
			s.Repository = p
		case *metrics.Manager:
			s.metrics = p
		case utilities.Timers:
			s.Timers = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	if s.Logger == nil {
		s.Logger = utilities.NewLogger()
	}
	s.buildRoutes()
	s.Server.Handler = s.handler()
	return s
}

func (s *service) handler() http.Handler {
	if s.config.corsDisabled {
		return s.Router
	}
	return cors.New(cors.Options{
		AllowedOrigins:   s.config.allowedOrigins,
		AllowCredentials: s.config.allowCredentials,
		AllowedMethods:   s.config.allowedMethods,
		AllowedHeaders:   s.config.allowedHeaders,
		Debug:            s.config.corsDebug,
	}).Handler(s.Router)
}

func (s *service) launchServer() error {
	started := make(chan struct{})
	chErr := make(chan error, 1)
	s.Add(1)
	go func() {
		defer s.WaitGroup.Done()
		defer close(chErr)

		close(started)
		if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			chErr <- err
		}
	}()
	<-started
	select {
	case err := <-chErr:
		//KIM: here we're accounting for a situation where the server closes unexexpectedly
		// but quickly (within a second of starting); this allows us to respond to errors such as
		// the port being already used
		return err
	case <-time.After(time.Second):
		s.Info(s.ctx, "started server: %s", s.Server.Addr)
		return nil
	}
}

func (s *service) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.RLock()
	handler := s.Server.Handler
	s.RUnlock()
	handler.ServeHTTP(writer, request)
}

func (s *service) endpointDefault() func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprintf(writer,
			"go-org-directory\n"+
				"Version: \"%s\"\n"+
				"Git Commit: \"%s\"\n"+
				"Git Branch: \"%s\"\n",
			Version, GitCommit, GitBranch)
	}
}

// pageRequest reads limit and offset, defaulting them the way the
// paginator does, and validates them.
func (s *service) pageRequest(request *http.Request) (data.PageRequest, error) {
	var pageRequest data.PageRequest

	if err := pageRequest.FromParams(request.URL.Query()); err != nil {
		return data.PageRequest{}, err
	}
	if err := s.validate.Struct(pageRequest); err != nil {
		return data.PageRequest{}, err
	}
	return pageRequest, nil
}

func (s *service) timed(ctx context.Context, group string) func() {
	if !s.config.timersEnabled || s.Timers == nil {
		return func() {}
	}
	index := s.Timers.Start(group)
	return func() {
		elapsedTime := s.Timers.Stop(group, index)
		s.Trace(ctx, "%s took %v", group, time.Duration(elapsedTime))
	}
}

func (s *service) endpointDepartmentsList(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.timed(ctx, "departments_list")()
	pageRequest, err := s.pageRequest(request)
	if err != nil {
		handleError(ctx, s.Logger, writer, errors.Join(ErrInvalidPagination, err))
		return
	}
	page, err := s.DepartmentsList(ctx, pageRequest)
	if err != nil {
		handleError(ctx, s.Logger, writer, err)
		return
	}
	handleResponse(ctx, s.Logger, writer, page)
	s.Trace(ctx, "executed departments_list: %s", pageRequest.ToKey())
}

func (s *service) endpointDepartmentRead(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.timed(ctx, "department_read")()
	id, err := idFromPath(mux.Vars(request), data.PathDepartmentId)
	if err != nil {
		handleError(ctx, s.Logger, writer, err)
		return
	}
	department, err := s.DepartmentRead(ctx, id)
	if err != nil {
		handleError(ctx, s.Logger, writer, err)
		return
	}
	handleResponse(ctx, s.Logger, writer, department)
	s.Trace(ctx, "executed department_read: %d", id)
}

func (s *service) endpointDepartmentEmployeesList(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.timed(ctx, "department_employees_list")()
	id, err := idFromPath(mux.Vars(request), data.PathDepartmentId)
	if err != nil {
		handleError(ctx, s.Logger, writer, err)
		return
	}
	pageRequest, err := s.pageRequest(request)
	if err != nil {
		handleError(ctx, s.Logger, writer, errors.Join(ErrInvalidPagination, err))
		return
	}
	page, err := s.DepartmentEmployeesList(ctx, id, pageRequest)
	if err != nil {
		handleError(ctx, s.Logger, writer, err)
		return
	}
	handleResponse(ctx, s.Logger, writer, page)
	s.Trace(ctx, "executed department_employees_list: %d, %s", id, pageRequest.ToKey())
}

func (s *service) endpointEmployeesList(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.timed(ctx, "employees_list")()
	pageRequest, err := s.pageRequest(request)
	if err != nil {
		handleError(ctx, s.Logger, writer, errors.Join(ErrInvalidPagination, err))
		return
	}
	page, err := s.EmployeesList(ctx, pageRequest)
	if err != nil {
		handleError(ctx, s.Logger, writer, err)
		return
	}
	handleResponse(ctx, s.Logger, writer, page)
	s.Trace(ctx, "executed employees_list: %s", pageRequest.ToKey())
}

func (s *service) endpointEmployeeRead(writer http.ResponseWriter, request *http.Request) {
	ctx := internal.CtxWithCorrelationId(request.Context(),
		getCorrelationId(request))
	defer s.timed(ctx, "employee_read")()
	id, err := idFromPath(mux.Vars(request), data.PathEmployeeId)
	if err != nil {
		handleError(ctx, s.Logger, writer, err)
		return
	}
	employee, err := s.EmployeeRead(ctx, id)
	if err != nil {
		handleError(ctx, s.Logger, writer, err)
		return
	}
	handleResponse(ctx, s.Logger, writer, employee)
	s.Trace(ctx, "executed employee_read: %d", id)
}

func (s *service) buildRoutes() {
	s.Router.Use(s.metricsMiddleware)
	s.Router.HandleFunc("/", s.endpointDefault()).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteDepartments, s.endpointDepartmentsList).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteDepartmentsId, s.endpointDepartmentRead).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteDepartmentEmployees, s.endpointDepartmentEmployeesList).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployees, s.endpointEmployeesList).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesId, s.endpointEmployeeRead).Methods(http.MethodGet)
	if s.metrics != nil {
		s.Router.Handle(data.RouteMetrics, s.metrics.Handler()).Methods(http.MethodGet)
	}
}

func (s *service) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(writer, request)
			return
		}
		route := request.URL.Path
		if currentRoute := mux.CurrentRoute(request); currentRoute != nil {
			if template, err := currentRoute.GetPathTemplate(); err == nil {
				route = template
			}
		}
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		tStart := time.Now()
		next.ServeHTTP(recorder, request)
		s.metrics.RecordHTTPRequest(route, request.Method, recorder.status,
			time.Since(tStart))
	})
}

func (s *service) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port := envs["SERVICE_PORT"]; port != "" {
		s.config.port = port
	}
	if shutdownTimeoutString, ok := envs["SERVICE_SHUTDOWN_TIMEOUT"]; ok {
		if shutdownTimeoutInt, err := strconv.Atoi(shutdownTimeoutString); err == nil {
			if timeout := time.Duration(shutdownTimeoutInt) * time.Second; timeout > 0 {
				s.config.shutdownTimeout = timeout
			}
		}
	}
	if allowCredentialsString, ok := envs["SERVICE_CORS_ALLOW_CREDENTIALS"]; ok {
		if allowCredentials, err := strconv.ParseBool(allowCredentialsString); err == nil {
			s.config.allowCredentials = allowCredentials
		}
	}
	if allowedOrigins := envs["SERVICE_CORS_ALLOWED_ORIGINS"]; allowedOrigins != "" {
		s.config.allowedOrigins = strings.Split(allowedOrigins, ",")
	}
	if allowedMethods := envs["SERVICE_CORS_ALLOWED_METHODS"]; allowedMethods != "" {
		s.config.allowedMethods = strings.Split(allowedMethods, ",")
	}
	if allowedHeaders := envs["SERVICE_CORS_ALLOWED_HEADERS"]; allowedHeaders != "" {
		s.config.allowedHeaders = strings.Split(allowedHeaders, ",")
	}
	if corsDisabledString, ok := envs["SERVICE_CORS_DISABLED"]; ok {
		if corsDisabled, err := strconv.ParseBool(corsDisabledString); err == nil {
			s.config.corsDisabled = corsDisabled
		}
	}
	if corsDebug, ok := envs["SERVICE_CORS_DEBUG"]; ok {
		if corsDebug, err := strconv.ParseBool(corsDebug); err == nil {
			s.config.corsDebug = corsDebug
		}
	}
	if timersEnabled := envs["SERVICE_TIMERS_ENABLED"]; timersEnabled != "" {
		s.config.timersEnabled, _ = strconv.ParseBool(timersEnabled)
	}
	s.Server.Handler = s.handler()
	return nil
}

func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.Repository == nil {
		return errors.New("no repository configured")
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.Server.Addr = net.JoinHostPort(s.config.address, s.config.port)
	return s.launchServer()
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.cancel == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	if err := s.Server.Shutdown(ctx); err != nil {
		s.Error(ctx, "error while shutting down the server: %s", err)
	}
	s.cancel()
	s.Wait()
	s.cancel = nil
	return nil
}
