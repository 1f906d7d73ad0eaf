package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/cache"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/pkg/errors"
)

// Client is a typed wrapper around the backend's REST api. Errors are
// classified as ErrTransport, ErrStatus or ErrDecode.
type Client interface {
	DepartmentsList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error)
	DepartmentRead(ctx context.Context, departmentId data.DepartmentId) (*data.Department, error)
	DepartmentEmployeesList(ctx context.Context, departmentId data.DepartmentId,
		pageRequest data.PageRequest) (*data.Page[data.Employee], error)
	EmployeesList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Employee], error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
}

type client struct {
	sync.RWMutex
	config struct {
		baseUrl       string
		timeout       int64
		sslCaFile     string
		sslCrtFile    string
		sslKeyFile    string
		cacheDisabled bool
	}
	address string
	cache   cache.Cache
	counter utilities.Counter
	utilities.Logger
	*http.Client
}

func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{Client: &http.Client{}}
	c.config.cacheDisabled = true
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case cache.Cache:
			c.cache = p
			c.config.cacheDisabled = false
		case utilities.Counter:
			c.counter = p
		case utilities.Logger:
			c.Logger = p
		}
	}
	if c.Logger == nil {
		c.Logger = utilities.NewLogger(io.Discard)
	}
	return c
}

func (c *client) doRequest(ctx context.Context, uri string, params url.Values, v any) error {
	if len(params) > 0 {
		uri = uri + "?" + params.Encode()
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	request.Header.Set("Accept", data.ContentTypeApplicationJson)
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		request.Header.Set(data.HeaderCorrelationId, correlationId)
	}
	response, err := c.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer response.Body.Close()
	bytes, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		var errorResponse data.ErrorResponse

		_ = json.Unmarshal(bytes, &errorResponse)
		return &StatusError{
			StatusCode: response.StatusCode,
			ErrorCode:  errorResponse.ErrorCode,
			Body:       string(bytes),
		}
	}
	if err := json.Unmarshal(bytes, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func (c *client) uri(route string, v ...any) string {
	c.RLock()
	defer c.RUnlock()

	if len(v) > 0 {
		route = fmt.Sprintf(route, v...)
	}
	return c.address + route
}

func (c *client) cacheEnabled() bool {
	return c.cache != nil && !c.config.cacheDisabled
}

func (c *client) countHit(key string) {
	if c.counter != nil {
		c.counter.IncrementHit(key)
	}
}

func (c *client) countMiss(key string) {
	if c.counter != nil {
		c.counter.IncrementMiss(key)
	}
}

func (c *client) Configure(envs map[string]string) error {
	if baseUrl, ok := envs["BACKEND_BASE_URL"]; ok {
		c.config.baseUrl = baseUrl
	}
	if timeout := envs["CLIENT_TIMEOUT"]; timeout != "" {
		i, err := strconv.ParseInt(timeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid CLIENT_TIMEOUT")
		}
		c.config.timeout = i
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	if cacheDisabled := envs["CACHE_DISABLED"]; cacheDisabled != "" && c.cache != nil {
		c.config.cacheDisabled, _ = strconv.ParseBool(cacheDisabled)
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	baseUrl, err := url.Parse(c.config.baseUrl)
	if err != nil {
		return errors.Wrap(err, "invalid BACKEND_BASE_URL")
	}
	switch baseUrl.Scheme {
	default:
		return errors.Errorf("unsupported protocol: %q", baseUrl.Scheme)
	case "http", "https":
	}
	if baseUrl.Host == "" {
		return errors.Errorf("no host in BACKEND_BASE_URL: %q", c.config.baseUrl)
	}
	c.address = strings.TrimSuffix(baseUrl.String(), "/")
	if c.cache == nil || c.config.cacheDisabled {
		c.Info(ctx, "client: cache disabled")
	}
	c.Client.Timeout = time.Duration(c.config.timeout) * time.Second
	transport, err := getTransport(c.config.sslCaFile, c.config.sslCrtFile,
		c.config.sslKeyFile)
	if err != nil {
		return err
	}
	c.Client.Transport = transport
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	if transport, ok := c.Client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

func (c *client) DepartmentsList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error) {
	key := cache.DepartmentsKey(pageRequest)
	if c.cacheEnabled() {
		page, err := c.cache.DepartmentsRead(ctx, pageRequest)
		if err == nil {
			c.countHit(key)
			c.Trace(ctx, "cache hit for %s", key)
			return page, nil
		}
		c.countMiss(key)
		c.logCacheReadError(ctx, key, err)
	}
	page := &data.Page[data.Department]{}
	if err := c.doRequest(ctx, c.uri(data.RouteDepartments),
		pageRequest.ToParams(), page); err != nil {
		return nil, err
	}
	if c.cacheEnabled() {
		if err := c.cache.DepartmentsWrite(ctx, pageRequest, page); err != nil {
			c.Debug(ctx, "error while writing %s to cache: %s", key, err)
		}
	}
	return page, nil
}

func (c *client) DepartmentRead(ctx context.Context, departmentId data.DepartmentId) (*data.Department, error) {
	department := &data.Department{}
	if err := c.doRequest(ctx, c.uri(data.RouteDepartmentsIdf,
		departmentId.PathEscaped()), nil, department); err != nil {
		return nil, err
	}
	return department, nil
}

func (c *client) DepartmentEmployeesList(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest) (*data.Page[data.Employee], error) {
	key := cache.DepartmentEmployeesKey(departmentId, pageRequest)
	if c.cacheEnabled() {
		page, err := c.cache.DepartmentEmployeesRead(ctx, departmentId, pageRequest)
		if err == nil {
			c.countHit(key)
			c.Trace(ctx, "cache hit for %s", key)
			return page, nil
		}
		c.countMiss(key)
		c.logCacheReadError(ctx, key, err)
	}
	page := &data.Page[data.Employee]{}
	if err := c.doRequest(ctx, c.uri(data.RouteDepartmentEmployeesf,
		departmentId.PathEscaped()), pageRequest.ToParams(), page); err != nil {
		return nil, err
	}
	if c.cacheEnabled() {
		if err := c.cache.DepartmentEmployeesWrite(ctx, departmentId, pageRequest, page); err != nil {
			c.Debug(ctx, "error while writing %s to cache: %s", key, err)
		}
	}
	return page, nil
}

func (c *client) EmployeesList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Employee], error) {
	page := &data.Page[data.Employee]{}
	if err := c.doRequest(ctx, c.uri(data.RouteEmployees),
		pageRequest.ToParams(), page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *client) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	employee := &data.Employee{}
	if err := c.doRequest(ctx, c.uri(data.RouteEmployeesIdf, id), nil, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// logCacheReadError keeps cache failures below Error; a fetch that then
// fails is logged once by its caller.
func (c *client) logCacheReadError(ctx context.Context, key string, err error) {
	switch {
	default:
		c.Debug(ctx, "error while reading %s from cache: %s", key, err)
	case errors.Is(err, cache.ErrPageNotCached), errors.Is(err, cache.ErrPageExpired):
		c.Trace(ctx, "cache miss for %s", key)
	}
}
