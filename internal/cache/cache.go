package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/data"

	stashmemory "github.com/antonio-alexander/go-stash/memory"
	stashredis "github.com/antonio-alexander/go-stash/redis"
)

const (
	defaultTTL           = 300 * time.Second
	defaultPruneInterval = 10 * time.Second
)

var (
	ErrPageNotCached = errors.New("page not cached")
	ErrPageExpired   = errors.New("page expired")
)

// Cache stores fetched pages keyed by resource and page window, the way a
// query library caches the results of a query key.
type Cache interface {
	DepartmentsRead(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error)
	DepartmentsWrite(ctx context.Context, pageRequest data.PageRequest, page *data.Page[data.Department]) error
	DepartmentEmployeesRead(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest) (*data.Page[data.Employee], error)
	DepartmentEmployeesWrite(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest, page *data.Page[data.Employee]) error
}

// New creates the cache named by CACHE_TYPE: memory, redis, stash-memory or
// stash-redis. It returns nil when CACHE_TYPE is empty.
func New(envs map[string]string, parameters ...any) (interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
}, error) {
	switch cacheType := envs["CACHE_TYPE"]; cacheType {
	default:
		return nil, fmt.Errorf("unsupported cache type: %q", cacheType)
	case "":
		return nil, nil
	case "memory":
		return NewMemory(parameters...), nil
	case "redis":
		return NewRedis(parameters...), nil
	case "stash-memory":
		return NewStash(append(parameters, stashmemory.New())...), nil
	case "stash-redis":
		return NewStash(append(parameters, stashredis.New())...), nil
	}
}

func DepartmentsKey(pageRequest data.PageRequest) string {
	return "departments:" + pageRequest.ToKey()
}

func DepartmentEmployeesKey(departmentId data.DepartmentId, pageRequest data.PageRequest) string {
	return fmt.Sprintf("departments:%s:employees:%s",
		departmentId.PathEscaped(), pageRequest.ToKey())
}

// configureTTL reads CACHE_TTL and CACHE_PRUNE_INTERVAL in seconds; a TTL of
// zero disables expiry.
func configureTTL(envs map[string]string) (ttl, pruneInterval time.Duration, err error) {
	ttl, pruneInterval = defaultTTL, defaultPruneInterval
	if s, ok := envs["CACHE_TTL"]; ok && s != "" {
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
		ttl = time.Duration(i) * time.Second
	}
	if s, ok := envs["CACHE_PRUNE_INTERVAL"]; ok && s != "" {
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid CACHE_PRUNE_INTERVAL: %w", err)
		}
		if i > 0 {
			pruneInterval = time.Duration(i) * time.Second
		}
	}
	return ttl, pruneInterval, nil
}
