package cache

import (
	"context"
	"sync"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"
)

type memoryEntry struct {
	bytes   []byte
	expires time.Time //zero if the entry never expires
}

type memoryCache struct {
	sync.RWMutex
	sync.WaitGroup
	pages  map[string]memoryEntry //map[key]page
	config struct {
		ttl           time.Duration
		pruneInterval time.Duration
	}
	ctx       context.Context
	ctxCancel context.CancelFunc
	logger    utilities.Logger
}

func NewMemory(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &memoryCache{pages: make(map[string]memoryEntry)}
	c.config.ttl, c.config.pruneInterval = defaultTTL, defaultPruneInterval
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.logger = p
		}
	}
	return c
}

func (c *memoryCache) launchPrune() {
	started := make(chan struct{})
	c.Add(1)
	go func() {
		defer c.Done()

		pruneFx := func() {
			c.Lock()
			defer c.Unlock()

			var pruned int

			tNow := time.Now()
			for key, entry := range c.pages {
				if !entry.expires.IsZero() && tNow.After(entry.expires) {
					delete(c.pages, key)
					pruned++
				}
			}
			if pruned > 0 && c.logger != nil {
				c.logger.Trace(c.ctx, "pruned %d expired pages", pruned)
			}
		}
		tPrune := time.NewTicker(c.config.pruneInterval)
		defer tPrune.Stop()
		close(started)
		for {
			select {
			case <-c.ctx.Done():
				return
			case <-tPrune.C:
				pruneFx()
			}
		}
	}()
	<-started
}

func (c *memoryCache) Configure(envs map[string]string) error {
	ttl, pruneInterval, err := configureTTL(envs)
	if err != nil {
		return err
	}
	c.config.ttl, c.config.pruneInterval = ttl, pruneInterval
	return nil
}

func (c *memoryCache) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.pages = make(map[string]memoryEntry)
	c.ctx, c.ctxCancel = context.WithCancel(context.Background())
	if c.config.ttl > 0 {
		c.launchPrune()
	}
	return nil
}

func (c *memoryCache) Close(ctx context.Context) error {
	if c.ctxCancel != nil {
		c.ctxCancel()
	}
	c.Wait()
	return nil
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.pages = make(map[string]memoryEntry)
	return nil
}

func (c *memoryCache) read(key string, page interface{ UnmarshalBinary([]byte) error }) error {
	c.RLock()
	defer c.RUnlock()

	entry, ok := c.pages[key]
	if !ok {
		return ErrPageNotCached
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		return ErrPageExpired
	}
	return page.UnmarshalBinary(entry.bytes)
}

func (c *memoryCache) write(key string, page interface{ MarshalBinary() ([]byte, error) }) error {
	bytes, err := page.MarshalBinary()
	if err != nil {
		return err
	}
	entry := memoryEntry{bytes: bytes}
	if c.config.ttl > 0 {
		entry.expires = time.Now().Add(c.config.ttl)
	}
	c.Lock()
	defer c.Unlock()

	c.pages[key] = entry
	return nil
}

func (c *memoryCache) DepartmentsRead(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error) {
	page := &data.Page[data.Department]{}
	if err := c.read(DepartmentsKey(pageRequest), page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *memoryCache) DepartmentsWrite(ctx context.Context, pageRequest data.PageRequest, page *data.Page[data.Department]) error {
	return c.write(DepartmentsKey(pageRequest), page)
}

func (c *memoryCache) DepartmentEmployeesRead(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest) (*data.Page[data.Employee], error) {
	page := &data.Page[data.Employee]{}
	if err := c.read(DepartmentEmployeesKey(departmentId, pageRequest), page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *memoryCache) DepartmentEmployeesWrite(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest, page *data.Page[data.Employee]) error {
	return c.write(DepartmentEmployeesKey(departmentId, pageRequest), page)
}
