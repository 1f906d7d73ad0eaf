package cache

import (
	"context"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/antonio-alexander/go-stash"
	"github.com/pkg/errors"
)

// stashCache delegates storage and eviction to a go-stash backend (memory or
// redis); expiry is whatever that backend is configured with.
type stashCache struct {
	logger utilities.Logger
	stash  interface {
		stash.Configurer
		stash.Parameterizer
		stash.Initializer
		stash.Shutdowner
	}
	stash.Stasher
}

func NewStash(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &stashCache{}
	for _, p := range parameters {
		switch p := p.(type) {
		case utilities.Logger:
			c.logger = p
		case interface {
			stash.Configurer
			stash.Parameterizer
			stash.Initializer
			stash.Shutdowner
			stash.Stasher
		}:
			c.stash = p
			c.Stasher = p
		}
	}
	if c.stash != nil {
		c.stash.SetParameters(parameters...)
	}
	return c
}

func (c *stashCache) Trace(ctx context.Context, format string, v ...any) {
	if c.logger != nil {
		c.logger.Trace(ctx, format, v...)
	}
}

func (c *stashCache) Configure(envs map[string]string) error {
	if c.stash != nil {
		if err := c.stash.Configure(envs); err != nil {
			return err
		}
	}
	return nil
}

func (c *stashCache) Open(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Initialize()
	}
	return nil
}

func (c *stashCache) Close(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Shutdown()
	}
	return nil
}

func (c *stashCache) Clear(ctx context.Context) error {
	return c.Stasher.Clear()
}

func (c *stashCache) read(ctx context.Context, key string, page interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}) error {
	if err := c.Stasher.Read(key, page); err != nil {
		c.Trace(ctx, "cache miss for page: %s (%s)", key, err)
		return ErrPageNotCached
	}
	c.Trace(ctx, "cache hit for page: %s", key)
	return nil
}

func (c *stashCache) write(ctx context.Context, key string, page interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}) error {
	if _, err := c.Stasher.Write(key, page); err != nil {
		return errors.Wrapf(err, "error while writing page (%s)", key)
	}
	c.Trace(ctx, "cached page: %s", key)
	return nil
}

func (c *stashCache) DepartmentsRead(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error) {
	page := &data.Page[data.Department]{}
	if err := c.read(ctx, DepartmentsKey(pageRequest), page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *stashCache) DepartmentsWrite(ctx context.Context, pageRequest data.PageRequest, page *data.Page[data.Department]) error {
	return c.write(ctx, DepartmentsKey(pageRequest), page)
}

func (c *stashCache) DepartmentEmployeesRead(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest) (*data.Page[data.Employee], error) {
	page := &data.Page[data.Employee]{}
	if err := c.read(ctx, DepartmentEmployeesKey(departmentId, pageRequest), page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *stashCache) DepartmentEmployeesWrite(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest, page *data.Page[data.Employee]) error {
	return c.write(ctx, DepartmentEmployeesKey(departmentId, pageRequest), page)
}
