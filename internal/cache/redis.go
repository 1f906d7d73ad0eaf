package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

const keyPrefix string = "org_directory:"

type redisCache struct {
	redisClient *redis.Client
	config      struct {
		address        string
		port           string
		password       string
		database       int
		timeout        time.Duration
		ttl            time.Duration
		connectRetries uint
	}
	logger utilities.Logger
}

func NewRedis(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &redisCache{}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.logger = p
		}
	}
	return c
}

func (c *redisCache) Configure(envs map[string]string) error {
	ttl, _, err := configureTTL(envs)
	if err != nil {
		return err
	}
	c.config.ttl = ttl
	c.config.timeout = 10 * time.Second
	c.config.connectRetries = 3
	if redisAddress, ok := envs["REDIS_ADDRESS"]; ok {
		c.config.address = redisAddress
	}
	if redisPort, ok := envs["REDIS_PORT"]; ok {
		c.config.port = redisPort
	}
	if redisPassword, ok := envs["REDIS_PASSWORD"]; ok {
		c.config.password = redisPassword
	}
	if redisDatabase := envs["REDIS_DATABASE"]; redisDatabase != "" {
		i, err := strconv.Atoi(redisDatabase)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DATABASE: %w", err)
		}
		c.config.database = i
	}
	if redisTimeout := envs["REDIS_TIMEOUT"]; redisTimeout != "" {
		i, err := strconv.Atoi(redisTimeout)
		if err != nil {
			return fmt.Errorf("invalid REDIS_TIMEOUT: %w", err)
		}
		c.config.timeout = time.Duration(i) * time.Second
	}
	if connectRetries := envs["REDIS_CONNECT_RETRIES"]; connectRetries != "" {
		i, err := strconv.ParseUint(connectRetries, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid REDIS_CONNECT_RETRIES: %w", err)
		}
		c.config.connectRetries = uint(i)
	}
	return nil
}

func (c *redisCache) Open(ctx context.Context) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(c.config.address, c.config.port),
		Password: c.config.password,
		DB:       c.config.database,
	})
	if _, err := backoff.Retry(ctx, func() (string, error) {
		ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
		defer cancel()
		return redisClient.Ping(ctx).Result()
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.config.connectRetries)); err != nil {
		_ = redisClient.Close()
		return err
	}
	c.redisClient = redisClient
	return nil
}

func (c *redisCache) Close(ctx context.Context) error {
	if c.redisClient == nil {
		return nil
	}
	if err := c.redisClient.Close(); err != nil && c.logger != nil {
		c.logger.Error(ctx, "error while shutting down redis client: %s", err)
	}
	return nil
}

func (c *redisCache) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()

	var keys []string
	iter := c.redisClient.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redisClient.Del(ctx, keys...).Err()
}

func (c *redisCache) read(ctx context.Context, key string, page interface{ UnmarshalBinary([]byte) error }) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()

	value, err := c.redisClient.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrPageNotCached
		}
		return err
	}
	return page.UnmarshalBinary(value)
}

func (c *redisCache) write(ctx context.Context, key string, page interface{ MarshalBinary() ([]byte, error) }) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()

	bytes, err := page.MarshalBinary()
	if err != nil {
		return err
	}
	return c.redisClient.Set(ctx, keyPrefix+key, bytes, c.config.ttl).Err()
}

func (c *redisCache) DepartmentsRead(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error) {
	page := &data.Page[data.Department]{}
	if err := c.read(ctx, DepartmentsKey(pageRequest), page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *redisCache) DepartmentsWrite(ctx context.Context, pageRequest data.PageRequest, page *data.Page[data.Department]) error {
	return c.write(ctx, DepartmentsKey(pageRequest), page)
}

func (c *redisCache) DepartmentEmployeesRead(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest) (*data.Page[data.Employee], error) {
	page := &data.Page[data.Employee]{}
	if err := c.read(ctx, DepartmentEmployeesKey(departmentId, pageRequest), page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *redisCache) DepartmentEmployeesWrite(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest, page *data.Page[data.Employee]) error {
	return c.write(ctx, DepartmentEmployeesKey(departmentId, pageRequest), page)
}
