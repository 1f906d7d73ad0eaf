package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/logic"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/pkg/errors"
)

type scenarioConfig struct {
	nClients     int
	readInterval time.Duration
	duration     time.Duration
	pageSize     int
	pages        int
}

type scenarioResult struct {
	Fetches       int64               `json:"fetches"`
	EmptyPages    int64               `json:"empty_pages"`
	CacheCounters *data.CacheCounters `json:"cache_counters,omitempty"`
	Timers        *data.Timers        `json:"timers,omitempty"`
}

func parseDuration(s string) (time.Duration, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return time.Duration(i) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// configFromEnvs reads the SCENARIO_* values; durations are whole seconds or
// Go duration strings.
func configFromEnvs(envs map[string]string) (scenarioConfig, error) {
	config := scenarioConfig{
		nClients:     2,
		readInterval: time.Second,
		duration:     10 * time.Second,
		pageSize:     10,
		pages:        3,
	}
	for key, value := range map[string]*time.Duration{
		"SCENARIO_READ_INTERVAL": &config.readInterval,
		"SCENARIO_DURATION":      &config.duration,
	} {
		if envs[key] == "" {
			continue
		}
		d, err := parseDuration(envs[key])
		if err != nil || d <= 0 {
			return scenarioConfig{}, errors.Errorf("invalid %s: %q", key, envs[key])
		}
		*value = d
	}
	for key, value := range map[string]*int{
		"N_CLIENTS":           &config.nClients,
		"SCENARIO_PAGE_SIZE":  &config.pageSize,
		"SCENARIO_PAGE_COUNT": &config.pages,
	} {
		if envs[key] == "" {
			continue
		}
		i, err := strconv.Atoi(envs[key])
		if err != nil || i <= 0 {
			return scenarioConfig{}, errors.Errorf("invalid %s: %q", key, envs[key])
		}
		*value = i
	}
	return config, nil
}

// scenarioPageWalk has every client walk the first pages of departments, and
// the first page of employees of each department it sees, until the
// scenario's duration elapses. With a shared cache, only the first client
// to reach a page should miss.
func scenarioPageWalk(ctx context.Context, config scenarioConfig, logger utilities.Logger, fetchers ...*logic.Logic) (*scenarioResult, error) {
	const correlationId string = "scenario_page_walk"

	var result scenarioResult
	var wg sync.WaitGroup

	if len(fetchers) == 0 {
		return nil, errors.New("no clients provided")
	}
	start, stop := make(chan struct{}), make(chan struct{})
	for i, fetcher := range fetchers {
		wg.Add(1)
		go func(clientNumber int, fetcher *logic.Logic) {
			defer wg.Done()

			ctx := internal.CtxWithCorrelationId(ctx,
				fmt.Sprintf("%s_%d", correlationId, clientNumber))
			fetchFx := func(offset int) int {
				pageRequest := data.PageRequest{Limit: config.pageSize, Offset: offset}
				departments := fetcher.FetchDepartments(ctx, pageRequest)
				atomic.AddInt64(&result.Fetches, 1)
				if len(departments.Items) == 0 {
					atomic.AddInt64(&result.EmptyPages, 1)
				}
				for _, department := range departments.Items {
					employees := fetcher.FetchDepartmentEmployees(ctx,
						data.NewDepartmentId(department.Id),
						data.PageRequest{Limit: config.pageSize})
					atomic.AddInt64(&result.Fetches, 1)
					if len(employees.Items) == 0 {
						atomic.AddInt64(&result.EmptyPages, 1)
					}
				}
				offset += config.pageSize
				if offset >= departments.Count || offset >= config.pages*config.pageSize {
					offset = 0
				}
				return offset
			}
			tRead := time.NewTicker(config.readInterval)
			defer tRead.Stop()
			<-start
			for offset := 0; ; {
				select {
				case <-stop:
					return
				case <-ctx.Done():
					return
				case <-tRead.C:
					offset = fetchFx(offset)
				}
			}
		}(i, fetcher)
	}
	close(start)
	select {
	case <-time.After(config.duration):
	case <-ctx.Done():
	}
	close(stop)
	wg.Wait()
	logger.Info(ctx, "%s: %d fetches, %d empty pages", correlationId,
		result.Fetches, result.EmptyPages)
	return &result, nil
}

// scenarioStampedingHerd has every client fetch the same page at the same
// time, repeatedly; hits depend on how quickly the first response is cached.
func scenarioStampedingHerd(ctx context.Context, config scenarioConfig, logger utilities.Logger, fetchers ...*logic.Logic) (*scenarioResult, error) {
	const correlationId string = "scenario_stampeding_herd"
	const minClients int = 2

	var result scenarioResult

	if len(fetchers) < minClients {
		return nil, errors.New("not enough clients provided")
	}
	pageRequest := data.PageRequest{Limit: config.pageSize}
	tRead := time.NewTicker(config.readInterval)
	defer tRead.Stop()
	tStop := time.After(config.duration)
	for {
		select {
		case <-tStop:
			logger.Info(ctx, "%s: %d fetches, %d empty pages", correlationId,
				result.Fetches, result.EmptyPages)
			return &result, nil
		case <-ctx.Done():
			return &result, nil
		case <-tRead.C:
			var wg sync.WaitGroup

			start := make(chan struct{})
			for i, fetcher := range fetchers {
				wg.Add(1)
				go func(clientNumber int, fetcher *logic.Logic) {
					defer wg.Done()

					ctx := internal.CtxWithCorrelationId(ctx,
						fmt.Sprintf("%s_%d", correlationId, clientNumber))
					<-start
					page := fetcher.FetchDepartments(ctx, pageRequest)
					atomic.AddInt64(&result.Fetches, 1)
					if len(page.Items) == 0 {
						atomic.AddInt64(&result.EmptyPages, 1)
					}
				}(i, fetcher)
			}
			close(start)
			wg.Wait()
		}
	}
}

func printJson(w io.Writer, v any) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bytes))
	return err
}
