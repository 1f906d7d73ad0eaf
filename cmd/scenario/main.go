package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/cache"
	"github.com/antonio-alexander/go-org-directory/internal/client"
	"github.com/antonio-alexander/go-org-directory/internal/config"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/logic"
	"github.com/antonio-alexander/go-org-directory/internal/metrics"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/pkg/errors"
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

func main() {
	args := os.Args[1:]
	envs, err := config.Load(context.Background())
	if err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, os.Stdout, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func Main(args []string, envs map[string]string, stdout io.Writer, osSignal <-chan os.Signal) error {
	var fetchers []*logic.Logic
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer func() {
		cancel()
		wg.Wait()
	}()

	// create utilities
	logger := utilities.NewLogger(os.Stderr)
	if err := logger.Configure(envs); err != nil {
		return err
	}
	counter := utilities.NewCounter()
	timers := utilities.NewTimers()
	metrics := metrics.NewManager()

	//print version info
	logger.Info(ctx, "scenarios: go-org-directory v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	settings, err := configFromEnvs(envs)
	if err != nil {
		return err
	}

	//create a cache shared by every client
	cache, err := cache.New(envs, logger)
	if err != nil {
		return err
	}
	parameters := []any{logger, counter}
	if cache != nil {
		if err := cache.Configure(envs); err != nil {
			return err
		}
		if err := cache.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(context.Background()); err != nil {
				logger.Error(ctx, "error while closing cache: %s", err)
			}
		}()
		if err := cache.Clear(ctx); err != nil {
			return err
		}
		parameters = append(parameters, cache)
	}

	//create clients
	for range settings.nClients {
		client := client.NewClient(parameters...)
		if err := client.Configure(envs); err != nil {
			return err
		}
		if err := client.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Error(ctx, "error while closing client: %s", err)
			}
		}()
		fetchers = append(fetchers, logic.NewLogic(client, logger, timers, metrics))
	}

	// execute scenario
	var result *scenarioResult
	switch scenario := envs["SCENARIO"]; scenario {
	default:
		return errors.Errorf("unsupported scenario: %s", scenario)
	case "page_walk":
		logger.Info(ctx, "executing %s scenario", scenario)
		result, err = scenarioPageWalk(ctx, settings, logger, fetchers...)
	case "stampeding_herd":
		logger.Info(ctx, "executing %s scenario", scenario)
		result, err = scenarioStampedingHerd(ctx, settings, logger, fetchers...)
	}
	if err != nil {
		return err
	}
	result.CacheCounters = counter.ReadAll()
	result.Timers = timers.ReadAll()
	logger.Info(ctx, "fetches: %d, empty pages: %d, cache hit ratio: %0.2f%%",
		result.Fetches, result.EmptyPages, result.CacheCounters.HitRatio())
	return printJson(stdout, result)
}
