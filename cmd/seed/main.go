package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/config"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/sql"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"
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
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func Main(args []string, envs map[string]string, osSignal <-chan os.Signal) error {
	var wg sync.WaitGroup

	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer func() {
		cancel()
		wg.Wait()
	}()
	ctx = internal.CtxWithCorrelationId(ctx, "seed")

	logger := utilities.NewLogger()
	if err := logger.Configure(envs); err != nil {
		return err
	}
	logger.Info(ctx, "seed: go-org-directory v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	sql := sql.NewMySql(logger)
	if err := sql.Configure(envs); err != nil {
		return err
	}
	if err := sql.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sql.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "error while closing sql: %s", err)
		}
	}()
	if err := sql.SchemaCreate(ctx); err != nil {
		return err
	}
	seeder := newSeeder(sql, logger)
	if err := seeder.Configure(envs); err != nil {
		return err
	}
	return seeder.Seed(ctx)
}
