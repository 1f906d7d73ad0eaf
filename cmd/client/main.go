package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/antonio-alexander/go-org-directory/internal/config"
	"github.com/antonio-alexander/go-org-directory/internal/data"
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
	return newRootCommand(envs, stdout, osSignal).Execute(args)
}
