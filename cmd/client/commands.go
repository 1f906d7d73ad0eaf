package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"strconv"
	"sync"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/cache"
	"github.com/antonio-alexander/go-org-directory/internal/client"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/logic"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/gookit/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	outputJson  string = "json"
	outputTable string = "table"
)

type rootCommand struct {
	*cobra.Command
	envs     map[string]string
	stdout   io.Writer
	osSignal <-chan os.Signal
	options  struct {
		baseUrl string
		output  string
		noColor bool
		limit   int
		offset  int
	}
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	closers []internal.Closer
	logger  utilities.Logger
	*logic.Logic
}

func newRootCommand(envs map[string]string, stdout io.Writer, osSignal <-chan os.Signal) *rootCommand {
	r := &rootCommand{
		envs:     maps.Clone(envs),
		stdout:   stdout,
		osSignal: osSignal,
	}
	r.Command = &cobra.Command{
		Use:           "org-directory",
		Short:         "Fetch pages of departments and employees",
		Version:       fmt.Sprintf("%s (%s) built from: %s", Version, GitCommit, GitBranch),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch r.options.output {
			default:
				return errors.Errorf("unsupported output: %q", r.options.output)
			case outputJson, outputTable:
			}
			if r.options.noColor {
				color.Disable()
			}
			return r.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			r.close(context.Background())
			return nil
		},
	}
	flags := r.PersistentFlags()
	flags.StringVar(&r.options.baseUrl, "base-url", "", "backend base url (default BACKEND_BASE_URL)")
	flags.StringVarP(&r.options.output, "output", "o", outputTable, "output format: json or table")
	flags.BoolVar(&r.options.noColor, "no-color", false, "disable colored table output")
	flags.IntVar(&r.options.limit, "limit", data.DefaultLimit, "page size, sent as-is")
	flags.IntVar(&r.options.offset, "offset", 0, "index of the first item, sent as-is")
	r.AddCommand(r.departmentsCommand(), r.employeesCommand())
	r.SetOut(stdout)
	return r
}

func (r *rootCommand) Execute(args []string) error {
	var ctx context.Context

	ctx, r.cancel = internal.LaunchContext(&r.wg, r.osSignal)
	defer func() {
		r.close(context.Background())
		r.cancel()
		r.wg.Wait()
	}()
	r.SetArgs(args)
	return r.ExecuteContext(ctx)
}

// open creates the logger, the optional page cache, the client and the
// fetcher, in that order.
func (r *rootCommand) open(ctx context.Context) error {
	if r.envs == nil {
		r.envs = make(map[string]string)
	}
	if r.options.baseUrl != "" {
		r.envs["BACKEND_BASE_URL"] = r.options.baseUrl
	}
	logger := utilities.NewLogger(os.Stderr)
	if err := logger.Configure(r.envs); err != nil {
		return err
	}
	r.logger = logger
	parameters := []any{logger, utilities.NewCounter()}
	pageCache, err := cache.New(r.envs, logger)
	if err != nil {
		return err
	}
	if pageCache != nil {
		if err := pageCache.Configure(r.envs); err != nil {
			return err
		}
		if err := pageCache.Open(ctx); err != nil {
			return err
		}
		r.closers = append(r.closers, pageCache)
		parameters = append(parameters, pageCache)
	}
	client := client.NewClient(parameters...)
	if err := client.Configure(r.envs); err != nil {
		return err
	}
	if err := client.Open(ctx); err != nil {
		return err
	}
	r.closers = append(r.closers, client)
	r.Logic = logic.NewLogic(client, logger)
	return nil
}

func (r *rootCommand) close(ctx context.Context) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(ctx); err != nil {
			r.logger.Error(ctx, "error while closing: %s", err)
		}
	}
	r.closers = nil
}

func (r *rootCommand) pageRequest() data.PageRequest {
	return data.PageRequest{
		Limit:  r.options.limit,
		Offset: r.options.offset,
	}
}

func (r *rootCommand) departmentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List a page of departments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page := r.FetchDepartments(cmd.Context(), r.pageRequest())
			if r.options.output == outputJson {
				return printJson(r.stdout, page)
			}
			rows := make([][]string, 0, len(page.Items))
			for _, department := range page.Items {
				parentId := "-"
				if department.ParentId != nil {
					parentId = strconv.FormatInt(*department.ParentId, 10)
				}
				rows = append(rows, []string{
					strconv.FormatInt(department.Id, 10),
					department.Title,
					parentId,
				})
			}
			return printTable(r.stdout, []string{"ID", "TITLE", "PARENT"}, rows,
				r.pageRequest(), page.Count)
		},
	}
}

func (r *rootCommand) employeesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "employees <department-id>",
		Short: "List a page of a department's employees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := r.FetchDepartmentEmployees(cmd.Context(),
				data.NewDepartmentId(args[0]), r.pageRequest())
			if r.options.output == outputJson {
				return printJson(r.stdout, page)
			}
			rows := make([][]string, 0, len(page.Items))
			for _, employee := range page.Items {
				name := employee.LastName + " " + employee.FirstName
				if employee.MiddleName != nil {
					name += " " + *employee.MiddleName
				}
				position := "-"
				if employee.PositionTitle != nil {
					position = *employee.PositionTitle
				}
				rows = append(rows, []string{
					strconv.FormatInt(employee.Id, 10),
					name,
					position,
					strconv.FormatInt(employee.Amount, 10),
					employee.HireDate.Format("2006-01-02"),
				})
			}
			return printTable(r.stdout, []string{"ID", "NAME", "POSITION", "AMOUNT", "HIRED"},
				rows, r.pageRequest(), page.Count)
		},
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
