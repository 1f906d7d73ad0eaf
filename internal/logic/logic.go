// Package logic fetches pages of departments and department employees from
// the backend. A fetch never fails: any error is logged once and an empty
// page is returned in place of the data.
package logic

import (
	"context"
	"errors"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/client"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/metrics"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"
)

const (
	ResourceDepartments         = "departments"
	ResourceDepartmentEmployees = "department_employees"
)

var ErrNoClient = errors.New("no client configured")

type Logic struct {
	client  client.Client
	metrics *metrics.Manager
	timers  utilities.Timers
	utilities.Logger
}

func NewLogic(parameters ...any) *Logic {
	l := &Logic{}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case client.Client:
			l.client = p
		case *metrics.Manager:
			l.metrics = p
		case utilities.Timers:
			l.timers = p
		case utilities.Logger:
			l.Logger = p
		}
	}
	if l.Logger == nil {
		l.Logger = utilities.NewLogger()
	}
	return l
}

func fetch[T any](ctx context.Context, l *Logic, resource string, fetchFx func(context.Context, client.Client) (*data.Page[T], error)) data.Page[T] {
	var index int

	ctx, _ = internal.EnsureCorrelationId(ctx)
	if l.timers != nil {
		index = l.timers.Start(resource)
	}
	tStart := time.Now()
	page, err := func() (*data.Page[T], error) {
		if l.client == nil {
			return nil, ErrNoClient
		}
		return fetchFx(ctx, l.client)
	}()
	elapsed := time.Since(tStart)
	if l.timers != nil {
		l.timers.Stop(resource, index)
	}
	if err != nil {
		l.metrics.RecordFetch(resource, metrics.OutcomeFailure, elapsed)
		l.Error(ctx, "error while fetching %s: %s", resource, err)
		return data.EmptyPage[T]()
	}
	l.metrics.RecordFetch(resource, metrics.OutcomeSuccess, elapsed)
	if page == nil {
		return data.EmptyPage[T]()
	}
	return *page
}

// FetchDepartments returns one page of departments, or an empty page if the
// backend couldn't be reached, responded with a non-2xx status or sent a
// body that couldn't be decoded.
func (l *Logic) FetchDepartments(ctx context.Context, pageRequest data.PageRequest) data.Page[data.Department] {
	return fetch(ctx, l, ResourceDepartments, func(ctx context.Context, c client.Client) (*data.Page[data.Department], error) {
		return c.DepartmentsList(ctx, pageRequest)
	})
}

// FetchDepartmentEmployees returns one page of the employees of the given
// department, or an empty page on any failure.
func (l *Logic) FetchDepartmentEmployees(ctx context.Context, departmentId data.DepartmentId, pageRequest data.PageRequest) data.Page[data.Employee] {
	return fetch(ctx, l, ResourceDepartmentEmployees, func(ctx context.Context, c client.Client) (*data.Page[data.Employee], error) {
		return c.DepartmentEmployeesList(ctx, departmentId, pageRequest)
	})
}
