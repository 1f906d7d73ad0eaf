package sql

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal"
	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const (
	tableDepartments = "departments"
	tableEmployees   = "employees"
	tablePositions   = "positions"
)

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
)

// Repository is the read side of the directory as served by the backend.
type Repository interface {
	DepartmentsList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error)
	DepartmentRead(ctx context.Context, id int64) (*data.Department, error)
	DepartmentEmployeesList(ctx context.Context, departmentId int64, pageRequest data.PageRequest) (*data.Page[data.Employee], error)
	EmployeesList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Employee], error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
}

// Seeder creates the schema and populates it.
type Seeder interface {
	SchemaCreate(ctx context.Context) error
	PositionCreate(ctx context.Context, title string) (int64, error)
	DepartmentCreate(ctx context.Context, title string, parentId *int64) (*data.Department, error)
	DepartmentDelete(ctx context.Context, id int64) error
	EmployeesCreate(ctx context.Context, employees ...data.EmployeeInput) (int, error)
}

type mySql struct {
	sync.RWMutex
	config struct {
		Hostname       string        `json:"hostname"`
		Port           string        `json:"port"`
		Username       string        `json:"username"`
		Password       string        `json:"password"`
		Database       string        `json:"database"`
		QueryTimeout   time.Duration `json:"query_timeout"`
		ConnectRetries uint          `json:"connect_retries"`
		BatchSize      int           `json:"batch_size"`
	}
	*sqlx.DB
	utilities.Logger
	opened bool
}

func NewMySql(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Repository
	Seeder
} {
	m := &mySql{}
	m.config.Hostname = "localhost"
	m.config.Port = "3306"
	m.config.ConnectRetries = 3
	m.config.BatchSize = 2000
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			m.Logger = v
		}
	}
	if m.Logger == nil {
		m.Logger = utilities.NewLogger()
	}
	return m
}

func (s *mySql) Configure(envs map[string]string) error {
	if databaseHost := envs["DATABASE_HOST"]; databaseHost != "" {
		s.config.Hostname = databaseHost
	}
	if databasePort := envs["DATABASE_PORT"]; databasePort != "" {
		s.config.Port = databasePort
	}
	if database := envs["DATABASE_NAME"]; database != "" {
		s.config.Database = database
	}
	if username := envs["DATABASE_USER"]; username != "" {
		s.config.Username = username
	}
	if password := envs["DATABASE_PASSWORD"]; password != "" {
		s.config.Password = password
	}
	if queryTimeout := envs["DATABASE_QUERY_TIMEOUT"]; queryTimeout != "" {
		i, err := strconv.ParseInt(queryTimeout, 10, 64)
		if err != nil {
			return errors.Join(errors.New("invalid DATABASE_QUERY_TIMEOUT"), err)
		}
		s.config.QueryTimeout = time.Duration(i) * time.Second
	}
	if connectRetries := envs["DATABASE_CONNECT_RETRIES"]; connectRetries != "" {
		i, err := strconv.ParseUint(connectRetries, 10, 32)
		if err != nil {
			return errors.Join(errors.New("invalid DATABASE_CONNECT_RETRIES"), err)
		}
		s.config.ConnectRetries = uint(i)
	}
	if batchSize := envs["SEED_BATCH_SIZE"]; batchSize != "" {
		i, err := strconv.Atoi(batchSize)
		if err != nil || i <= 0 {
			return errors.New("invalid SEED_BATCH_SIZE")
		}
		s.config.BatchSize = i
	}
	return nil
}

func (s *mySql) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	config := mysql.NewConfig()
	config.User = s.config.Username
	config.Passwd = s.config.Password
	config.Net = "tcp"
	config.Addr = net.JoinHostPort(s.config.Hostname, s.config.Port)
	config.DBName = s.config.Database
	config.ParseTime = true
	db, err := sqlx.Open("mysql", config.FormatDSN())
	if err != nil {
		return err
	}
	//KIM: the database may still be starting when the service launches
	if _, err := backoff.Retry(ctx, func() (struct{}, error) {
		ctx, cancel := s.queryContext(ctx)
		defer cancel()
		return struct{}{}, db.PingContext(ctx)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(s.config.ConnectRetries)); err != nil {
		_ = db.Close()
		return err
	}
	s.DB = db
	s.opened = true
	return nil
}

func (s *mySql) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if !s.opened {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		s.Error(ctx, "error while closing sql: %s", err)
	}
	s.opened = false
	return nil
}

func (s *mySql) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.QueryTimeout)
}

func (s *mySql) DepartmentsList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	page := &data.Page[data.Department]{Items: []data.Department{}}
	if err := s.GetContext(ctx, &page.Count, queryDepartmentsCount); err != nil {
		return nil, err
	}
	if err := s.SelectContext(ctx, &page.Items, queryDepartmentsList,
		pageRequest.Limit, pageRequest.Offset); err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i].Children = []data.Department{}
	}
	return page, nil
}

func (s *mySql) DepartmentRead(ctx context.Context, id int64) (*data.Department, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	department := &data.Department{Children: []data.Department{}}
	if err := s.GetContext(ctx, department, queryDepartmentRead, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	if err := s.SelectContext(ctx, &department.Children, queryDepartmentChildren, id); err != nil {
		return nil, err
	}
	for i := range department.Children {
		department.Children[i].Children = []data.Department{}
	}
	return department, nil
}

func (s *mySql) DepartmentEmployeesList(ctx context.Context, departmentId int64, pageRequest data.PageRequest) (*data.Page[data.Employee], error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	page := &data.Page[data.Employee]{}
	if err := s.GetContext(ctx, &page.Count, queryDepartmentEmployeesCount,
		departmentId); err != nil {
		return nil, err
	}
	items, err := s.employeesSelect(ctx, queryDepartmentEmployeesList, departmentId,
		pageRequest.Limit, pageRequest.Offset)
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}

func (s *mySql) EmployeesList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Employee], error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	page := &data.Page[data.Employee]{}
	if err := s.GetContext(ctx, &page.Count, queryEmployeesCount); err != nil {
		return nil, err
	}
	items, err := s.employeesSelect(ctx, queryEmployeesList,
		pageRequest.Limit, pageRequest.Offset)
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}

func (s *mySql) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var row employeeRow
	if err := s.GetContext(ctx, &row, queryEmployeeRead, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return row.toEmployee(), nil
}

func (s *mySql) employeesSelect(ctx context.Context, query string, args ...any) ([]data.Employee, error) {
	var rows []employeeRow

	if err := s.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	employees := make([]data.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, *row.toEmployee())
	}
	return employees, nil
}
