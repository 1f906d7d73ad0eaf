package main

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/sql"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/pkg/errors"
)

const (
	maxDepartmentLevel int   = 5
	minAmount          int64 = 40_000
	maxAmount          int64 = 450_000
	maxDaysEmployed    int   = 365 * 5
)

var positionTitles = []string{
	"Генеральный директор",
	"Финансовый директор",
	"CTO",
	"Руководитель отдела",
	"Менеджер проектов",
	"Team Lead",
	"Senior Backend Developer",
	"Middle Backend Developer",
	"Frontend Developer",
	"QA Engineer",
	"DevOps Engineer",
	"HR Специалист",
	"Бухгалтер",
	"Юрист",
	"Офис-менеджер",
}

var (
	firstNames  = []string{"Иван", "Пётр", "Алексей", "Дмитрий", "Сергей", "Андрей", "Ольга", "Анна", "Мария", "Елена", "Наталья", "Татьяна"}
	lastNames   = []string{"Иванов", "Петров", "Смирнов", "Кузнецов", "Попов", "Соколов", "Лебедев", "Козлов", "Новиков", "Морозов"}
	middleNames = []string{"Иванович", "Петрович", "Алексеевич", "Дмитриевич", "Сергеевич", "Андреевич"}
	titleWords  = []string{"Strategic", "Digital", "Customer", "Product", "Regional", "Platform", "Growth", "Operations", "Research", "Quality"}
	titleNouns  = []string{"Solutions", "Development", "Support", "Analytics", "Partnerships", "Infrastructure", "Delivery", "Services"}
)

type seeder struct {
	config struct {
		departments int
		employees   int
		batchSize   int
	}
	rand  *rand.Rand
	store interface {
		sql.Seeder
		DepartmentsList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error)
	}
	utilities.Logger
}

func newSeeder(parameters ...any) *seeder {
	s := &seeder{}
	s.config.departments = 25
	s.config.employees = 50_000
	s.config.batchSize = 2000
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case interface {
			sql.Seeder
			DepartmentsList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error)
		}:
			s.store = p
		case *rand.Rand:
			s.rand = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	if s.Logger == nil {
		s.Logger = utilities.NewLogger()
	}
	if s.rand == nil {
		seed := uint64(time.Now().UnixNano())
		s.rand = rand.New(rand.NewPCG(seed, seed))
	}
	return s
}

func (s *seeder) Configure(envs map[string]string) error {
	for key, value := range map[string]*int{
		"SEED_DEPARTMENTS": &s.config.departments,
		"SEED_EMPLOYEES":   &s.config.employees,
		"SEED_BATCH_SIZE":  &s.config.batchSize,
	} {
		if envs[key] == "" {
			continue
		}
		i, err := strconv.Atoi(envs[key])
		if err != nil || i < 0 {
			return errors.Errorf("invalid %s: %q", key, envs[key])
		}
		*value = i
	}
	if s.config.batchSize == 0 {
		return errors.New("invalid SEED_BATCH_SIZE: 0")
	}
	return nil
}

func (s *seeder) Seed(ctx context.Context) error {
	positionIds, err := s.seedPositions(ctx)
	if err != nil {
		return err
	}
	departments, err := s.seedDepartments(ctx)
	if err != nil {
		return err
	}
	return s.seedEmployees(ctx, positionIds, departments)
}

func (s *seeder) seedPositions(ctx context.Context) ([]int64, error) {
	positionIds := make([]int64, 0, len(positionTitles))
	for _, title := range positionTitles {
		id, err := s.store.PositionCreate(ctx, title)
		if err != nil {
			return nil, err
		}
		positionIds = append(positionIds, id)
	}
	s.Info(ctx, "positions: %d ready", len(positionIds))
	return positionIds, nil
}

// seedDepartments tops the department tree up to the configured number of
// departments, never nesting deeper than maxDepartmentLevel; roughly one in
// ten new departments is a root.
func (s *seeder) seedDepartments(ctx context.Context) ([]data.Department, error) {
	var departments []data.Department

	for offset := 0; ; {
		page, err := s.store.DepartmentsList(ctx, data.PageRequest{
			Limit:  data.DefaultLimit,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		departments = append(departments, page.Items...)
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Count {
			break
		}
	}
	levels := departmentLevels(departments)
	for len(departments) < s.config.departments {
		var parentId *int64

		level := 1
		if len(departments) > 0 {
			parent := departments[s.rand.IntN(len(departments))]
			if levels[parent.Id] < maxDepartmentLevel && s.rand.Float64() > 0.1 {
				parentId = &parent.Id
				level = levels[parent.Id] + 1
			}
		}
		title := titleWords[s.rand.IntN(len(titleWords))] + " " +
			titleNouns[s.rand.IntN(len(titleNouns))]
		department, err := s.store.DepartmentCreate(ctx, title, parentId)
		if err != nil {
			return nil, err
		}
		levels[department.Id] = level
		departments = append(departments, *department)
	}
	s.Info(ctx, "departments: %d ready", len(departments))
	return departments, nil
}

// departmentLevels returns the depth of each department, roots being 1.
func departmentLevels(departments []data.Department) map[int64]int {
	parents := make(map[int64]*int64, len(departments))
	for _, department := range departments {
		parents[department.Id] = department.ParentId
	}
	levels := make(map[int64]int, len(departments))
	var levelFx func(id int64, depth int) int
	levelFx = func(id int64, depth int) int {
		if level, ok := levels[id]; ok {
			return level
		}
		parentId, ok := parents[id]
		if !ok || parentId == nil || depth > len(departments) {
			levels[id] = 1
			return 1
		}
		levels[id] = levelFx(*parentId, depth+1) + 1
		return levels[id]
	}
	for _, department := range departments {
		levelFx(department.Id, 0)
	}
	return levels
}

func (s *seeder) seedEmployees(ctx context.Context, positionIds []int64, departments []data.Department) error {
	var created int

	if len(departments) == 0 {
		return errors.New("no departments to assign employees to")
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	batch := make([]data.EmployeeInput, 0, s.config.batchSize)
	for i := 0; i < s.config.employees; i++ {
		middleName := middleNames[s.rand.IntN(len(middleNames))]
		employee := data.EmployeeInput{
			FirstName:    firstNames[s.rand.IntN(len(firstNames))],
			LastName:     lastNames[s.rand.IntN(len(lastNames))],
			MiddleName:   &middleName,
			Amount:       minAmount + s.rand.Int64N(maxAmount-minAmount+1),
			HireDate:     today.AddDate(0, 0, -s.rand.IntN(maxDaysEmployed+1)),
			DepartmentId: departments[s.rand.IntN(len(departments))].Id,
		}
		if len(positionIds) > 0 {
			employee.PositionId = &positionIds[s.rand.IntN(len(positionIds))]
		}
		batch = append(batch, employee)
		if len(batch) < s.config.batchSize && i < s.config.employees-1 {
			continue
		}
		n, err := s.store.EmployeesCreate(ctx, batch...)
		created += n
		if err != nil {
			return err
		}
		batch = batch[:0]
		s.Info(ctx, "...created %d employees", created)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	s.Info(ctx, "created %d employees distributed in %d departments",
		created, len(departments))
	return nil
}
