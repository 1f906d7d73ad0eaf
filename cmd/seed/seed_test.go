package main

import (
	"context"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"

	"github.com/stretchr/testify/assert"
)

type store struct {
	positions   map[string]int64
	departments []data.Department
	employees   []data.EmployeeInput
	batches     []int
}

func newStore() *store {
	return &store{positions: make(map[string]int64)}
}

func (s *store) SchemaCreate(ctx context.Context) error { return nil }

func (s *store) PositionCreate(ctx context.Context, title string) (int64, error) {
	if id, ok := s.positions[title]; ok {
		return id, nil
	}
	s.positions[title] = int64(len(s.positions) + 1)
	return s.positions[title], nil
}

func (s *store) DepartmentCreate(ctx context.Context, title string, parentId *int64) (*data.Department, error) {
	department := data.Department{
		Id:       int64(len(s.departments) + 1),
		Title:    title,
		ParentId: parentId,
		Children: []data.Department{},
	}
	s.departments = append(s.departments, department)
	return &department, nil
}

func (s *store) DepartmentDelete(ctx context.Context, id int64) error { return nil }

func (s *store) EmployeesCreate(ctx context.Context, employees ...data.EmployeeInput) (int, error) {
	s.employees = append(s.employees, employees...)
	s.batches = append(s.batches, len(employees))
	return len(employees), nil
}

func (s *store) DepartmentsList(ctx context.Context, pageRequest data.PageRequest) (*data.Page[data.Department], error) {
	page := &data.Page[data.Department]{Items: []data.Department{}, Count: len(s.departments)}
	for i := pageRequest.Offset; i < len(s.departments) && i < pageRequest.Offset+pageRequest.Limit; i++ {
		page.Items = append(page.Items, s.departments[i])
	}
	return page, nil
}

func TestSeed(t *testing.T) {
	ctx := context.TODO()
	store := newStore()
	s := newSeeder(store, rand.New(rand.NewPCG(1, 2)), utilities.NewLogger(io.Discard))
	err := s.Configure(map[string]string{
		"SEED_DEPARTMENTS": "25",
		"SEED_EMPLOYEES":   "1050",
		"SEED_BATCH_SIZE":  "200",
	})
	assert.Nil(t, err)
	err = s.Seed(ctx)
	assert.Nil(t, err)

	assert.Len(t, store.positions, len(positionTitles))
	assert.Len(t, store.departments, 25)
	for _, level := range departmentLevels(store.departments) {
		assert.LessOrEqual(t, level, maxDepartmentLevel)
	}
	assert.Len(t, store.employees, 1050)
	assert.Equal(t, []int{200, 200, 200, 200, 200, 50}, store.batches)
	for _, employee := range store.employees {
		assert.GreaterOrEqual(t, employee.Amount, minAmount)
		assert.LessOrEqual(t, employee.Amount, maxAmount)
		assert.NotZero(t, employee.DepartmentId)
		assert.NotNil(t, employee.PositionId)
	}

	// seeding again only tops up departments
	err = s.Configure(map[string]string{"SEED_EMPLOYEES": "0"})
	assert.Nil(t, err)
	err = s.Seed(ctx)
	assert.Nil(t, err)
	assert.Len(t, store.departments, 25)
	assert.Len(t, store.positions, len(positionTitles))
}

func TestDepartmentLevels(t *testing.T) {
	one, two, three := int64(1), int64(2), int64(3)
	levels := departmentLevels([]data.Department{
		{Id: 4, ParentId: &three},
		{Id: 3, ParentId: &two},
		{Id: 2, ParentId: &one},
		{Id: 1},
		{Id: 5},
	})
	assert.Equal(t, map[int64]int{1: 1, 2: 2, 3: 3, 4: 4, 5: 1}, levels)
}

func TestConfigure(t *testing.T) {
	s := newSeeder()
	assert.NotNil(t, s.Configure(map[string]string{"SEED_EMPLOYEES": "many"}))
	assert.NotNil(t, s.Configure(map[string]string{"SEED_DEPARTMENTS": "-1"}))
	assert.NotNil(t, s.Configure(map[string]string{"SEED_BATCH_SIZE": "0"}))
}
