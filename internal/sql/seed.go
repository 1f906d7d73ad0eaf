package sql

import (
	"context"
	"fmt"

	"github.com/antonio-alexander/go-org-directory/internal/data"
)

var schema = []string{
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT NOT NULL AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY positions_title (title)
	);`, tablePositions),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT NOT NULL AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		parent_id BIGINT NULL,
		PRIMARY KEY (id),
		FOREIGN KEY (parent_id) REFERENCES %s (id) ON DELETE RESTRICT
	);`, tableDepartments, tableDepartments),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT NOT NULL AUTO_INCREMENT,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		middle_name VARCHAR(100) NULL,
		amount DECIMAL(12,2) NOT NULL CHECK (amount >= 0),
		hire_date DATE NOT NULL,
		position_id BIGINT NULL,
		department_id BIGINT NOT NULL,
		PRIMARY KEY (id),
		INDEX employees_department_id (department_id),
		FOREIGN KEY (position_id) REFERENCES %s (id) ON DELETE SET NULL,
		FOREIGN KEY (department_id) REFERENCES %s (id) ON DELETE RESTRICT
	);`, tableEmployees, tablePositions, tableDepartments),
}

var (
	queryPositionCreate = fmt.Sprintf(`INSERT INTO %s (title) VALUES (?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id);`, tablePositions)
	queryDepartmentCreate = fmt.Sprintf(`INSERT INTO %s (title, parent_id)
		VALUES (?, ?);`, tableDepartments)
	queryDepartmentEmployeesDelete = fmt.Sprintf(`DELETE FROM %s
		WHERE department_id = ?;`, tableEmployees)
	queryDepartmentDelete = fmt.Sprintf(`DELETE FROM %s WHERE id = ?;`,
		tableDepartments)
	queryEmployeesCreate = fmt.Sprintf(`INSERT INTO %s (first_name, last_name,
		middle_name, amount, hire_date, position_id, department_id)
		VALUES (:first_name, :last_name, :middle_name, :amount, :hire_date,
		:position_id, :department_id)`, tableEmployees)
)

func (s *mySql) SchemaCreate(ctx context.Context) error {
	for _, statement := range schema {
		if _, err := s.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

// PositionCreate returns the id of the position with the given title,
// creating it if it doesn't exist.
func (s *mySql) PositionCreate(ctx context.Context, title string) (int64, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	result, err := s.ExecContext(ctx, queryPositionCreate, title)
	if err != nil {
		return -1, err
	}
	return result.LastInsertId()
}

func (s *mySql) DepartmentCreate(ctx context.Context, title string, parentId *int64) (*data.Department, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	result, err := s.ExecContext(ctx, queryDepartmentCreate, title, parentId)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &data.Department{
		Id:       id,
		Title:    title,
		ParentId: parentId,
		Children: []data.Department{},
	}, nil
}

// DepartmentDelete removes a department that has no children, along with
// its employees.
func (s *mySql) DepartmentDelete(ctx context.Context, id int64) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	tx, err := s.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if _, err := tx.ExecContext(ctx, queryDepartmentEmployeesDelete, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, queryDepartmentDelete, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDepartmentNotFound
	}
	return tx.Commit()
}

// EmployeesCreate inserts employees in batches of SEED_BATCH_SIZE and returns
// the number inserted.
func (s *mySql) EmployeesCreate(ctx context.Context, employees ...data.EmployeeInput) (int, error) {
	var created int

	for start := 0; start < len(employees); start += s.config.BatchSize {
		end := min(start+s.config.BatchSize, len(employees))
		if err := func() error {
			ctx, cancel := s.queryContext(ctx)
			defer cancel()

			_, err := s.NamedExecContext(ctx, queryEmployeesCreate, employees[start:end])
			return err
		}(); err != nil {
			return created, err
		}
		created += end - start
		s.Debug(ctx, "created %d of %d employees", created, len(employees))
	}
	return created, nil
}
