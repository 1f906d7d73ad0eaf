package sql

import (
	"fmt"
	"time"

	"github.com/antonio-alexander/go-org-directory/internal/data"
)

const employeeColumns = `e.id, e.first_name, e.last_name, e.middle_name,
	CAST(e.amount AS SIGNED) AS amount, e.hire_date, p.title AS position_title,
	e.department_id`

var (
	queryDepartmentsCount = fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, tableDepartments)
	queryDepartmentsList  = fmt.Sprintf(`SELECT id, title, parent_id FROM %s
		ORDER BY id LIMIT ? OFFSET ?;`, tableDepartments)
	queryDepartmentRead = fmt.Sprintf(`SELECT id, title, parent_id FROM %s
		WHERE id = ?;`, tableDepartments)
	queryDepartmentChildren = fmt.Sprintf(`SELECT id, title, parent_id FROM %s
		WHERE parent_id = ? ORDER BY id;`, tableDepartments)
	queryDepartmentEmployeesCount = fmt.Sprintf(`SELECT COUNT(*) FROM %s
		WHERE department_id = ?;`, tableEmployees)
	queryDepartmentEmployeesList = fmt.Sprintf(`SELECT %s FROM %s e
		LEFT JOIN %s p ON p.id = e.position_id
		WHERE e.department_id = ? ORDER BY e.id LIMIT ? OFFSET ?;`,
		employeeColumns, tableEmployees, tablePositions)
	queryEmployeesCount = fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, tableEmployees)
	queryEmployeesList  = fmt.Sprintf(`SELECT %s FROM %s e
		LEFT JOIN %s p ON p.id = e.position_id
		ORDER BY e.id LIMIT ? OFFSET ?;`,
		employeeColumns, tableEmployees, tablePositions)
	queryEmployeeRead = fmt.Sprintf(`SELECT %s FROM %s e
		LEFT JOIN %s p ON p.id = e.position_id
		WHERE e.id = ?;`,
		employeeColumns, tableEmployees, tablePositions)
)

// employeeRow scans hire_date, a DATE column, alongside the employee.
type employeeRow struct {
	data.Employee
	HireDate time.Time `db:"hire_date"`
}

func (e *employeeRow) toEmployee() *data.Employee {
	employee := e.Employee
	employee.HireDate = data.Date{Time: e.HireDate}
	return &employee
}
