package swagger

import "github.com/antonio-alexander/go-org-directory/internal/data"

// swagger:route GET /employees/ Employee ListEmployees
// Lists employees with their position title.
//
//	Produces:
//	- application/json
//
// responses:
//	200: EmployeesListResponseOk
//	422: ErrorResponse

// swagger:response EmployeesListResponseOk
type EmployeesListResponseOk struct {
	// in:body
	Body data.Page[data.Employee]
}

// swagger:parameters ListEmployees
type EmployeesListParams struct {
	PageParams

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

// swagger:route GET /employees/{id} Employee ReadEmployee
// Reads an employee using its id.
//
//	Produces:
//	- application/json
//
// responses:
//	200: EmployeeReadResponseOk
//	410: ErrorResponse
//	422: ErrorResponse

// swagger:response EmployeeReadResponseOk
type EmployeeReadResponseOk struct {
	// in:body
	Body data.Employee
}

// swagger:parameters ReadEmployee
type EmployeeReadParams struct {
	// in:path
	Id int64 `json:"id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
