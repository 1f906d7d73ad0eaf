package swagger

import "github.com/antonio-alexander/go-org-directory/internal/data"

// swagger:route GET /departments/ Department ListDepartments
// Lists departments, one page at a time.
//
//	Produces:
//	- application/json
//
// responses:
//	200: DepartmentsListResponseOk
//	422: ErrorResponse

// swagger:response DepartmentsListResponseOk
type DepartmentsListResponseOk struct {
	// in:body
	Body data.Page[data.Department]
}

// swagger:parameters ListDepartments
type DepartmentsListParams struct {
	PageParams

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

// swagger:route GET /departments/{department_id} Department ReadDepartment
// Reads a department and its direct children.
//
//	Produces:
//	- application/json
//
// responses:
//	200: DepartmentReadResponseOk
//	410: ErrorResponse
//	422: ErrorResponse

// swagger:response DepartmentReadResponseOk
type DepartmentReadResponseOk struct {
	// in:body
	Body data.Department
}

// swagger:parameters ReadDepartment
type DepartmentReadParams struct {
	// in:path
	DepartmentId int64 `json:"department_id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

// swagger:route GET /departments/{department_id}/employees Department ListDepartmentEmployees
// Lists the employees of a department, one page at a time.
//
//	Produces:
//	- application/json
//
// responses:
//	200: EmployeesListResponseOk
//	422: ErrorResponse

// swagger:parameters ListDepartmentEmployees
type DepartmentEmployeesListParams struct {
	PageParams

	// in:path
	DepartmentId int64 `json:"department_id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
