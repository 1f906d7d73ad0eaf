package data

const (
	RouteApiV1                  string = "/api/v1"
	RouteDepartments            string = RouteApiV1 + "/departments/"
	RouteDepartmentsId          string = RouteApiV1 + "/departments/{" + PathDepartmentId + "}"
	RouteDepartmentsIdf         string = RouteApiV1 + "/departments/%s"
	RouteDepartmentEmployees    string = RouteDepartmentsId + "/employees"
	RouteDepartmentEmployeesf   string = RouteDepartmentsIdf + "/employees"
	RouteEmployees              string = RouteApiV1 + "/employees/"
	RouteEmployeesId            string = RouteApiV1 + "/employees/{" + PathEmployeeId + "}"
	RouteEmployeesIdf           string = RouteApiV1 + "/employees/%d"
	RouteMetrics                string = "/metrics"
	HeaderCorrelationId         string = "Correlation-Id"
	ContentTypeApplicationJson  string = "application/json"
	ContentTypeApplicationJsonU string = "application/json; charset=utf-8"
)

const (
	PathDepartmentId string = "department_id"
	PathEmployeeId   string = "id"
)

const (
	ParameterLimit  string = "limit"
	ParameterOffset string = "offset"
)

const (
	ErrorCodeDepartmentNotFound string = "department_not_found"
	ErrorCodeEmployeeNotFound   string = "employee_not_found"
	ErrorCodeInvalidPagination  string = "invalid_pagination"
	ErrorCodeInvalidId          string = "invalid_id"
	ErrorCodeInternal           string = "internal_error"
)

// ErrorResponse is the body the backend sends for every non-2xx response.
type ErrorResponse struct {
	Ok        bool   `json:"ok"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message,omitempty"`
}
