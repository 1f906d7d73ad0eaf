// Package Swagger go-org-directory
//
// A read-only API over an organisation's departments and employees.
//
//	Schemes: http, https
//	Version: 1.0
//	Host: localhost:8000
//	BasePath: /api/v1
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package swagger

import "github.com/antonio-alexander/go-org-directory/internal/data"

// swagger:response ErrorResponse
type ErrorResponse struct {
	// in:body
	Body data.ErrorResponse
}

// PageParams are the limit/offset query parameters; limit defaults to 100.
type PageParams struct {
	// in:query
	// minimum: 1
	Limit int `json:"limit"`

	// in:query
	// minimum: 0
	Offset int `json:"offset"`
}
