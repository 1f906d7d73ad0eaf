package data

import (
	"encoding/json"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Date accepts the timestamp shapes the backend emits, with or without a
// zone, or a bare date.
type Date struct {
	time.Time
}

// MarshalJSON keeps sub-second precision and writes a zero date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339Nano))
}

func (d *Date) UnmarshalJSON(bytes []byte) error {
	var s string

	if string(bytes) == "null" {
		return nil
	}
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return err
}

type Employee struct {
	Id            int64   `json:"id" db:"id"`
	FirstName     string  `json:"first_name" db:"first_name"`
	LastName      string  `json:"last_name" db:"last_name"`
	MiddleName    *string `json:"middle_name" db:"middle_name"`
	Amount        int64   `json:"amount" db:"amount"`
	HireDate      Date    `json:"hire_date" db:"-"`
	PositionTitle *string `json:"position_title" db:"position_title"`
	DepartmentId  int64   `json:"department_id" db:"department_id"`
}

func (e *Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// EmployeeInput is an employee to be inserted; positions and departments are
// referenced by id.
type EmployeeInput struct {
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	MiddleName   *string   `json:"middle_name" db:"middle_name"`
	Amount       int64     `json:"amount" db:"amount"`
	HireDate     time.Time `json:"hire_date" db:"hire_date"`
	PositionId   *int64    `json:"position_id" db:"position_id"`
	DepartmentId int64     `json:"department_id" db:"department_id"`
}
