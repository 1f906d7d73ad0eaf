package data

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// DepartmentIdentifier lists the kinds of value a department id may be
// built from.
type DepartmentIdentifier interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~string
}

// DepartmentId identifies a department in a URL. It's deliberately not
// validated: integer and string ids are both passed through to the backend.
type DepartmentId string

func NewDepartmentId[T DepartmentIdentifier](id T) DepartmentId {
	return DepartmentId(fmt.Sprint(id))
}

func (d DepartmentId) String() string {
	return string(d)
}

func (d DepartmentId) PathEscaped() string {
	return url.PathEscape(string(d))
}

func (d DepartmentId) Int64() (int64, error) {
	return strconv.ParseInt(string(d), 10, 64)
}

type Department struct {
	Id       int64        `json:"id" db:"id"`
	Title    string       `json:"title" db:"title"`
	ParentId *int64       `json:"parent_id" db:"parent_id"`
	Children []Department `json:"children" db:"-"`
}

func (d *Department) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Department) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}
