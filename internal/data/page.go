package data

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultLimit is the page size the backend applies when limit is omitted.
const DefaultLimit int = 100

// Page is a bounded window of a server-side collection; Count is the total
// number of matching records, not len(Items).
type Page[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// EmptyPage returns the page used in place of a failed fetch. Items is
// non-nil so it serialises as [].
func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

func (p *Page[T]) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *Page[T]) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}

// PageRequest is a limit/offset window. It's sent as-is; the backend is
// responsible for rejecting or clamping values.
type PageRequest struct {
	Limit  int `json:"limit" validate:"min=1"`
	Offset int `json:"offset" validate:"min=0"`
}

func (p PageRequest) ToParams() url.Values {
	return url.Values{
		ParameterLimit:  []string{strconv.Itoa(p.Limit)},
		ParameterOffset: []string{strconv.Itoa(p.Offset)},
	}
}

// FromParams reads limit and offset from query parameters, falling back to
// DefaultLimit and zero when they're absent.
func (p *PageRequest) FromParams(params url.Values) error {
	p.Limit, p.Offset = DefaultLimit, 0
	for key, values := range params {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		switch strings.ToLower(key) {
		case ParameterLimit:
			limit, err := strconv.Atoi(values[0])
			if err != nil {
				return errors.Errorf("invalid %s: %q", ParameterLimit, values[0])
			}
			p.Limit = limit
		case ParameterOffset:
			offset, err := strconv.Atoi(values[0])
			if err != nil {
				return errors.Errorf("invalid %s: %q", ParameterOffset, values[0])
			}
			p.Offset = offset
		}
	}
	return nil
}

func (p PageRequest) ToKey() string {
	return fmt.Sprintf("%s=%d,%s=%d", ParameterLimit, p.Limit,
		ParameterOffset, p.Offset)
}
