package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/timecapsule/internal/common"
)

const (
	MinYear = 2000
	MaxYear = 9999
)

var errInvalidYear = common.Invalid("Invalid year")

// flexInt decodes a JSON number or a numeric string. A missing or null
// value leaves Set false.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = flexInt{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = flexInt{}
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*f = flexInt{Value: n, Set: true}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt{Value: n, Set: true}
	return nil
}

// decodeJSON reads a JSON object body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

func validYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// yearFromQuery parses ?year=. An absent value yields def, or an error
// when required is set.
func yearFromQuery(r *http.Request, def int, required bool) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		if required {
			return 0, errInvalidYear
		}
		return def, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || !validYear(year) {
		return 0, errInvalidYear
	}
	return year, nil
}

// yearFromBody resolves a body year. Zero and absent values mean def, or
// an error when required is set.
func yearFromBody(v flexInt, def int, required bool) (int, error) {
	if !v.Set || v.Value == 0 {
		if required {
			return 0, errInvalidYear
		}
		return def, nil
	}
	if !validYear(v.Value) {
		return 0, errInvalidYear
	}
	return v.Value, nil
}
