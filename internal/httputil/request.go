package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// MaxJSONBodyBytes bounds JSON request bodies.
const MaxJSONBodyBytes = 1 << 20

var ErrInvalidID = errors.New("invalid id")

// DecodeJSON decodes a bounded JSON body into dst. Unknown fields are
// ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// ParseID parses a positive int64 identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// QueryInt reads an integer query parameter. Missing or malformed values
// yield 0 so callers can apply their own defaults.
func QueryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
