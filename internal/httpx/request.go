package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"water-delivery/internal/apperr"
)

const maxBodyBytes = 1 << 20

// DecodeJSON decodes a JSON request body into v, rejecting unknown fields
func DecodeJSON(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return apperr.Validation("content_type", "Content-Type must be application/json")
		}
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("body", "request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperr.Validation(typeErr.Field, fmt.Sprintf("expected %s", typeErr.Type))
		}
		return apperr.Validation("body", "invalid JSON format")
	}
	return nil
}

// PathID parses a positive integer path value
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(name, "must be a positive integer")
	}
	return id, nil
}

// QueryInt parses an optional integer query parameter
func QueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(name, "must be an integer")
	}
	return n, nil
}

var (
	truthy = map[string]bool{"true": true, "1": true, "sim": true, "s": true, "on": true, "yes": true}
	falsy  = map[string]bool{"false": true, "0": true, "nao": true, "não": true, "n": true, "off": true, "no": true}
)

// ParseBool accepts the boolean spellings clients send for flags
func ParseBool(raw string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case truthy[v]:
		return true, nil
	case falsy[v]:
		return false, nil
	}
	return false, apperr.Validation("active", fmt.Sprintf("%q is not a boolean", raw))
}

// Bool is a JSON flag decoded leniently at the transport boundary: booleans,
// 0/1 and the strings accepted by ParseBool. Inside the service it is a plain bool.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case bool:
		*b = Bool(t)
	case float64:
		switch t {
		case 1:
			*b = true
		case 0:
			*b = false
		default:
			return apperr.Validation("active", fmt.Sprintf("%v is not a boolean", t))
		}
	case string:
		parsed, err := ParseBool(t)
		if err != nil {
			return err
		}
		*b = Bool(parsed)
	default:
		return apperr.Validation("active", "value is not a boolean")
	}
	return nil
}

// Ptr converts an optional lenient flag into an optional bool
func (b *Bool) Ptr() *bool {
	if b == nil {
		return nil
	}
	v := bool(*b)
	return &v
}
