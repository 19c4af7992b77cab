// This file implements utilities for parsing and validating request data:
// the analytics filter from query parameters, the tenant scope header and
// JSON or form-encoded bodies.

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"thot/internal/core"
)

// ScopeHeader carries the business units the caller may see, as a
// comma-separated id list set by the fronting gateway.
const ScopeHeader = "X-Business-Units"

const maxBodyBytes = 1 << 20

// FieldError reports a request field that could not be parsed.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// ParseScope reads the tenant scope header. A missing header means the
// caller is unrestricted (nil); a present but empty header means nothing
// is visible (empty, non-nil).
func ParseScope(h http.Header) ([]int64, error) {
	values, ok := h[http.CanonicalHeaderKey(ScopeHeader)]
	if !ok {
		return nil, nil
	}
	ids, err := parseIDList(ScopeHeader, values)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// ParseFilter builds the analytics filter from date_from, date_to,
// customer_id and business_unit_id. business_unit_id may be repeated or
// comma-separated.
func ParseFilter(q url.Values, scope []int64) (core.Filter, error) {
	f := core.Filter{Scope: scope}

	for _, p := range []struct {
		key string
		dst **core.Date
	}{{"date_from", &f.From}, {"date_to", &f.To}} {
		v := strings.TrimSpace(q.Get(p.key))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, &FieldError{Field: p.key, Reason: "expected YYYY-MM-DD"}
		}
		*p.dst = &d
	}

	if v := strings.TrimSpace(q.Get("customer_id")); v != "" {
		id, err := parseID(v)
		if err != nil {
			return core.Filter{}, &FieldError{Field: "customer_id", Reason: err.Error()}
		}
		f.CustomerID = &id
	}

	units, err := parseIDList("business_unit_id", q["business_unit_id"])
	if err != nil {
		return core.Filter{}, err
	}
	f.BusinessUnits = units
	return f, nil
}

func parseIDList(field string, values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, &FieldError{Field: field, Reason: err.Error()}
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// RequestBodyParser reads a JSON or form-encoded body once and exposes its
// fields as sanitized strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse parses the body as JSON when it looks like a JSON object, and as
// form data otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]interface{})
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// OptionalID returns the id in key, or nil when the field is empty.
func (p *RequestBodyParser) OptionalID(key string) (*int64, error) {
	v := p.Get(key)
	if v == "" {
		return nil, nil
	}
	id, err := parseID(v)
	if err != nil {
		return nil, &FieldError{Field: key, Reason: err.Error()}
	}
	return &id, nil
}

// Amount parses a decimal amount. Empty fields are zero.
func (p *RequestBodyParser) Amount(key string) (core.Money, error) {
	v := p.Get(key)
	if v == "" {
		return core.Money{}, nil
	}
	m, err := core.ParseAmount(v)
	if err != nil {
		return core.Money{}, &FieldError{Field: key, Reason: "invalid amount"}
	}
	return m, nil
}

// OptionalAmount parses a decimal amount, or nil when the field is empty.
func (p *RequestBodyParser) OptionalAmount(key string) (*core.Money, error) {
	if p.Get(key) == "" {
		return nil, nil
	}
	m, err := p.Amount(key)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Date parses a YYYY-MM-DD date. Empty fields are the zero date.
func (p *RequestBodyParser) Date(key string) (core.Date, error) {
	v := p.Get(key)
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &FieldError{Field: key, Reason: "expected YYYY-MM-DD"}
	}
	return d, nil
}

// OptionalBool parses a boolean, or nil when the field is empty.
func (p *RequestBodyParser) OptionalBool(key string) (*bool, error) {
	v := p.Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &FieldError{Field: key, Reason: "expected true or false"}
	}
	return &b, nil
}

// Bool parses a boolean, returning def when the field is empty.
func (p *RequestBodyParser) Bool(key string, def bool) (bool, error) {
	b, err := p.OptionalBool(key)
	if err != nil || b == nil {
		return def, err
	}
	return *b, nil
}

// Int parses an integer, returning def when the field is empty.
func (p *RequestBodyParser) Int(key string, def int) (int, error) {
	v := p.Get(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, &FieldError{Field: key, Reason: "expected an integer"}
	}
	return i, nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
