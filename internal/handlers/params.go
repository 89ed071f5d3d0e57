package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Params are the node parameters of one input item.
//
// Hosts often deliver structured parameters as JSON text typed into a form field,
// so the object and array accessors accept either decoded values or a JSON string.
type Params map[string]any

// Common parameter names.
const (
	ParamTable      = "table"
	ParamID         = "id"
	ParamIDs        = "ids"
	ParamData       = "data"
	ParamQuery      = "query"
	ParamParameters = "parameters"
	ParamIndexName  = "indexName"
	ParamFields     = "fields"
	ParamOptions    = "options"
	ParamNamespace  = "namespace"
	ParamDatabase   = "database"
)

// String returns the parameter as a trimmed string. Numbers are formatted without exponent.
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// RequiredString is like String but fails when the value is blank.
func (p Params) RequiredString(op, key string) (string, error) {
	s := p.String(key)
	if s == "" {
		return "", ValidationError(op, key+" is required", nil)
	}
	return s, nil
}

// Int returns the parameter as an int, or 0 when it is absent.
func (p Params) Int(op, key string) (int, error) {
	switch v := p[key].(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, ValidationError(op, fmt.Sprintf("%s must be an integer, got %v", key, v), nil)
		}
		return int(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, ValidationError(op, fmt.Sprintf("%s must be an integer", key), err)
		}
		return n, nil
	default:
		return 0, ValidationError(op, fmt.Sprintf("%s must be an integer, got %T", key, v), nil)
	}
}

// Bool returns the parameter as a bool. Strings are parsed with [strconv.ParseBool].
func (p Params) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// Object returns the parameter as a JSON object. An absent or blank value yields an empty object.
func (p Params) Object(op, key string) (map[string]any, error) {
	switch v := p[key].(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return map[string]any{}, nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, ValidationError(op, key+" must be a JSON object", err)
		}
		if m == nil {
			m = map[string]any{}
		}
		return m, nil
	default:
		return nil, ValidationError(op, fmt.Sprintf("%s must be a JSON object, got %T", key, v), nil)
	}
}

// RequiredObject is like Object but fails when the value is absent or blank.
// An explicit empty object is accepted.
func (p Params) RequiredObject(op, key string) (map[string]any, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, ValidationError(op, key+" is required", nil)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, ValidationError(op, key+" is required", nil)
		}
	}
	return p.Object(op, key)
}

// Array returns the parameter as a JSON array. An absent value yields nil.
func (p Params) Array(op, key string) ([]any, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var a []any
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			return nil, ValidationError(op, key+" must be a JSON array", err)
		}
		return a, nil
	default:
		return nil, ValidationError(op, fmt.Sprintf("%s must be a JSON array, got %T", key, v), nil)
	}
}

// StringList returns a list parameter given either as an array or as comma separated text.
// Blank entries are dropped.
func (p Params) StringList(key string) []string {
	var raw []string
	switch v := p[key].(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, e := range v {
			raw = append(raw, Params{"v": e}.String("v"))
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Options returns the nested "options" collection.
func (p Params) Options(op string) (Params, error) {
	m, err := p.Object(op, ParamOptions)
	if err != nil {
		return nil, err
	}
	return Params(m), nil
}
