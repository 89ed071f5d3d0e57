// Package item defines the input and output items exchanged with the workflow host
// and converts SurrealDB client results into output items.
package item

import (
	"fmt"
	"reflect"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// ResultKey is the key used to wrap payloads that are not objects.
const ResultKey = "result"

// ErrorKey is the key carrying the message of an error item.
const ErrorKey = "error"

// Input is one item handed to the connector by the host.
type Input struct {
	// JSON is the upstream payload of the item. It is not interpreted by the connector.
	JSON map[string]any `json:"json,omitempty" yaml:"json,omitempty"`
	// Params are the node parameters evaluated for this item.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Item is one output item.
type Item struct {
	JSON map[string]any `json:"json"`
	// PairedItem is the index of the input item that produced this item.
	PairedItem int `json:"pairedItem"`
}

// Error builds the error-shaped item used when a batch continues on failure.
func Error(err error, index int) Item {
	return Item{JSON: map[string]any{ErrorKey: err.Error()}, PairedItem: index}
}

// IsError reports whether the item was produced by [Error].
func (i Item) IsError() bool {
	if len(i.JSON) != 1 {
		return false
	}
	_, ok := i.JSON[ErrorKey].(string)
	return ok
}

// New wraps one payload into an item.
// Objects become the item JSON directly, everything else is wrapped under [ResultKey].
func New(payload any, index int) Item {
	v := Normalize(payload)
	if m, ok := v.(map[string]any); ok {
		return Item{JSON: m, PairedItem: index}
	}
	return Item{JSON: map[string]any{ResultKey: v}, PairedItem: index}
}

// FormatSingleResult turns a client result into items without expanding arrays
// into separate items, except that nil produces no item at all.
func FormatSingleResult(result any, index int) []Item {
	if isNil(result) {
		return []Item{}
	}
	return []Item{New(result, index)}
}

// FormatArrayResult expands a client result into one item per element.
// Nested arrays are flattened, nil elements are dropped, and a non-array result
// yields a single item.
func FormatArrayResult(result any, index int) []Item {
	out := []Item{}
	if isNil(result) {
		return out
	}
	elems, ok := asSlice(result)
	if !ok {
		return append(out, New(result, index))
	}
	for _, e := range elems {
		if isNil(e) {
			continue
		}
		if nested, ok := asSlice(e); ok {
			out = append(out, FormatArrayResult(nested, index)...)
			continue
		}
		out = append(out, New(e, index))
	}
	return out
}

// FirstArray returns the first array found in a multi-statement response,
// looking one level into nested arrays. It returns nil when no array is found.
func FirstArray(result any) []any {
	elems, ok := asSlice(result)
	if !ok {
		return nil
	}
	for _, e := range elems {
		if inner, ok := asSlice(e); ok {
			return inner
		}
	}
	return elems
}

// IsEmpty reports whether a result carries no data: nil, an empty array or an empty object.
func IsEmpty(result any) bool {
	if isNil(result) {
		return true
	}
	if elems, ok := asSlice(result); ok {
		return len(elems) == 0
	}
	if m, ok := Normalize(result).(map[string]any); ok {
		return len(m) == 0
	}
	return false
}

// Normalize converts SDK specific values into plain JSON-friendly values.
// Record ids become their string form and maps keyed by any are re-keyed by string.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case models.RecordID:
		return t.String()
	case *models.RecordID:
		if t == nil {
			return nil
		}
		return t.String()
	case models.Table:
		return string(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	}
	return v
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	case *[]any:
		if t == nil {
			return nil, false
		}
		return *t, true
	}
	return nil, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := v.(models.CustomNil); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
