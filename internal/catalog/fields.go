package catalog

import (
	"math"
	"strconv"
)

// The upstream API emits inconsistent shapes across records, lists and API
// revisions, so every field read goes through one of these extract-or-default
// helpers instead of an ad hoc type assertion. A key that is missing, null,
// or the wrong shape yields the zero default, never a panic.

// asObject returns v as a JSON object, or nil when it is anything else.
func asObject(v any) map[string]any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

// asList returns v as a JSON array, or nil when it is anything else.
// A string, object or null where a list was expected coerces to empty.
func asList(v any) []any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	return list
}

// stringField reads a string value from an object, defaulting to "".
func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// stringOrDefault reads a string value, substituting def when the key is
// absent, null, empty or not a string.
func stringOrDefault(obj map[string]any, key, def string) string {
	if s, ok := obj[key].(string); ok && s != "" {
		return s
	}
	return def
}

// stringOrMissing reads a string value, substituting def only when the key
// is absent entirely. A present-but-empty value stays empty.
func stringOrMissing(obj map[string]any, key, def string) string {
	if _, present := obj[key]; !present {
		return def
	}
	return stringField(obj, key)
}

// idField reads an identifier that may arrive as a string or a JSON number.
func idField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	}
	return ""
}

// floatField reads an optional numeric value; nil means absent.
func floatField(obj map[string]any, key string) *float64 {
	switch v := obj[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

// intField reads an optional integer value; non-integral numbers are
// truncated the way the upstream serializer truncates them.
func intField(obj map[string]any, key string) *int {
	f := floatField(obj, key)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// boolField reads an optional boolean value; nil means absent.
func boolField(obj map[string]any, key string) *bool {
	if v, ok := obj[key].(bool); ok {
		return &v
	}
	return nil
}

// stringList coerces v to a list of strings, keeping only string elements.
func stringList(v any) []string {
	out := []string{}
	for _, el := range asList(v) {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringify renders a scalar the way the source API would print it, for
// fields like series position that are strings with occasional numeric
// values mixed in.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatNumber(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
