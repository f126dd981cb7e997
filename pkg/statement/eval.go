package statement

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolvePath walks a dot-separated path through nested maps. It reports
// false when any segment is missing or the current value is not an object.
// There is no indexing and no escaping of literal dots.
func ResolvePath(context interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}

	current := context
	for _, segment := range strings.Split(path, ".") {
		fields, ok := asMap(current)
		if !ok {
			return nil, false
		}
		value, ok := fields[segment]
		if !ok {
			return nil, false
		}
		current = value
	}
	return current, true
}

// asMap accesses a map-like structure as map[string]interface{}
func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case TemplateData:
		return v, v != nil
	case map[string]interface{}:
		return v, v != nil
	case map[string]string:
		if v == nil {
			return nil, false
		}
		m := make(map[string]interface{}, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m, true
	default:
		return nil, false
	}
}

// toItems converts the transactions value to a slice of line item contexts.
// Anything that is not a sequence yields no items.
func toItems(value interface{}) []map[string]interface{} {
	var raw []interface{}
	switch v := value.(type) {
	case []interface{}:
		raw = v
	case []map[string]interface{}:
		items := make([]map[string]interface{}, len(v))
		copy(items, v)
		return items
	case []TemplateData:
		items := make([]map[string]interface{}, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items
	case []map[string]string:
		raw = make([]interface{}, len(v))
		for i, item := range v {
			raw[i] = item
		}
	case []TransactionLine:
		items := make([]map[string]interface{}, len(v))
		for i, item := range v {
			items[i] = item.Fields()
		}
		return items
	default:
		return nil
	}

	items := make([]map[string]interface{}, len(raw))
	for i, item := range raw {
		if line, ok := item.(TransactionLine); ok {
			items[i] = line.Fields()
			continue
		}
		// Non-object elements still occupy a position; every lookup on them fails.
		m, _ := asMap(item)
		items[i] = m
	}
	return items
}

// IsSentinelEmpty reports whether a display string is one of the canonical
// "no value" placeholders: empty, whitespace only, "0" or "-".
func IsSentinelEmpty(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed == "" || s == "0" || s == "-"
}

// IsTruthy decides a truthiness conditional. Strings are falsy when isEmpty
// reports them as placeholders; a nil isEmpty means IsSentinelEmpty.
func IsTruthy(value interface{}, isEmpty func(string) bool) bool {
	if isEmpty == nil {
		isEmpty = IsSentinelEmpty
	}
	if value == nil {
		return false
	}

	switch v := value.(type) {
	case string:
		return !isEmpty(v)
	case bool:
		return v
	case int:
		return v != 0
	case int8, int16, int32, int64:
		n, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
		return n != 0
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v) != "0"
	case float32:
		return v != 0
	case float64:
		return v != 0
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	case TemplateData:
		return len(v) > 0
	default:
		return true // Non-nil objects are truthy
	}
}

// FormatValue converts a value to its string representation
func FormatValue(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', 10, 32)
	case float64:
		// 'g' with precision 15 drops trailing zeros and float noise
		return strconv.FormatFloat(v, 'g', 15, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
