package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// toString safely converts an interface{} to string
func toString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toStringPtr keeps NULL distinguishable from an empty string
func toStringPtr(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := toString(v)
	return &s
}

func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case nil:
		return 0
	case int64:
		return val
	case int32:
		return int64(val)
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(val), 10, 64)
		return n
	default:
		return 0
	}
}

func toInt64Ptr(v interface{}) *int64 {
	if v == nil {
		return nil
	}
	n := toInt64(v)
	return &n
}

func toInt(v interface{}) int {
	return int(toInt64(v))
}

func toBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int64:
		return val != 0
	case int:
		return val != 0
	case string:
		b, _ := strconv.ParseBool(val)
		return b || strings.EqualFold(val, "yes")
	default:
		return false
	}
}

// toStringSlice accepts native arrays as well as comma separated text
func toStringSlice(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []string:
		return val
	case []interface{}:
		result := make([]string, len(val))
		for i, item := range val {
			result[i] = toString(item)
		}
		return result
	default:
		s := toString(val)
		if s == "" {
			return []string{}
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
}
