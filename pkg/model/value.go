package model

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
)

// Normalize copies a decoded JSON value into the canonical in-memory
// form used throughout the engine: integral numbers become int64, other
// numbers float64, objects map[string]interface{} and arrays
// []interface{}. json.Number values (from decoders run with UseNumber)
// are parsed here. Containers are always fresh, so the result never
// aliases the input.
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t)
		}
		return float64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}

// typeRank positions every JSON type in the cross-type total order:
// null < boolean < number < string < array < object.
func typeRank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int64, float64:
		return 2
	case string:
		return 3
	case []interface{}:
		return 4
	case map[string]interface{}:
		return 5
	}
	return 6
}

// CompareValues orders two normalized JSON values under the engine's
// total order. Arrays compare lexicographically by element, objects
// lexicographically by sorted field name then field value.
func CompareValues(a, b interface{}) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch ta := a.(type) {
	case nil:
		return 0
	case bool:
		tb := b.(bool)
		switch {
		case ta == tb:
			return 0
		case !ta:
			return -1
		default:
			return 1
		}
	case int64:
		switch tb := b.(type) {
		case int64:
			switch {
			case ta < tb:
				return -1
			case ta > tb:
				return 1
			default:
				return 0
			}
		case float64:
			return compareFloats(float64(ta), tb)
		}
	case float64:
		switch tb := b.(type) {
		case int64:
			return compareFloats(ta, float64(tb))
		case float64:
			return compareFloats(ta, tb)
		}
	case string:
		return strings.Compare(ta, b.(string))
	case []interface{}:
		tb := b.([]interface{})
		for i := 0; i < len(ta) && i < len(tb); i++ {
			if c := CompareValues(ta[i], tb[i]); c != 0 {
				return c
			}
		}
		return len(ta) - len(tb)
	case map[string]interface{}:
		tb := b.(map[string]interface{})
		ka, kb := sortedFields(ta), sortedFields(tb)
		for i := 0; i < len(ka) && i < len(kb); i++ {
			if c := strings.Compare(ka[i], kb[i]); c != 0 {
				return c
			}
			if c := CompareValues(ta[ka[i]], tb[kb[i]]); c != 0 {
				return c
			}
		}
		return len(ka) - len(kb)
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func sortedFields(m map[string]interface{}) []string {
	fields := make([]string, 0, len(m))
	for k := range m {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
