package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToIntOK converts integers, integral floats and numeric strings to int.
// The second value is false when val does not hold a whole number.
func ToIntOK(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case int16:
		return int(v), true
	case int8:
		return int(v), true
	case uint:
		return int(v), true
	case uint64:
		return int(v), true
	case uint32:
		return int(v), true
	case uint16:
		return int(v), true
	case uint8:
		return int(v), true
	case float64:
		return floatToInt(v)
	case float32:
		return floatToInt(float64(v))
	case string:
		return parseInt(v)
	case []byte:
		return parseInt(string(v))
	case fmt.Stringer:
		return parseInt(v.String())
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return floatToInt(f)
	}
	return 0, false
}

// NormalizeKey trims and lower-cases a lookup key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
