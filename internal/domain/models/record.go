// internal/domain/models/record.go
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is a flat content record as exchanged over the REST API.
//
// Values keep whatever dynamic type the decoder produced: float64 and
// json.Number from JSON, int32/int64 from BSON, string, bool or nil. The
// accessors below normalize those so callers never switch on types.
type Record map[string]any

// ID returns the record's integer identity, or 0 when absent.
func (r Record) ID() int64 {
	n, _ := r.Int("id")
	return n
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns the value for key rendered as text. Missing and nil values
// yield "". Whole floats render without a fractional part.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Int returns the value for key as an integer and whether it was numeric.
// Numeric strings are accepted.
func (r Record) Int(key string) (int64, bool) {
	return toInt(r[key])
}

// Bool returns the value for key interpreted as a flag. Truthiness follows
// the usual form conventions: true, "true", "on", "1", non-zero numbers.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true
		}
		return false
	case nil:
		return false
	default:
		n, ok := toInt(v)
		return ok && n != 0
	}
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}
