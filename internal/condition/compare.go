package condition

import (
	"reflect"

	"github.com/quiverhq/quiver/pkg/model"
)

// looseEqual compares two values structurally, treating all numeric types as
// equivalent so that 5 (int, from Go code or YAML) equals 5.0 (float64, from
// JSON decoding).
func looseEqual(a, b interface{}) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

// compareOrdered applies gt/lt/gte/lte. Both operands must be orderable:
// numeric, or both strings (compared lexically). Non-orderable operands make
// the condition false rather than an error.
func compareOrdered(op model.Operator, a, b interface{}) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return false
		}
		return applyOrder(op, af < bf, af == bf)
	}
	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return false
		}
		return applyOrder(op, as < bs, as == bs)
	}
	return false
}

func applyOrder(op model.Operator, less, equal bool) bool {
	switch op {
	case model.OpGt:
		return !less && !equal
	case model.OpLt:
		return less
	case model.OpGte:
		return !less
	case model.OpLte:
		return less || equal
	}
	return false
}

// memberOf tests membership of value in seq. A non-sequence seq makes the
// condition false.
func memberOf(value, seq interface{}) bool {
	s, ok := asSequence(seq)
	if !ok {
		return false
	}
	return memberOfSeq(value, s)
}

func memberOfSeq(value interface{}, seq []interface{}) bool {
	for _, item := range seq {
		if looseEqual(value, item) {
			return true
		}
	}
	return false
}

// asSequence normalizes slice values into []interface{}. JSON decoding
// produces []interface{} directly; triggers registered from Go code may use
// typed slices.
func asSequence(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case []interface{}:
		return s, true
	case []string:
		out := make([]interface{}, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	case []int:
		out := make([]interface{}, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
