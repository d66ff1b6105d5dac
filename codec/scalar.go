// Package codec normalizes the dynamic values found at a Record's
// boundary (raw Go `any`s decoded from JSON/YAML input) into model.Scalar,
// and narrows pairs of scalars for comparison the way the Condition
// Evaluator needs (§4.3: "both sides are coerced to the narrowest of
// int -> float -> string that fits both").
//
// This package is the teacher's rfc3339/identity codec slot repurposed:
// the teacher converts between wire and domain representations for a
// fixed pair of types (string<->time.Time); here the wire/domain pair is
// always (Go any) <-> (model.Scalar), and the conversion is total rather
// than fallible, since the record boundary has no schema to reject against.
package codec

import (
	"encoding/json"
	"strconv"

	"github.com/ubleipzig/spcht/internal/model"
)

// FromAny normalizes a raw record value into a Scalar. Supported inputs are
// string, int/int8/int16/int32/int64, uint/uint32/uint64, float32/float64,
// json.Number, and bool (rendered as "true"/"false", matching the original
// implementation's lenient treatment of anything stringifiable). Any other
// type (including uint8/uint16, maps and structs) yields an empty string
// Scalar; callers that need strict typing should validate the record shape
// upstream.
func FromAny(v any) model.Scalar {
	switch t := v.(type) {
	case model.Scalar:
		return t
	case string:
		return model.Str(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return model.Int(i)
		}
		if f, err := t.Float64(); err == nil {
			return model.Float(f)
		}
		return model.Str(t.String())
	case int:
		return model.Int(int64(t))
	case int8:
		return model.Int(int64(t))
	case int16:
		return model.Int(int64(t))
	case int32:
		return model.Int(int64(t))
	case int64:
		return model.Int(t)
	case uint:
		return model.Int(int64(t))
	case uint32:
		return model.Int(int64(t))
	case uint64:
		return model.Int(int64(t))
	case float32:
		return model.Float(float64(t))
	case float64:
		return model.Float(t)
	case bool:
		if t {
			return model.Str("true")
		}
		return model.Str("false")
	default:
		return model.Str("")
	}
}

// ToSequence normalizes a raw record field value (scalar or heterogeneous
// slice) into an ordered []model.Scalar, preserving order (§8 property 3).
// A missing field is represented by the caller as nil/absence before
// reaching here; ToSequence itself always returns a (possibly empty) slice.
func ToSequence(v any) []model.Scalar {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case []model.Scalar:
		return t
	case []any:
		out := make([]model.Scalar, 0, len(t))
		for _, item := range t {
			out = append(out, ToSequence(item)...)
		}
		return out
	case []string:
		out := make([]model.Scalar, 0, len(t))
		for _, s := range t {
			out = append(out, model.Str(s))
		}
		return out
	default:
		return []model.Scalar{FromAny(v)}
	}
}

// numericKind classifies a Scalar for the purposes of numeric narrowing.
type numericKind int

const (
	numNone numericKind = iota
	numInt
	numFloat
)

func classify(s model.Scalar) numericKind {
	switch s.Kind() {
	case model.KindInt:
		return numInt
	case model.KindFloat:
		return numFloat
	default:
		// A string scalar may still "look" numeric (e.g. MARC subfield
		// values and if_value literals always arrive as strings); try to
		// parse it so narrowing still applies across types, matching
		// if_possible_make_this_numerical in the original implementation.
		t := s.Text()
		if _, err := strconv.ParseInt(t, 10, 64); err == nil {
			return numInt
		}
		if _, err := strconv.ParseFloat(t, 64); err == nil {
			return numFloat
		}
		return numNone
	}
}

// Narrow coerces a and b to the narrowest common representation among
// {int, float, string} that fits both, per §4.3. It returns the two
// coerced scalars plus whether the comparison should be treated as numeric.
func Narrow(a, b model.Scalar) (na, nb model.Scalar, numeric bool) {
	ka, kb := classify(a), classify(b)
	if ka == numNone || kb == numNone {
		return a, b, false
	}
	if ka == numInt && kb == numInt {
		ia, aok := asInt(a)
		ib, bok := asInt(b)
		if aok && bok {
			return model.Int(ia), model.Int(ib), true
		}
	}
	fa, aok := asFloat(a)
	fb, bok := asFloat(b)
	if aok && bok {
		return model.Float(fa), model.Float(fb), true
	}
	return a, b, false
}

func asInt(s model.Scalar) (int64, bool) {
	if i, ok := s.AsInt(); ok {
		return i, true
	}
	if i, err := strconv.ParseInt(s.Text(), 10, 64); err == nil {
		return i, true
	}
	return 0, false
}

func asFloat(s model.Scalar) (float64, bool) {
	if f, ok := s.AsFloat(); ok {
		return f, true
	}
	if f, err := strconv.ParseFloat(s.Text(), 64); err == nil {
		return f, true
	}
	return 0, false
}
