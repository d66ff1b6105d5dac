// Package rules implements the Condition Evaluator (§4.3): the `if_*` guard
// checked before a node's main pipeline runs. Comparisons are narrowed
// numerically the way codec.Narrow defines, the same Op-driven shape as the
// teacher's rules.Conditional, adapted from comparing Go struct fields by
// reflection to comparing Record field reads through the Value Accessor.
package rules

import (
	"github.com/ubleipzig/spcht/access"
	"github.com/ubleipzig/spcht/codec"
	"github.com/ubleipzig/spcht/internal/ir"
	"github.com/ubleipzig/spcht/internal/model"
	"github.com/ubleipzig/spcht/transform"
)

// Recognized lexemes for if_condition (§4.3).
const (
	OpEq     = "=="
	OpNe     = "!="
	OpLt     = "<"
	OpLe     = "<="
	OpGt     = ">"
	OpGe     = ">="
	OpExists = "exi"
)

// Recognized reports whether op is a supported if_condition lexeme.
func Recognized(op string) bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpExists:
		return true
	default:
		return false
	}
}

// ListCompatible reports whether op may be paired with a list if_value;
// only equality/inequality are, everything else is a load-time error (§4.5).
func ListCompatible(op string) bool {
	return op == OpEq || op == OpNe
}

// Eval evaluates node's if_* guard against rec. A node with no IfField set
// carries no guard and always evaluates true.
func Eval(rec model.Record, node *ir.Node) bool {
	if node.IfField == "" {
		return true
	}
	raw := access.Read(rec, node.Source, node.IfField)

	if node.IfCondition == OpExists {
		return len(raw) > 0
	}

	if len(raw) == 0 {
		// Absence as infinite negativity (§4.3, §8 property 7): a missing
		// if_field can never satisfy an equality/greater-than guard, and
		// always satisfies an inequality/less-than one.
		switch node.IfCondition {
		case OpEq, OpGt, OpGe:
			return false
		default: // !=, <, <=
			return true
		}
	}

	values := transform.Match(raw, node.IfMatch)
	values = transform.CutReplace(values, node.IfCut, node.IfReplace)
	values = transform.Affix(values, node.IfPrepend, node.IfAppend)

	if node.IfValueList {
		wants := make([]model.Scalar, len(node.IfValues))
		for i, w := range node.IfValues {
			wants[i] = model.Str(w)
		}
		anyEqual := false
	outer:
		for _, v := range values {
			for _, w := range wants {
				if compare(v, w, OpEq) {
					anyEqual = true
					break outer
				}
			}
		}
		if node.IfCondition == OpNe {
			return !anyEqual
		}
		return anyEqual
	}

	if len(node.IfValues) == 0 {
		return false
	}
	want := model.Str(node.IfValues[0])
	for _, v := range values {
		if compare(v, want, node.IfCondition) {
			return true
		}
	}
	return false
}

// compare applies op to a and b, narrowing numerically first (§4.3: "both
// sides are coerced to the narrowest of int -> float -> string that fits
// both; comparison uses numeric order when both are numeric, otherwise
// lexicographic").
func compare(a, b model.Scalar, op string) bool {
	na, nb, numeric := codec.Narrow(a, b)
	if numeric {
		if na.Kind() == model.KindInt {
			ia, _ := na.AsInt()
			ib, _ := nb.AsInt()
			return compareOrdered(float64(ia), float64(ib), op)
		}
		fa, _ := na.AsFloat()
		fb, _ := nb.AsFloat()
		return compareOrdered(fa, fb, op)
	}
	ta, tb := a.Text(), b.Text()
	switch op {
	case OpEq:
		return ta == tb
	case OpNe:
		return ta != tb
	case OpLt:
		return ta < tb
	case OpLe:
		return ta <= tb
	case OpGt:
		return ta > tb
	case OpGe:
		return ta >= tb
	default:
		return false
	}
}

func compareOrdered(a, b float64, op string) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	default:
		return false
	}
}
