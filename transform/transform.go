// Package transform implements the Value Transformer (§4.2): the fixed
// pipeline of pure per-value operations (match, mapping, cut+replace,
// prepend/append, insert_into, static_field) applied after a value has been
// read by the Value Accessor.
package transform

import (
	"regexp"
	"strings"

	"github.com/ubleipzig/spcht/internal/ir"
	"github.com/ubleipzig/spcht/internal/model"
)

// Match keeps only values whose string form matches re (§4.2 step 1). A nil
// re is a no-op, matching the "if set" clause.
func Match(values []model.Scalar, re *regexp.Regexp) []model.Scalar {
	if re == nil {
		return values
	}
	out := make([]model.Scalar, 0, len(values))
	for _, v := range values {
		if re.MatchString(v.Text()) {
			out = append(out, v)
		}
	}
	return out
}

// CutReplace substitutes all occurrences of cut with replace in each
// value's string form (§4.2 step 3). A nil cut is a no-op.
func CutReplace(values []model.Scalar, cut *regexp.Regexp, replace string) []model.Scalar {
	if cut == nil {
		return values
	}
	out := make([]model.Scalar, len(values))
	for i, v := range values {
		out[i] = model.Str(cut.ReplaceAllString(v.Text(), replace))
	}
	return out
}

// Affix concatenates prepend/append around each value's string form
// (§4.2 step 4).
func Affix(values []model.Scalar, prepend, appnd string) []model.Scalar {
	if prepend == "" && appnd == "" {
		return values
	}
	out := make([]model.Scalar, len(values))
	for i, v := range values {
		out[i] = model.Str(prepend + v.Text() + appnd)
	}
	return out
}

// MapSingle looks up one value in a Mapping, honoring $regex/$casesens, and
// reports whether it was a hit. For $regex mappings, case folding is carried
// by the compiled patterns themselves (the loader prefixes "(?i)" when
// $casesens is false). It does not apply $default or $inherit --
// callers (ApplyMapping for the main pipeline, the joined_map predicate
// lookup in the node evaluator) decide what a miss means in their context.
func MapSingle(value model.Scalar, m *ir.Mapping) (model.Scalar, bool) {
	text := value.Text()
	if m.Regex {
		for _, entry := range m.Regexes {
			if entry.Pattern.MatchString(text) {
				return model.Str(entry.Value), true
			}
		}
		return value, false
	}
	key := text
	table := m.Exact
	if !m.CaseSens {
		key = strings.ToLower(text)
		table = m.ExactCI
	}
	if v, ok := table[key]; ok {
		return model.Str(v), true
	}
	return value, false
}

// ApplyMapping applies a node's `mapping` + `mapping_settings` to a value
// sequence (§4.2 mapping semantics, §8 property 5 "mapping default law").
//
// $default fires only once, and only when NO value in the sequence matched
// any key -- a miss that has a sibling hit in the same evaluation is simply
// dropped, never replaced by $default.
func ApplyMapping(values []model.Scalar, m *ir.Mapping) []model.Scalar {
	if m == nil {
		return values
	}
	out := make([]model.Scalar, 0, len(values))
	for _, v := range values {
		mapped, hit := MapSingle(v, m)
		if hit {
			out = append(out, mapped)
		} else if m.Inherit {
			out = append(out, v)
		}
	}
	if len(out) == 0 && m.Default != nil {
		out = append(out, model.Str(*m.Default))
	}
	return out
}

// CartesianProduct computes the cross-product of slots in field-major order
// (slots[0] varies slowest), per DESIGN.md's resolution of the insert_into
// Open Question. If any slot is empty the product is empty,
// which is how "a required slot is empty" drops the whole insert_into
// result (§4.2 step 5).
func CartesianProduct(slots [][]string) [][]string {
	if len(slots) == 0 {
		return nil
	}
	for _, s := range slots {
		if len(s) == 0 {
			return nil
		}
	}
	combos := [][]string{{}}
	for _, slot := range slots {
		next := make([][]string, 0, len(combos)*len(slot))
		for _, combo := range combos {
			for _, val := range slot {
				entry := make([]string, len(combo)+1)
				copy(entry, combo)
				entry[len(combo)] = val
				next = append(next, entry)
			}
		}
		combos = next
	}
	return combos
}

var placeholder = regexp.MustCompile(`\{\}`)

// CountPlaceholders reports how many `{}` placeholders appear in template.
func CountPlaceholders(template string) int {
	return len(placeholder.FindAllStringIndex(template, -1))
}

// RenderTemplate substitutes combo positionally into template's `{}`
// placeholders. ok is false only if the placeholder count does not match
// len(combo); the loader validates this statically whenever possible so
// this is a defensive fallback (§3 invariant on insert_into arity).
func RenderTemplate(template string, combo []string) (string, bool) {
	locs := placeholder.FindAllStringIndex(template, -1)
	if len(locs) != len(combo) {
		return "", false
	}
	var b strings.Builder
	last := 0
	for i, loc := range locs {
		b.WriteString(template[last:loc[0]])
		b.WriteString(combo[i])
		last = loc[1]
	}
	b.WriteString(template[last:])
	return b.String(), true
}
