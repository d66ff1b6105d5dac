// Package jsonschema provides a minimal JSON Schema representation and
// validator, used by the loader (package loader) to check a decoded
// descriptor document's shape before compiling it into the internal IR
// (§4.5: "structurally invalid input is rejected before any node is
// compiled").
package jsonschema

import "fmt"

// Schema is a minimal JSON Schema representation, enough to describe an SDF
// document's shape: an object with typed properties, some required, plus
// array item schemas for `nodes`.
type Schema struct {
	Type string `json:"type,omitempty"`

	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`

	Items *Schema `json:"items,omitempty"`
}

// Validate checks doc (already decoded into Go maps/slices/scalars by
// package source) against s, returning one message per violation found.
// It is intentionally shallow -- type and required-key checks only -- the
// loader's own compilation pass carries the rest of the structural
// validation (regex syntax, enum membership, insert_into arity) that a
// generic JSON Schema can't express as naturally as direct Go code.
func (s *Schema) Validate(path string, doc any) []string {
	if s == nil {
		return nil
	}
	var out []string
	switch s.Type {
	case "object":
		m, ok := doc.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected an object", path)}
		}
		for _, req := range s.Required {
			if _, ok := m[req]; !ok {
				out = append(out, fmt.Sprintf("%s: missing required key %q", path, req))
			}
		}
		for key, sub := range s.Properties {
			v, ok := m[key]
			if !ok {
				continue
			}
			out = append(out, sub.Validate(path+"."+key, v)...)
		}
	case "array":
		items, ok := doc.([]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected an array", path)}
		}
		if s.Items != nil {
			for i, item := range items {
				out = append(out, s.Items.Validate(fmt.Sprintf("%s[%d]", path, i), item)...)
			}
		}
	case "string":
		if _, ok := doc.(string); !ok {
			out = append(out, fmt.Sprintf("%s: expected a string", path))
		}
	}
	return out
}

// DescriptorShape is the top-level shape every SDF document must satisfy
// before any per-node compilation is attempted: an `id_source` string and a
// `nodes` array of objects carrying `source`, `field` and `predicate`.
// `id_field` is only type-checked here; the loader's compileHead rejects a
// descriptor without it.
var DescriptorShape = &Schema{
	Type:     "object",
	Required: []string{"id_source", "nodes"},
	Properties: map[string]*Schema{
		"id_source": {Type: "string"},
		"id_field":  {Type: "string"},
		"nodes": {
			Type:  "array",
			Items: &Schema{Type: "object", Required: []string{"source", "field", "predicate"}},
		},
	},
}
