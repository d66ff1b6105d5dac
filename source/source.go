// Package source decodes descriptor documents and mapping-reference files
// (§6) into plain Go values (map[string]any / []any / scalars), the shape
// package loader compiles from. This is the teacher's pluggable-driver idea
// (originally a streaming-token JSON/YAML abstraction) reduced to its
// essentials for finite, in-memory documents: pick a Format, Decode once.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format selects a decoder.
type Format int

const (
	// JSON uses the standard library decoder.
	JSON Format = iota
	// JSONFast uses goccy/go-json, a drop-in faster decoder (§4.8 domain
	// stack), for descriptor documents large enough that decode time
	// matters at load.
	JSONFast
	// YAML uses gopkg.in/yaml.v3, since SDFs and mapping-reference files
	// are frequently authored by librarians directly as YAML (§4.8).
	YAML
)

// DetectFormat picks a Format from a file extension (".yaml"/".yml" -> YAML,
// anything else -> JSON). Callers that already know the format should call
// Decode directly instead.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Decode parses data with the given Format into a Go value tree. Numbers
// decode as json.Number (JSON/JSONFast) or int/float64 (YAML, per yaml.v3's
// native behavior; int64/uint64 for integers outside the int range) so that
// package codec can normalize either
// shape the same way.
func Decode(data []byte, format Format) (any, error) {
	switch format {
	case JSONFast:
		dec := gojson.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("source: decode json (fast): %w", err)
		}
		return v, nil
	case YAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("source: decode yaml: %w", err)
		}
		return normalizeYAML(v), nil
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("source: decode json: %w", err)
		}
		return v, nil
	}
}

// normalizeYAML rewrites yaml.v3's map[string]interface{} (already correct
// for the v3 decoder, unlike v2's map[interface{}]interface{}) recursively
// so nested documents compare uniformly regardless of decoder.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

// DecodeFlatMapping parses a mapping-reference file (§6 "a document
// containing a single flat mapping from string keys to string values").
func DecodeFlatMapping(data []byte, format Format) (map[string]string, error) {
	v, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("source: mapping reference file is not a flat object")
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		switch t := val.(type) {
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out, nil
}
