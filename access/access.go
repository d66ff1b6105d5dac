// Package access implements the Value Accessor (§4.1): a uniform read of a
// field path against either the flat view or the MARC21 view of a Record.
package access

import (
	"strings"

	"github.com/ubleipzig/spcht/codec"
	"github.com/ubleipzig/spcht/internal/model"
)

// Read extracts the ordered sequence of scalars found at path within the
// given source view of rec. A missing field, an absent MARC view, or an
// unparsable MARC path all yield an empty (nil) sequence rather than an
// error -- the caller (the node evaluator) decides what an empty read means
// (try alternatives, fall back, discard, or simply skip).
func Read(rec model.Record, source model.SourceKind, path string) []model.Scalar {
	switch source {
	case model.SourceFlat:
		return readFlat(rec, path)
	case model.SourceMarc:
		return readMarc(rec, path)
	case model.SourceTree:
		return readTree(rec, path)
	default:
		return nil
	}
}

func readFlat(rec model.Record, path string) []model.Scalar {
	if rec.Flat == nil {
		return nil
	}
	v, ok := rec.Flat[path]
	if !ok {
		return nil
	}
	return codec.ToSequence(v)
}

// readTree navigates a '>'-delimited path into nested maps rooted at the
// flat view (supplemented source, SPEC_FULL.md §3).
func readTree(rec model.Record, path string) []model.Scalar {
	return codec.ToSequence(navigateTree(rec, path))
}

func navigateTree(rec model.Record, path string) any {
	if rec.Flat == nil {
		return nil
	}
	keys := strings.Split(path, ">")
	var cur any = rec.Flat
	for _, key := range keys {
		key = strings.TrimSpace(key)
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := m[key]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// SliceFieldTag splits a MARC field path "FFF:SS" into its 3-digit tag and
// subfield code ("a", "0", "i1", "i2", "none"). It returns ok=false if the
// path is not shaped like a MARC field reference.
func SliceFieldTag(path string) (tag, subfield string, ok bool) {
	idx := strings.IndexByte(path, ':')
	if idx < 0 {
		return "", "", false
	}
	tag = path[:idx]
	subfield = path[idx+1:]
	if len(tag) != 3 || subfield == "" {
		return "", "", false
	}
	for _, r := range tag {
		if r < '0' || r > '9' {
			return "", "", false
		}
	}
	return tag, subfield, true
}

func readMarc(rec model.Record, path string) []model.Scalar {
	if rec.Marc == nil {
		return nil
	}
	tag, subfield, ok := SliceFieldTag(path)
	if !ok {
		return nil
	}
	fieldVal, ok := rec.Marc[tag]
	if !ok {
		return nil
	}
	var repetitions []any
	switch t := fieldVal.(type) {
	case []any:
		repetitions = t
	case map[string]any:
		repetitions = []any{t}
	default:
		return nil
	}
	var out []model.Scalar
	for _, rep := range repetitions {
		sub, ok := rep.(map[string]any)
		if !ok {
			continue
		}
		v, ok := sub[subfield]
		if !ok {
			continue
		}
		out = append(out, codec.ToSequence(v)...)
	}
	return out
}

// ReadRecords extracts a list of nested flat records at path (supplemented
// `sub_data` feature, SPEC_FULL.md §3). A single nested map is treated as a
// one-element list; anything that isn't a map or a list of maps yields nil.
// MARC is not a supported source for sub_data since MARC subfield maps
// don't nest further flat records.
func ReadRecords(rec model.Record, source model.SourceKind, path string) []map[string]any {
	var raw any
	switch source {
	case model.SourceFlat:
		if rec.Flat == nil {
			return nil
		}
		v, ok := rec.Flat[path]
		if !ok {
			return nil
		}
		raw = v
	case model.SourceTree:
		raw = navigateTree(rec, path)
	default:
		return nil
	}
	switch t := raw.(type) {
	case []map[string]any:
		return t
	case map[string]any:
		return []map[string]any{t}
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
