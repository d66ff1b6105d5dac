package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	spcht "github.com/ubleipzig/spcht"
	"github.com/ubleipzig/spcht/loader"
)

func minimalDescriptor() map[string]any {
	return map[string]any{
		"id_source": "flat",
		"id_field":  "id",
		"nodes": []any{
			map[string]any{
				"source":    "flat",
				"field":     "title",
				"predicate": "http://purl.org/dc/elements/1.1/title",
				"required":  "optional",
				"type":      "literal",
			},
		},
	}
}

func TestLoad_MinimalDescriptorCompiles(t *testing.T) {
	d, issues := loader.Load(minimalDescriptor(), t.TempDir())
	if issues != nil {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if d.Head.Field != "id" || len(d.Nodes) != 1 {
		t.Fatalf("got %+v", d)
	}
	if d.MarcKey != "fullrecord" {
		t.Fatalf("expected default marc key, got %q", d.MarcKey)
	}
}

func TestLoad_MissingIdSourceIsAnIssue(t *testing.T) {
	doc := minimalDescriptor()
	delete(doc, "id_source")
	_, issues := loader.Load(doc, t.TempDir())
	if len(issues) == 0 {
		t.Fatalf("expected issues for missing id_source")
	}
	found := false
	for _, iss := range issues {
		if iss.Code == spcht.CodeMissingHead {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CodeMissingHead issue, got %v", issues)
	}
}

func TestLoad_UnknownNodeKeyRejected(t *testing.T) {
	doc := minimalDescriptor()
	nodes := doc["nodes"].([]any)
	node := nodes[0].(map[string]any)
	node["totally_unknown_key"] = "x"
	_, issues := loader.Load(doc, t.TempDir())
	found := false
	for _, iss := range issues {
		if iss.Code == spcht.CodeUnknownKey {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CodeUnknownKey issue, got %v", issues)
	}
}

func TestLoad_CommentPrefixedKeysAllowed(t *testing.T) {
	doc := minimalDescriptor()
	nodes := doc["nodes"].([]any)
	node := nodes[0].(map[string]any)
	node["comment_why"] = "documenting something"
	_, issues := loader.Load(doc, t.TempDir())
	if issues != nil {
		t.Fatalf("comment-prefixed keys should not be flagged, got %v", issues)
	}
}

func TestLoad_InsertIntoArityMismatch(t *testing.T) {
	doc := minimalDescriptor()
	nodes := doc["nodes"].([]any)
	node := nodes[0].(map[string]any)
	node["insert_into"] = "/org/{}/dep/{}"
	_, issues := loader.Load(doc, t.TempDir())
	found := false
	for _, iss := range issues {
		if iss.Code == spcht.CodeBadInsertArity {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CodeBadInsertArity, got %v", issues)
	}
}

func TestLoad_InsertIntoArityMatches(t *testing.T) {
	doc := minimalDescriptor()
	nodes := doc["nodes"].([]any)
	node := nodes[0].(map[string]any)
	node["insert_into"] = "/org/{}/dep/{}"
	node["insert_add_fields"] = []any{
		map[string]any{"field": "department"},
	}
	_, issues := loader.Load(doc, t.TempDir())
	if issues != nil {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestLoad_BadRegexReported(t *testing.T) {
	doc := minimalDescriptor()
	nodes := doc["nodes"].([]any)
	node := nodes[0].(map[string]any)
	node["match"] = "(unclosed"
	_, issues := loader.Load(doc, t.TempDir())
	found := false
	for _, iss := range issues {
		if iss.Code == spcht.CodeBadRegex {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CodeBadRegex, got %v", issues)
	}
}

func TestLoad_MappingRefResolvesRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "role_map.json")
	if err := os.WriteFile(refPath, []byte(`{"aut": "U:aut", "edt": "U:edt"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := minimalDescriptor()
	nodes := doc["nodes"].([]any)
	node := nodes[0].(map[string]any)
	node["mapping_settings"] = map[string]any{"$ref": "role_map.json", "$default": "U:unknown"}

	d, issues := loader.Load(doc, dir)
	if issues != nil {
		t.Fatalf("unexpected issues: %v", issues)
	}
	m := d.Nodes[0].Mapping
	if m == nil || m.Exact["aut"] != "U:aut" || m.Exact["edt"] != "U:edt" {
		t.Fatalf("expected mapping ref entries to be loaded, got %+v", m)
	}
	if m.Default == nil || *m.Default != "U:unknown" {
		t.Fatalf("expected default to survive alongside $ref, got %+v", m)
	}
}

func TestLoad_UnresolvableRefIsAnIssue(t *testing.T) {
	doc := minimalDescriptor()
	nodes := doc["nodes"].([]any)
	node := nodes[0].(map[string]any)
	node["mapping_settings"] = map[string]any{"$ref": "does_not_exist.json"}
	_, issues := loader.Load(doc, t.TempDir())
	found := false
	for _, iss := range issues {
		if iss.Code == spcht.CodeUnresolvedRef {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CodeUnresolvedRef, got %v", issues)
	}
}
