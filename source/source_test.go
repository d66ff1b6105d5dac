package source_test

import (
	"encoding/json"
	"testing"

	"github.com/ubleipzig/spcht/source"
)

func TestDetectFormat(t *testing.T) {
	if source.DetectFormat("descriptor.yaml") != source.YAML {
		t.Fatalf("expected YAML for .yaml")
	}
	if source.DetectFormat("descriptor.yml") != source.YAML {
		t.Fatalf("expected YAML for .yml")
	}
	if source.DetectFormat("descriptor.json") != source.JSON {
		t.Fatalf("expected JSON for .json")
	}
}

func TestDecode_JSON(t *testing.T) {
	v, err := source.Decode([]byte(`{"id_source":"flat","count":3}`), source.JSON)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["id_source"] != "flat" {
		t.Fatalf("got %v", v)
	}
	if _, ok := m["count"].(json.Number); !ok {
		t.Fatalf("expected numbers to decode as json.Number, got %T", m["count"])
	}
}

func TestDecode_JSONFast(t *testing.T) {
	v, err := source.Decode([]byte(`{"nested":{"a":1}}`), source.JSONFast)
	if err != nil {
		t.Fatal(err)
	}
	m := v.(map[string]any)
	nested := m["nested"].(map[string]any)
	if _, ok := nested["a"].(json.Number); !ok {
		t.Fatalf("expected fast decoder to also use json.Number, got %T", nested["a"])
	}
}

func TestDecode_YAML(t *testing.T) {
	yamlDoc := "id_source: flat\nnodes:\n  - field: title\n    predicate: P:title\n"
	v, err := source.Decode([]byte(yamlDoc), source.YAML)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["id_source"] != "flat" {
		t.Fatalf("got %v", v)
	}
	nodes, ok := m["nodes"].([]any)
	if !ok || len(nodes) != 1 {
		t.Fatalf("got %v", m["nodes"])
	}
	node := nodes[0].(map[string]any)
	if node["field"] != "title" {
		t.Fatalf("got %v", node)
	}
}

func TestDecodeFlatMapping(t *testing.T) {
	m, err := source.DecodeFlatMapping([]byte(`{"aut":"U:aut","edt":"U:edt"}`), source.JSON)
	if err != nil {
		t.Fatal(err)
	}
	if m["aut"] != "U:aut" || m["edt"] != "U:edt" {
		t.Fatalf("got %v", m)
	}
}

func TestDecodeFlatMapping_RejectsNonObject(t *testing.T) {
	_, err := source.DecodeFlatMapping([]byte(`["not","an","object"]`), source.JSON)
	if err == nil {
		t.Fatalf("expected an error for a non-object mapping file")
	}
}
