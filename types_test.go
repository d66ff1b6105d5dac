package spcht_test

import (
	"testing"

	spcht "github.com/ubleipzig/spcht"
)

func TestScalar_TextRendering(t *testing.T) {
	if got := spcht.Str("hi").Text(); got != "hi" {
		t.Fatalf("got %q", got)
	}
	if got := spcht.Int(42).Text(); got != "42" {
		t.Fatalf("got %q", got)
	}
	if got := spcht.Float(3.5).Text(); got != "3.5" {
		t.Fatalf("got %q", got)
	}
}

func TestScalar_AsIntAsFloat(t *testing.T) {
	i := spcht.Int(7)
	if v, ok := i.AsInt(); !ok || v != 7 {
		t.Fatalf("got %v, %v", v, ok)
	}
	if v, ok := i.AsFloat(); !ok || v != 7.0 {
		t.Fatalf("int should widen to float: got %v, %v", v, ok)
	}
	s := spcht.Str("text")
	if _, ok := s.AsInt(); ok {
		t.Fatalf("expected string scalar to not report AsInt ok")
	}
}

func TestParseSourceKind(t *testing.T) {
	cases := map[string]spcht.SourceKind{"flat": spcht.SourceFlat, "dict": spcht.SourceFlat, "marc": spcht.SourceMarc, "tree": spcht.SourceTree}
	for s, want := range cases {
		got, ok := spcht.ParseSourceKind(s)
		if !ok || got != want {
			t.Errorf("ParseSourceKind(%q) = %v, %v; want %v", s, got, ok, want)
		}
	}
	if _, ok := spcht.ParseSourceKind("nonsense"); ok {
		t.Fatalf("expected unrecognized source kind to fail")
	}
}

func TestParseRequired(t *testing.T) {
	if v, ok := spcht.ParseRequired(""); !ok || v != spcht.Optional {
		t.Fatalf("empty string should default to optional")
	}
	if v, ok := spcht.ParseRequired("mandatory"); !ok || v != spcht.Mandatory {
		t.Fatalf("expected mandatory")
	}
}

func TestRecord_WithMarcDoesNotMutateFlat(t *testing.T) {
	flat := map[string]any{"title": "x"}
	rec := spcht.NewRecord(flat)
	withMarc := rec.WithMarc(map[string]any{"100": map[string]any{"a": "y"}})
	if rec.Marc != nil {
		t.Fatalf("original record should be unaffected (value receiver)")
	}
	if withMarc.Flat["title"] != "x" {
		t.Fatalf("flat view should be preserved")
	}
}
