package uuidgen_test

import (
	"testing"

	"github.com/ubleipzig/spcht/uuidgen"
)

func TestDerive_Deterministic(t *testing.T) {
	a := uuidgen.Derive("https://example.org/resource/1")
	b := uuidgen.Derive("https://example.org/resource/1")
	if a != b {
		t.Fatalf("expected deterministic derivation, got %q vs %q", a, b)
	}
}

func TestDerive_DifferentInputsDiffer(t *testing.T) {
	a := uuidgen.Derive("one")
	b := uuidgen.Derive("two")
	if a == b {
		t.Fatalf("expected distinct names to derive distinct uuids")
	}
}

func TestDerive_LooksLikeUUID(t *testing.T) {
	got := uuidgen.Derive("x")
	if len(got) != 36 {
		t.Fatalf("expected canonical 36-char uuid string, got %q (%d)", got, len(got))
	}
}
