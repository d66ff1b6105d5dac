package rules_test

import (
	"testing"

	spcht "github.com/ubleipzig/spcht"
	"github.com/ubleipzig/spcht/internal/ir"
	"github.com/ubleipzig/spcht/rules"
)

func TestEval_NoGuardAlwaysTrue(t *testing.T) {
	rec := spcht.NewRecord(map[string]any{})
	if !rules.Eval(rec, &ir.Node{}) {
		t.Fatalf("expected true with no if_field")
	}
}

func TestEval_Exists(t *testing.T) {
	present := spcht.NewRecord(map[string]any{"isbn": "123"})
	absent := spcht.NewRecord(map[string]any{})
	node := &ir.Node{IfField: "isbn", IfCondition: rules.OpExists}
	if !rules.Eval(present, node) {
		t.Fatalf("expected true when field present")
	}
	if rules.Eval(absent, node) {
		t.Fatalf("expected false when field absent")
	}
}

func TestEval_AbsenceAsInfiniteNegativity(t *testing.T) {
	rec := spcht.NewRecord(map[string]any{})
	cases := []struct {
		op   string
		want bool
	}{
		{rules.OpEq, false},
		{rules.OpGt, false},
		{rules.OpGe, false},
		{rules.OpNe, true},
		{rules.OpLt, true},
		{rules.OpLe, true},
	}
	for _, c := range cases {
		node := &ir.Node{IfField: "year", IfCondition: c.op, IfValues: []string{"2000"}}
		if got := rules.Eval(rec, node); got != c.want {
			t.Errorf("op %s: got %v, want %v", c.op, got, c.want)
		}
	}
}

func TestEval_ScalarEquality(t *testing.T) {
	rec := spcht.NewRecord(map[string]any{"mediatype": "book"})
	node := &ir.Node{Source: spcht.SourceFlat, IfField: "mediatype", IfCondition: rules.OpEq, IfValues: []string{"book"}}
	if !rules.Eval(rec, node) {
		t.Fatalf("expected equality match")
	}
}

func TestEval_NumericNarrowing(t *testing.T) {
	rec := spcht.NewRecord(map[string]any{"year": "1999"})
	node := &ir.Node{Source: spcht.SourceFlat, IfField: "year", IfCondition: rules.OpGe, IfValues: []string{"1990"}}
	if !rules.Eval(rec, node) {
		t.Fatalf("expected numeric narrowing to treat \"1999\" >= \"1990\" as true")
	}
}

func TestEval_ListAnyMatch(t *testing.T) {
	rec := spcht.NewRecord(map[string]any{"subject": []any{"fiction", "drama"}})
	node := &ir.Node{
		Source: spcht.SourceFlat, IfField: "subject", IfCondition: rules.OpEq,
		IfValueList: true, IfValues: []string{"drama", "poetry"},
	}
	if !rules.Eval(rec, node) {
		t.Fatalf("expected any-pair match across lists")
	}
}

func TestEval_ListNoneMatchWithNotEqual(t *testing.T) {
	rec := spcht.NewRecord(map[string]any{"subject": []any{"fiction"}})
	node := &ir.Node{
		Source: spcht.SourceFlat, IfField: "subject", IfCondition: rules.OpNe,
		IfValueList: true, IfValues: []string{"drama"},
	}
	if !rules.Eval(rec, node) {
		t.Fatalf("expected != list guard to pass when no pair equal")
	}
}
