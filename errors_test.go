package spcht_test

import (
	"errors"
	"fmt"
	"testing"

	spcht "github.com/ubleipzig/spcht"
)

func TestIssues_ErrorSummarizesFirstFew(t *testing.T) {
	iss := spcht.Issues{
		{Code: spcht.CodeMissingHead, Path: "root", Message: "no id_source"},
		{Code: spcht.CodeBadType, Path: "nodes[0]", Message: "bad type"},
		{Code: spcht.CodeBadSource, Path: "nodes[1]", Message: "bad source"},
		{Code: spcht.CodeUnknownKey, Path: "nodes[2]", Message: "unknown key"},
	}
	msg := iss.Error()
	if msg == "" {
		t.Fatalf("expected non-empty message")
	}
	// Total count should be mentioned since there are more than the cap shown.
	if !errorsContains(msg, "total 4") {
		t.Fatalf("expected message to mention total count, got %q", msg)
	}
}

func TestIssues_EmptyErrorIsEmptyString(t *testing.T) {
	var iss spcht.Issues
	if iss.Error() != "" {
		t.Fatalf("expected empty string for empty Issues")
	}
}

func TestAppendIssues_NilDstNoMoreStaysNil(t *testing.T) {
	var dst spcht.Issues
	got := spcht.AppendIssues(dst)
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestAppendIssues_Grows(t *testing.T) {
	var dst spcht.Issues
	dst = spcht.AppendIssues(dst, spcht.Issue{Code: spcht.CodeBadRegex, Message: "bad"})
	if len(dst) != 1 {
		t.Fatalf("expected length 1, got %d", len(dst))
	}
}

func TestAsIssues_ExtractsViaErrorsAs(t *testing.T) {
	var err error = spcht.Issues{{Code: spcht.CodeMandatoryMissing, Message: "missing"}}
	wrapped := fmt.Errorf("load failed: %w", err)
	iss, ok := spcht.AsIssues(wrapped)
	if !ok || len(iss) != 1 || iss[0].Code != spcht.CodeMandatoryMissing {
		t.Fatalf("got %v, %v", iss, ok)
	}
}

func TestAsIssues_NonIssuesErrorFails(t *testing.T) {
	_, ok := spcht.AsIssues(errors.New("plain error"))
	if ok {
		t.Fatalf("expected ok=false for a plain error")
	}
}

func errorsContains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}
