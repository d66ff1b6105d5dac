package spcht

import "github.com/ubleipzig/spcht/internal/model"

// Issue codes. Load-time codes surface from Load as Issues (§7 LoadError).
// Per-record codes surface from Engine.Evaluate either as the discard reason
// (CodeMandatoryMissing) or as non-fatal EvaluationWarning entries.
const (
	// Load-time (§4.5)
	CodeMissingHead        = model.CodeMissingHead
	CodeMissingNodeField   = model.CodeMissingNodeField
	CodeBadRequired        = model.CodeBadRequired
	CodeBadType            = model.CodeBadType
	CodeBadSource          = model.CodeBadSource
	CodeBadRegex           = model.CodeBadRegex
	CodeBadMappingSettings = model.CodeBadMappingSettings
	CodeUnresolvedRef      = model.CodeUnresolvedRef
	CodeBadInsertArity     = model.CodeBadInsertArity
	CodeBadCondition       = model.CodeBadCondition
	CodeUnknownKey         = model.CodeUnknownKey

	// Per-record (§7 RecordDiscarded / EvaluationWarning)
	CodeMandatoryMissing    = model.CodeMandatoryMissing
	CodeJoinLengthMismatch  = model.CodeJoinLengthMismatch
	CodeInsertArityMismatch = model.CodeInsertArityMismatch
	CodeSubNodeFanout       = model.CodeSubNodeFanout

	// Reported for a panic recovered at the Evaluate boundary rather than
	// propagated (§7 InternalInvariantViolation) and for a head node yielding
	// more than one value; also used on warnings for an exceeded recursion
	// depth and for a UUID field that yields no value.
	CodeInternal = model.CodeInternal
)

// Issue is a single load-time or per-record diagnostic.
type Issue = model.Issue

// Issues is a collection of Issue that implements error.
type Issues = model.Issues

// AppendIssues appends more onto dst, allocating dst only when needed.
func AppendIssues(dst Issues, more ...Issue) Issues { return model.AppendIssues(dst, more...) }

// AsIssues extracts Issues from an error using errors.As.
func AsIssues(err error) (Issues, bool) { return model.AsIssues(err) }
