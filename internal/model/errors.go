package model

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes. Load-time codes surface from Load as Issues (§7 LoadError).
// Per-record codes surface from Engine.Evaluate either as the discard reason
// (CodeMandatoryMissing) or as non-fatal EvaluationWarning entries.
const (
	// Load-time (§4.5)
	CodeMissingHead        = "missing_head"
	CodeMissingNodeField   = "missing_node_field"
	CodeBadRequired        = "bad_required"
	CodeBadType            = "bad_type"
	CodeBadSource          = "bad_source"
	CodeBadRegex           = "bad_regex"
	CodeBadMappingSettings = "bad_mapping_settings"
	CodeUnresolvedRef      = "unresolved_ref"
	CodeBadInsertArity     = "bad_insert_arity"
	CodeBadCondition       = "bad_condition"
	CodeUnknownKey         = "unknown_key"

	// Per-record (§7 RecordDiscarded / EvaluationWarning)
	CodeMandatoryMissing    = "mandatory_missing"
	CodeJoinLengthMismatch  = "join_length_mismatch"
	CodeInsertArityMismatch = "insert_arity_mismatch"
	CodeSubNodeFanout       = "sub_node_fanout"

	// Reported for a panic recovered at the Evaluate boundary rather than
	// propagated (§7 InternalInvariantViolation) and for a head node yielding
	// more than one value; also used on warnings for an exceeded recursion
	// depth and for a UUID field that yields no value.
	CodeInternal = "internal"
)

// Issue is a single load-time or per-record diagnostic.
type Issue struct {
	Path    string // node name, or a dotted node path for nested fallback/sub_nodes
	Code    string // one of the Code* constants above
	Message string
	Hint    string
	Cause   error
	// Params carries structured parameters (e.g. {"field": "author2_role"})
	// for message formatting and observability.
	Params map[string]any
	// Rule names the node that produced this issue, when known.
	Rule string
}

// Issues is a collection of Issue that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s: %s", it.Code, it.Path, it.Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends more onto dst, allocating dst only when needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil && len(more) == 0 {
		return nil
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
