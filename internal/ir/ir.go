// Package ir defines the compiled, immutable node tree produced by the
// loader (package loader) and walked by the evaluator (package engine).
// Regexes are precompiled, $ref/joined_map_ref mapping files are already
// inlined, and every slot has been validated, so nothing under this
// package ever fails at evaluation time for structural reasons (§3
// Lifecycle: "the compiled form is immutable").
package ir

import (
	"regexp"

	"github.com/ubleipzig/spcht/internal/model"
)

// FieldRef is a reduced node used inside InsertAddFields (§3 "Field ref").
type FieldRef struct {
	Source  model.SourceKind
	Field   string
	Match   *regexp.Regexp
	Cut     *regexp.Regexp
	Replace string
	Prepend string
	Append  string
}

// RegexMapEntry is one compiled key of a $regex mapping. The loader stores
// entries sorted alphabetically by key, so "first match wins" (§4.2) is
// reproducible; the document order of the keys is not preserved.
type RegexMapEntry struct {
	Pattern *regexp.Regexp
	Value   string
}

// Mapping is the compiled form of a node's `mapping` + `mapping_settings`.
type Mapping struct {
	Exact    map[string]string // used when Regex == false
	ExactCI  map[string]string // lowercased keys, used when CaseSens == false
	Regexes  []RegexMapEntry   // used when Regex == true, sorted by key
	Default  *string
	Inherit  bool
	CaseSens bool
	Regex    bool
}

// Node is the compiled form of one SDF node (§3).
type Node struct {
	Name      string // diagnostic only, no semantic effect
	Source    model.SourceKind
	Field     string
	Predicate string
	Required  model.Required
	Type      model.ObjectKind
	Tag       string

	Alternatives []string
	Fallback     *Node

	Match   *regexp.Regexp
	Cut     *regexp.Regexp
	Replace string
	Prepend string
	Append  string

	InsertInto      string
	InsertAddFields []FieldRef

	StaticField *string

	Mapping *Mapping

	JoinedField string
	JoinedMap   *Mapping

	IfField     string
	IfCondition string // "==", "!=", "<", "<=", ">", ">=", "exi"
	IfValues    []string
	IfValueList bool
	IfMatch     *regexp.Regexp
	IfCut       *regexp.Regexp
	IfReplace   string
	IfPrepend   string
	IfAppend    string

	AppendUUIDPredicateFields []string
	AppendUUIDObjectFields    []string

	SubNodes []*Node

	// SaveAs names a side-channel key this node's postprocessed values are
	// also appended to (supplemented, SPEC_FULL.md §3).
	SaveAs string

	// SubData is a supplemented feature (SPEC_FULL.md §3): a field path to a
	// list of nested flat records, each run through SubDataNodes with the
	// *same* subject as the parent node.
	SubData      string
	SubDataNodes []*Node
}

// HeadNode describes the descriptor's id_* root keys (§3 "head node", §6
// "per-head variants of all node slots"), compiled into the same shape as
// a body Node's extraction+transform slots so the evaluator can reuse the
// same pipeline code, minus anything -- predicate, type, mapping, joins,
// recursion -- that only makes sense once a predicate/object pair exists.
type HeadNode struct {
	Source       model.SourceKind
	Field        string
	Alternatives []string
	Fallback     *Node

	Match   *regexp.Regexp
	Cut     *regexp.Regexp
	Replace string
	Prepend string
	Append  string
}

// Descriptor is the fully compiled, immutable SDF (§3).
type Descriptor struct {
	Head  HeadNode
	Nodes []*Node
	// MarcKey is the flat-view key that, when present, is interpreted as
	// the MARC21 view (default "fullrecord", §3).
	MarcKey string
}
