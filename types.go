package spcht

import "github.com/ubleipzig/spcht/internal/model"

// The types below are plain aliases onto internal/model: every sub-package
// (internal/ir, access, transform, rules, codec, loader, internal/engine)
// depends on internal/model directly rather than on this root package, so
// that this package -- which imports internal/ir, internal/engine, and
// loader to assemble the public Engine -- never ends up in an import cycle
// with any of them. See internal/model's package doc.

// SourceKind selects which view of a Record a node reads from.
type SourceKind = model.SourceKind

const (
	SourceFlat = model.SourceFlat
	SourceMarc = model.SourceMarc
	SourceTree = model.SourceTree // supplemented: '>'-delimited nested map path, see SPEC_FULL.md §3
)

// ParseSourceKind parses the descriptor document's "source" string.
func ParseSourceKind(s string) (SourceKind, bool) { return model.ParseSourceKind(s) }

// Required expresses whether a node must yield a value.
type Required = model.Required

const (
	Optional  = model.Optional
	Mandatory = model.Mandatory
)

func ParseRequired(s string) (Required, bool) { return model.ParseRequired(s) }

// ObjectKind selects whether a node's emitted objects are literals or IRIs.
type ObjectKind = model.ObjectKind

const (
	ObjectLiteral = model.ObjectLiteral
	ObjectURI     = model.ObjectURI
)

func ParseObjectKind(s string) (ObjectKind, bool) { return model.ParseObjectKind(s) }

// ScalarKind tags the dynamic type carried by a Scalar: the record input
// boundary is schemaless, so values are normalized to a sum of
// {integer, float, string} rather than left as bare `any` (see SPEC_FULL.md
// §9 Design Notes, "Dynamic typing at boundary").
type ScalarKind = model.ScalarKind

const (
	KindString = model.KindString
	KindInt    = model.KindInt
	KindFloat  = model.KindFloat
)

// Scalar is one record value: a string, an integer, or a float.
type Scalar = model.Scalar

// Str builds a string-kind Scalar.
func Str(s string) Scalar { return model.Str(s) }

// Int builds an integer-kind Scalar.
func Int(i int64) Scalar { return model.Int(i) }

// Float builds a float-kind Scalar.
func Float(f float64) Scalar { return model.Float(f) }
