package spcht

import "github.com/ubleipzig/spcht/internal/model"

// Record is the input to one evaluation. It presents two logical views
// (§3): a flat key->value (or key->list) mapping, and an optional MARC21
// view keyed by a distinguished field (default "fullrecord", set by the
// descriptor's `marc_key` root key). See internal/model for the underlying
// definition; this is a plain alias (methods, including WithMarc, carry
// over unchanged).
type Record = model.Record

// NewRecord wraps a flat map as a Record with no MARC view.
func NewRecord(flat map[string]any) Record { return model.NewRecord(flat) }
