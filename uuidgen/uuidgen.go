// Package uuidgen derives the deterministic UUID suffixes used by
// append_uuid_predicate_fields / append_uuid_object_fields (§4.4 steps
// 6-7, §8 property 8).
//
// The namespace is RFC 4122's reserved OID namespace rather than the URL
// namespace the original Python implementation uses -- SPEC_FULL.md is
// explicit about this ("RFC 4122 v5 UUID derivation (namespace OID)"), and
// the specification takes precedence over the original implementation
// wherever the two disagree.
package uuidgen

import "github.com/google/uuid"

// Derive returns the v5 UUID string for name, namespaced under the OID
// namespace.
func Derive(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
