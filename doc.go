// Package spcht implements the Spcht Descriptor Engine: a declarative,
// schema-driven transformation engine that maps flat record-oriented input
// data (key->value or key->list-of-values, plus an optional MARC21-style
// nested shape) into RDF triples.
//
// An operator authors a descriptor document (the SDF, see package loader)
// that enumerates nodes. Each node describes how to derive one or more
// (subject, predicate, object) triples from one input record. Loading a
// descriptor (loader.Load) produces an immutable, compiled tree
// (internal/ir) that Engine.Evaluate runs against records with no further
// file I/O and no shared mutable state.
package spcht
