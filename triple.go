package spcht

import "github.com/ubleipzig/spcht/internal/model"

// Object is a triple's object: either an IRI (Kind == ObjectURI) or a
// literal, optionally tagged with a datatype/language tag (§3).
type Object = model.Object

// Triple is one (subject, predicate, object) statement (§3).
type Triple = model.Triple
