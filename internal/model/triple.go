package model

// Object is a triple's object: either an IRI (Kind == ObjectURI) or a
// literal, optionally tagged with a datatype/language tag (§3).
type Object struct {
	Kind  ObjectKind
	Value string
	Tag   string // datatype/language tag; only meaningful for literals
}

// Triple is one (subject, predicate, object) statement (§3).
type Triple struct {
	Subject   string
	Predicate string
	Object    Object
}
