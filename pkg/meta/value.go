// Package meta models the binary property-tree documents that describe game
// data: named objects holding typed, arbitrarily nested property values, plus
// the codec that maps them to and from their on-disk byte form.
package meta

// PropertyValue is the closed set of value variants a property can hold.
// Every variant is a pointer type so tree rewrites mutate in place.
type PropertyValue interface {
	isPropertyValue()
}

// String is a string leaf. Asset references live in these.
type String struct {
	Value string
}

// U32 is an unsigned integer leaf.
type U32 struct {
	Value uint32
}

// F32 is a float leaf.
type F32 struct {
	Value float32
}

// Bool is a boolean leaf.
type Bool struct {
	Value bool
}

// Container is an ordered sequence of values.
type Container struct {
	Items []PropertyValue
}

// UnorderedContainer is a sequence whose order carries no meaning; the codec
// still preserves it so round-trips are byte-stable.
type UnorderedContainer struct {
	Items []PropertyValue
}

// Struct is a named group of properties.
type Struct struct {
	Name       string
	Properties []Property
}

// Embedded is a struct stored inline in its parent rather than by reference.
type Embedded struct {
	Name       string
	Properties []Property
}

// Optional wraps a value that may be absent. Value is nil when absent.
type Optional struct {
	Value PropertyValue
}

// MapEntry is one key/value pair of a Map. Keys are immutable once parsed;
// rewrites only ever touch the value side.
type MapEntry struct {
	Key   PropertyValue
	Value PropertyValue
}

// Map is a keyed collection of values.
type Map struct {
	Entries []MapEntry
}

func (*String) isPropertyValue()             {}
func (*U32) isPropertyValue()                {}
func (*F32) isPropertyValue()                {}
func (*Bool) isPropertyValue()               {}
func (*Container) isPropertyValue()          {}
func (*UnorderedContainer) isPropertyValue() {}
func (*Struct) isPropertyValue()             {}
func (*Embedded) isPropertyValue()           {}
func (*Optional) isPropertyValue()           {}
func (*Map) isPropertyValue()                {}

// Property is a named value inside an object or struct. Names are unique
// within their parent.
type Property struct {
	Name  string
	Value PropertyValue
}

// Object is a named entity inside a document.
type Object struct {
	Name       string
	Properties []Property
}

// Document is one parsed property-tree file.
//
// Dependencies lists the relative paths of other documents this one links.
// The list is parse-time metadata and is never modified by rewrites.
type Document struct {
	Path         string
	Dependencies []string
	Objects      []Object
}
