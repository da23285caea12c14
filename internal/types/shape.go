package types

// Accessability is a bit-set over property access rights (spec §3.3).
type Accessability uint8

const (
	Get Accessability = 1 << iota
	Set
	Mut
	Del
)

// DotablePolicy governs how unknown property names are treated.
type DotablePolicy int

const (
	Closed DotablePolicy = iota // unknown names are an error
	Open                        // unknown names are permitted (e.g. dynamic bags)
)

// Property describes one named member of a Dotable shape.
type Property struct {
	Name   string
	Type   *Type
	Access Accessability
}

// Dotable is the property-table facet of a Shape (glossary "Dotable").
type Dotable struct {
	Properties []Property
	Unknown    DotablePolicy
}

// Get looks up a property by name.
func (d *Dotable) Get(name string) (Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Indexable is the `a[b]` facet of a Shape.
type Indexable struct {
	ResultType *Type
	IndexType  *Type // nil means any/Int default
	Access     Accessability
}

// Iterable is the `for (x : a)` facet of a Shape.
type Iterable struct {
	ElementType *Type
}

// Modifiability is a bit-set over pointee modification rights (spec §3.3).
type Modifiability uint8

const (
	Read Modifiability = 1 << iota
	Write
	Mutate
	Delete
)

// Pointable is the `*expr`/`&lvalue` facet of a Shape.
type Pointable struct {
	PointeeType *Type
	Modifiable  Modifiability
}

// ParamFlags is a bit-set over function parameter modifiers (spec §3.3,
// §4.4).
type ParamFlags uint8

const (
	Required ParamFlags = 1 << iota
	Variadic
	Predicate
)

// Parameter describes one ordered function-signature parameter.
type Parameter struct {
	Name  string
	Type  *Type
	Flags ParamFlags
}

// Callable is the function-signature facet of a Shape.
type Callable struct {
	ReturnType *Type
	Parameters []Parameter
	YieldType  *Type // non-nil iff this is a generator signature
}

// Shape is a record of optional facets describing a family of object values
// (glossary "Shape"). A nil facet pointer means that facet is absent.
type Shape struct {
	Callable  *Callable
	Dotable   *Dotable
	Indexable *Indexable
	Iterable  *Iterable
	Pointable *Pointable
}
