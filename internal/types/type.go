package types

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Type is a primitive flag set plus zero or more object shapes (spec §3.3).
// The forge guarantees structural identity: two types built from equivalent
// descriptors compare equal by pointer, so callers may use `==` on *Type.
type Type struct {
	Flags  Flags
	Shapes []*Shape
	key    string // canonical descriptor, set once at construction
}

// String renders a human-readable type description (orig:ovum/print.h
// Print::describe, supplemented per SPEC_FULL §3).
func (t *Type) String() string {
	if len(t.Shapes) == 0 {
		return t.Flags.String()
	}
	var sb strings.Builder
	sb.WriteString(t.Flags.String())
	for range t.Shapes {
		sb.WriteString("|object{...}")
	}
	return sb.String()
}

// Assignability classifies whether a value may be assigned to a type (spec
// §3.3).
type Assignability int

const (
	Never Assignability = iota
	Sometimes
	Always
)

func (a Assignability) String() string {
	switch a {
	case Never:
		return "Never"
	case Sometimes:
		return "Sometimes"
	case Always:
		return "Always"
	default:
		return "?"
	}
}

// Mutatability classifies whether a mutation operator may apply (spec §3.3).
type Mutatability int

const (
	MutAlways Mutatability = iota
	MutSometimes
	MutUnnecessary
	MutNeverLeft
	MutNeverRight
)

func (m Mutatability) String() string {
	switch m {
	case MutAlways:
		return "Always"
	case MutSometimes:
		return "Sometimes"
	case MutUnnecessary:
		return "Unnecessary"
	case MutNeverLeft:
		return "NeverLeft"
	case MutNeverRight:
		return "NeverRight"
	default:
		return "?"
	}
}

// Forge is the sole constructor of Type instances (glossary "Forge"). It is
// a hash-cons cache: every operation builds a canonical descriptor and looks
// it up before allocating, giving pointer-equality for structurally
// equivalent types (spec §3.3, §9 "Type forge as a hash-cons cache").
type Forge struct {
	mu         sync.Mutex
	cache      map[string]*Type
	metashapes map[string]*Shape
}

// NewForge creates an empty forge pre-populated with nothing; primitives are
// interned lazily on first use.
func NewForge() *Forge {
	return &Forge{cache: make(map[string]*Type)}
}

func shapeKey(s *Shape) string {
	var sb strings.Builder
	if s.Callable != nil {
		sb.WriteString("C(")
		sb.WriteString(s.Callable.ReturnType.key)
		for _, p := range s.Callable.Parameters {
			fmt.Fprintf(&sb, ",%s:%s:%d", p.Name, p.Type.key, p.Flags)
		}
		if s.Callable.YieldType != nil {
			sb.WriteString(";Y=" + s.Callable.YieldType.key)
		}
		sb.WriteString(")")
	}
	if s.Dotable != nil {
		sb.WriteString("D(")
		names := make([]Property, len(s.Dotable.Properties))
		copy(names, s.Dotable.Properties)
		sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })
		for _, p := range names {
			fmt.Fprintf(&sb, "%s:%s:%d,", p.Name, p.Type.key, p.Access)
		}
		fmt.Fprintf(&sb, "u=%d)", s.Dotable.Unknown)
	}
	if s.Indexable != nil {
		idx := "any"
		if s.Indexable.IndexType != nil {
			idx = s.Indexable.IndexType.key
		}
		fmt.Fprintf(&sb, "I(%s,%s,%d)", s.Indexable.ResultType.key, idx, s.Indexable.Access)
	}
	if s.Iterable != nil {
		fmt.Fprintf(&sb, "It(%s)", s.Iterable.ElementType.key)
	}
	if s.Pointable != nil {
		fmt.Fprintf(&sb, "P(%s,%d)", s.Pointable.PointeeType.key, s.Pointable.Modifiable)
	}
	return sb.String()
}

func (f *Forge) intern(flags Flags, shapes []*Shape) *Type {
	sortedShapeKeys := make([]string, len(shapes))
	for i, s := range shapes {
		sortedShapeKeys[i] = shapeKey(s)
	}
	sort.Strings(sortedShapeKeys)
	key := fmt.Sprintf("%d[%s]", flags, strings.Join(sortedShapeKeys, ";"))

	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.cache[key]; ok {
		return existing
	}
	dedupedShapes := make([]*Shape, len(shapes))
	copy(dedupedShapes, shapes)
	t := &Type{Flags: flags, Shapes: dedupedShapes, key: key}
	f.cache[key] = t
	return t
}

// ForgePrimitive returns the canonical type for a pure flag set with no
// shapes.
func (f *Forge) ForgePrimitive(flags Flags) *Type {
	return f.intern(flags, nil)
}

// ForgeNullable adds (want=true) or removes (want=false) the Null bit.
// Idempotent: ForgeNullable(ForgeNullable(a, true), false) == a (spec §8
// property 2).
func (f *Forge) ForgeNullable(t *Type, want bool) *Type {
	flags := t.Flags
	if want {
		flags = flags.Set(Null)
	} else {
		flags = flags.Clear(Null)
	}
	if flags == t.Flags {
		return t
	}
	return f.intern(flags, t.Shapes)
}

// ForgeVoidable adds/removes the Void bit.
func (f *Forge) ForgeVoidable(t *Type, want bool) *Type {
	flags := t.Flags
	if want {
		flags = flags.Set(Void)
	} else {
		flags = flags.Clear(Void)
	}
	if flags == t.Flags {
		return t
	}
	return f.intern(flags, t.Shapes)
}

// ForgeUnion returns the union of a and b: primitive flags OR'd together,
// shapes deduplicated. Commutative and idempotent (spec §8 property 3).
func (f *Forge) ForgeUnion(a, b *Type) *Type {
	if a == b {
		return a
	}
	flags := a.Flags | b.Flags
	shapeSet := map[string]*Shape{}
	for _, s := range a.Shapes {
		shapeSet[shapeKey(s)] = s
	}
	for _, s := range b.Shapes {
		shapeSet[shapeKey(s)] = s
	}
	keys := make([]string, 0, len(shapeSet))
	for k := range shapeSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	shapes := make([]*Shape, len(keys))
	for i, k := range keys {
		shapes[i] = shapeSet[k]
	}
	return f.intern(flags, shapes)
}

// ForgeFunctionType builds (and interns) a type whose sole shape is the
// given Callable.
func (f *Forge) ForgeFunctionType(c *Callable) *Type {
	return f.intern(Object, []*Shape{{Callable: c}})
}

// ForgeObjectType builds (and interns) a type from a Dotable.
func (f *Forge) ForgeObjectType(d *Dotable) *Type {
	return f.intern(Object, []*Shape{{Dotable: d}})
}

// ForgeIndexableType builds (and interns) a type from an Indexable.
func (f *Forge) ForgeIndexableType(i *Indexable) *Type {
	return f.intern(Object, []*Shape{{Indexable: i}})
}

// ForgeIterableType builds (and interns) a type from an Iterable.
func (f *Forge) ForgeIterableType(it *Iterable) *Type {
	return f.intern(Object, []*Shape{{Iterable: it}})
}

// ForgePointerType builds (and interns) a type from a Pointable.
func (f *Forge) ForgePointerType(p *Pointable) *Type {
	return f.intern(Object, []*Shape{{Pointable: p}})
}

// ForgeCompositeShape builds (and interns) a type from a single shape record
// carrying more than one facet at once (e.g. an array literal is both
// Iterable and Indexable over the same element type, spec §3.3: shapes are
// independent, co-occurring facets of one object).
func (f *Forge) ForgeCompositeShape(s *Shape) *Type {
	return f.intern(Object, []*Shape{s})
}

// ForgeIterationType derives the element type of an iterable type (spec
// §4.4). For a string type it returns the canonical one-codepoint string
// type; for an object type with exactly one shape exposing `iterable` it
// returns that shape's element type; otherwise it returns nil.
func (f *Forge) ForgeIterationType(t *Type) *Type {
	if t.Flags.HasAny(String) && len(t.Shapes) == 0 {
		return f.ForgePrimitive(String)
	}
	var found *Type
	count := 0
	for _, s := range t.Shapes {
		if s.Iterable != nil {
			found = s.Iterable.ElementType
			count++
		}
	}
	if count == 1 {
		return found
	}
	return nil
}
