package types

// Common returns the forge's canonical instances for the primitive types
// named throughout spec.md (e.g. `Type.Void`, `Type.Bool` in orig:ovum/type.h).
type Common struct {
	Void       *Type
	Null       *Type
	Bool       *Type
	Int        *Type
	Float      *Type
	String     *Type
	Arithmetic *Type
	Any        *Type
	AnyQ       *Type
	Object     *Type
}

// Common returns (and interns) the primitive singleton types.
func (f *Forge) Common() Common {
	return Common{
		Void:       f.ForgePrimitive(Void),
		Null:       f.ForgePrimitive(Null),
		Bool:       f.ForgePrimitive(Bool),
		Int:        f.ForgePrimitive(Int),
		Float:      f.ForgePrimitive(Float),
		String:     f.ForgePrimitive(String),
		Arithmetic: f.ForgePrimitive(Arithmetic),
		Any:        f.ForgePrimitive(Any),
		AnyQ:       f.ForgePrimitive(AnyQ),
		Object:     f.ForgePrimitive(Object),
	}
}
