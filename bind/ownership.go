package bind

// DefaultOwnership is the documented default ownership mode for a value
// form when the class tag does not choose one: pointer and reference
// forms borrow, by-value forms copy. It is a pure function so the
// defaulting rule can be tested independently of the builder.
func DefaultOwnership(form ValueForm) Ownership {
	switch form {
	case FormPointer, FormReference:
		return Borrowed
	default:
		return ValueCopy
	}
}

// ResolveOwnership applies the builder's documented defaulting rule to
// a class whose tag omitted the mode: classes with pointer-receiver
// methods are in a pointer context and default to Borrowed; everything
// else takes the configured fallback (ValueCopy unless the target
// manifest overrides it).
func ResolveOwnership(c *Class, fallback Ownership) Ownership {
	if c.Ownership != OwnershipUnresolved {
		return c.Ownership
	}
	if c.ptrReceiver {
		return DefaultOwnership(FormPointer)
	}
	if fallback == OwnershipUnresolved {
		return DefaultOwnership(FormValue)
	}
	return fallback
}
