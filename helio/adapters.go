package helio

// Primitive adapters. Each supported category gets a presence test,
// an extractor and a constructor; generated glue pairs them with the
// wrapped-object helpers to cover every type the binder classifies.
// Extractors require a prior successful presence test and panic on a
// mismatched handle.

// IsInt reports whether o carries an integral value.
func IsInt(o Object) bool {
	_, ok := o.(int64)
	return ok
}

// AsInt extracts an integral value.
func AsInt(o Object) int64 { return o.(int64) }

// NewInt constructs an integral handle.
func NewInt(v int64) Object { return v }

// IsFloat reports whether o carries a floating value. Integral
// handles pass too; numeric parameters accept both spellings.
func IsFloat(o Object) bool {
	switch o.(type) {
	case float64, int64:
		return true
	}
	return false
}

// AsFloat extracts a floating value, widening integrals.
func AsFloat(o Object) float64 {
	if i, ok := o.(int64); ok {
		return float64(i)
	}
	return o.(float64)
}

// NewFloat constructs a floating handle.
func NewFloat(v float64) Object { return v }

// IsBool reports whether o carries a boolean.
func IsBool(o Object) bool {
	_, ok := o.(bool)
	return ok
}

// AsBool extracts a boolean.
func AsBool(o Object) bool { return o.(bool) }

// NewBool constructs a boolean handle.
func NewBool(v bool) Object { return v }

// IsStr reports whether o carries text.
func IsStr(o Object) bool {
	_, ok := o.(string)
	return ok
}

// AsStr extracts text.
func AsStr(o Object) string { return o.(string) }

// NewStr constructs a text handle.
func NewStr(v string) Object { return v }

// None is the runtime's empty result, returned by void operations
// and subscript writes.
var None Object = nil
