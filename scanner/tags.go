package scanner

import "strings"

// DirectivePrefix introduces a binding annotation in a source comment.
// A tag line looks like: //helio:Class(Borrowed, allocator)
const DirectivePrefix = "//helio:"

// TagConfig names the recognized annotation tags. Tag names are
// configurable so host projects can rename the surface without touching
// the scanner; unknown tags are always ignored for forward compatibility.
type TagConfig struct {
	Module   string
	Class    string
	Property string
	Function string
	Operator string
}

// DefaultTags returns the stock tag names.
func DefaultTags() TagConfig {
	return TagConfig{
		Module:   "Module",
		Class:    "Class",
		Property: "Property",
		Function: "Function",
		Operator: "Operator",
	}
}

// kindOf maps a tag name to a record kind, or false if the tag is not
// part of the recognized set.
func (tc TagConfig) kindOf(name string) (Kind, bool) {
	switch name {
	case tc.Module:
		return KindModule, true
	case tc.Class:
		return KindClass, true
	case tc.Property:
		return KindProperty, true
	case tc.Function:
		return KindFunction, true
	case tc.Operator:
		return KindOperator, true
	}
	return 0, false
}

// Arg is a single tag argument. Positional arguments have an empty Name.
type Arg struct {
	Name  string
	Value string
}

// parseArgs splits a tag argument list into positional and named
// arguments. Values may be bare words, identifiers, or quoted strings.
func parseArgs(s string) []Arg {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var args []Arg
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, value, ok := strings.Cut(part, "="); ok {
			value = strings.TrimSpace(value)
			value = strings.Trim(value, `"'`)
			args = append(args, Arg{Name: strings.TrimSpace(name), Value: value})
			continue
		}
		args = append(args, Arg{Value: part})
	}
	return args
}
