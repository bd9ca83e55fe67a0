package emit

import (
	"fmt"
	"strings"
)

// Offender is one model site that blocks emission.
type Offender struct {
	File   string
	Line   int
	Where  string // human path into the model, e.g. "class vec3, property origin"
	Reason string
}

func (o Offender) String() string {
	if o.File == "" {
		return fmt.Sprintf("%s: %s", o.Where, o.Reason)
	}
	return fmt.Sprintf("%s:%d: %s: %s", o.File, o.Line, o.Where, o.Reason)
}

// EmissionError aggregates every unsupported type reference in a
// module so one run reports the full list instead of the first hit.
type EmissionError struct {
	Module    string
	Offenders []Offender
}

func (e *EmissionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s: %d unsupported binding site(s):", e.Module, len(e.Offenders))
	for _, o := range e.Offenders {
		sb.WriteString("\n  ")
		sb.WriteString(o.String())
	}
	return sb.String()
}

// MissingAllocatorError reports borrowed classes constructed from
// transient values without a registered allocator. Every offending
// construction site is listed.
type MissingAllocatorError struct {
	Module string
	Sites  []Offender
}

func (e *MissingAllocatorError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s: %d transient construction site(s) need an allocator:", e.Module, len(e.Sites))
	for _, o := range e.Sites {
		sb.WriteString("\n  ")
		sb.WriteString(o.String())
	}
	return sb.String()
}
