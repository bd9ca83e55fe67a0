// Package scanner walks annotated Go source units and extracts raw
// binding records for the model builder. It is a textual, line-oriented
// scanner: it recognizes only the declarative subset needed to classify
// annotated constructs (struct types, fields, vars, funcs, methods) and
// never type-checks. Each source unit yields a lazy, finite,
// non-restartable record stream via Next.
package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind classifies what declaration kind a record annotates.
type Kind int

const (
	KindModule Kind = iota
	KindClass
	KindProperty
	KindFunction
	KindOperator
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindProperty:
		return "property"
	case KindFunction:
		return "function"
	case KindOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// Param is one parsed parameter of an annotated function declaration.
type Param struct {
	Name string
	Type string
}

// Record is a raw annotated declaration: the tag, its arguments, the
// source location, and the verbatim declaration text that follows,
// plus the light structural parse the builder needs.
type Record struct {
	Kind Kind
	Tag  string
	Args []Arg
	File string
	Line int // 1-based line of the tag
	Decl string

	// Parsed declaration parts. Which fields are set depends on Kind:
	// Class sets Name; Property sets Name and Type; Function/Operator
	// set Name, Params, Return and the receiver fields.
	Name        string
	Type        string
	Params      []Param
	Return      string
	Receiver    string // receiver type name, empty for free functions
	ReceiverPtr bool   // receiver was declared as a pointer
}

// ScanError reports a tag attached to a declaration the scanner cannot
// classify. It is fatal for the source unit it occurred in; other units
// are unaffected.
type ScanError struct {
	File    string
	Line    int
	Snippet string
	Reason  string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.File, e.Line, e.Reason, e.Snippet)
}

var (
	typeDeclRe  = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s+struct\s*\{`)
	fieldDeclRe = regexp.MustCompile(`^([A-Za-z_]\w*)\s+(\*?[A-Za-z_][\w.]*)$`)
	varDeclRe   = regexp.MustCompile(`^var\s+([A-Za-z_]\w*)\s+(\*?[A-Za-z_][\w.]*)`)
	funcDeclRe  = regexp.MustCompile(`^func\s+(?:\(\s*\w+\s+(\*?)([A-Za-z_]\w*)\s*\)\s*)?([A-Za-z_]\w*)\s*\(([^)]*)\)\s*(\*?[A-Za-z_][\w.]*)?\s*\{?\s*$`)
)

// Scanner produces annotated-declaration records from one source unit.
// It is single-use: once Next returns nil or an error the stream is
// exhausted and cannot be restarted.
type Scanner struct {
	tags  TagConfig
	file  string
	lines []string
	pos   int
	dead  bool
}

// New creates a Scanner over src, which is the full text of one source
// unit. file is used in locations and error messages only.
func New(file, src string, tags TagConfig) *Scanner {
	return &Scanner{
		tags:  tags,
		file:  file,
		lines: strings.Split(src, "\n"),
	}
}

// Next returns the next annotated-declaration record, or (nil, nil)
// when the unit is exhausted. After a ScanError the stream is dead:
// the error is fatal for this source unit.
func (s *Scanner) Next() (*Record, error) {
	if s.dead {
		return nil, nil
	}
	for s.pos < len(s.lines) {
		line := strings.TrimSpace(s.lines[s.pos])
		s.pos++
		if !strings.HasPrefix(line, DirectivePrefix) {
			continue
		}
		tagLine := s.pos // 1-based line of the tag
		name, rawArgs, ok := splitTag(line[len(DirectivePrefix):])
		if !ok {
			continue // malformed directive body, not ours to reject
		}
		kind, known := s.tags.kindOf(name)
		if !known {
			continue // unknown tag, ignored for forward compatibility
		}
		rec := &Record{
			Kind: kind,
			Tag:  name,
			Args: parseArgs(rawArgs),
			File: s.file,
			Line: tagLine,
		}
		if kind == KindModule {
			return rec, nil
		}
		if err := s.attachDecl(rec); err != nil {
			s.dead = true
			return nil, err
		}
		return rec, nil
	}
	return nil, nil
}

// splitTag separates "Class(Borrowed, allocator)" into name and raw
// argument text. A tag without parentheses has empty arguments.
func splitTag(body string) (name, args string, ok bool) {
	body = strings.TrimSpace(body)
	open := strings.IndexByte(body, '(')
	if open < 0 {
		if body == "" || !isIdent(body) {
			return "", "", false
		}
		return body, "", true
	}
	if !strings.HasSuffix(body, ")") {
		return "", "", false
	}
	name = strings.TrimSpace(body[:open])
	if !isIdent(name) {
		return "", "", false
	}
	return name, body[open+1 : len(body)-1], true
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return s != ""
}

// attachDecl scans forward to the declaration the tag annotates and
// parses it according to the record kind. Blank lines and ordinary
// comments between the tag and its declaration are skipped.
func (s *Scanner) attachDecl(rec *Record) error {
	for s.pos < len(s.lines) {
		line := strings.TrimSpace(s.lines[s.pos])
		s.pos++
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "//") && !strings.HasPrefix(line, DirectivePrefix) {
			continue
		}
		if strings.HasPrefix(line, DirectivePrefix) {
			// A tag directly followed by another tag annotates nothing.
			s.pos--
			break
		}
		rec.Decl = stripTrailingComment(line)
		return s.parseDecl(rec)
	}
	return &ScanError{
		File:    rec.File,
		Line:    rec.Line,
		Snippet: DirectivePrefix + rec.Tag,
		Reason:  "annotation is not followed by a declaration",
	}
}

func stripTrailingComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func (s *Scanner) parseDecl(rec *Record) error {
	fail := func(reason string) error {
		s.dead = true
		return &ScanError{File: rec.File, Line: rec.Line, Snippet: rec.Decl, Reason: reason}
	}
	switch rec.Kind {
	case KindClass:
		m := typeDeclRe.FindStringSubmatch(rec.Decl)
		if m == nil {
			return fail("class annotation must precede a struct type declaration")
		}
		rec.Name = m[1]
	case KindProperty:
		if m := varDeclRe.FindStringSubmatch(rec.Decl); m != nil {
			rec.Name, rec.Type = m[1], m[2]
			return nil
		}
		m := fieldDeclRe.FindStringSubmatch(rec.Decl)
		if m == nil {
			return fail("property annotation must precede a field or var declaration")
		}
		rec.Name, rec.Type = m[1], m[2]
	case KindFunction, KindOperator:
		m := funcDeclRe.FindStringSubmatch(rec.Decl)
		if m == nil {
			return fail("function annotation must precede a func declaration")
		}
		rec.ReceiverPtr = m[1] == "*"
		rec.Receiver = m[2]
		rec.Name = m[3]
		rec.Return = m[5]
		params, err := parseParams(m[4])
		if err != nil {
			return fail(err.Error())
		}
		rec.Params = params
	}
	return nil
}

// parseParams parses a Go parameter list, expanding grouped names
// ("a, b Vec3") so every Param carries its own type spelling.
func parseParams(list string) ([]Param, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	params := make([]Param, len(parts))
	// Walk backwards so grouped names inherit the type to their right.
	lastType := ""
	for i := len(parts) - 1; i >= 0; i-- {
		fields := strings.Fields(strings.TrimSpace(parts[i]))
		switch len(fields) {
		case 2:
			params[i] = Param{Name: fields[0], Type: fields[1]}
			lastType = fields[1]
		case 1:
			if lastType == "" {
				return nil, fmt.Errorf("parameter %q has no type", fields[0])
			}
			params[i] = Param{Name: fields[0], Type: lastType}
		default:
			return nil, fmt.Errorf("cannot parse parameter %q", strings.TrimSpace(parts[i]))
		}
	}
	return params, nil
}
