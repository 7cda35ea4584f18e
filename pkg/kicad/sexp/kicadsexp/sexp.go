// Package kicadsexp provides a lightweight streaming S-expression reader for
// KiCad board files. Top-level expressions can be pulled one at a time, so a
// board of any size is read without holding its text in memory.
package kicadsexp

import (
	"io"
	"strings"
)

// Sexp is either an atom (Symbol) or a List.
type Sexp interface {
	// IsLeaf reports whether this is an atom
	IsLeaf() bool

	// String renders the expression back to text
	String() string
}

// Symbol is an atom: keyword, number or (unquoted) string contents.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) String() string { return string(s) }

// List is a parenthesised sequence of expressions.
type List struct {
	elements []Sexp
	line     int
}

func (l *List) IsLeaf() bool { return false }

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Get returns the element at index, or nil when out of range
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Items returns the elements of the list. The slice must not be modified.
func (l *List) Items() []Sexp {
	return l.elements
}

// Line returns the 1-based source line of the opening parenthesis.
func (l *List) Line() int {
	return l.line
}

// Name returns the leading keyword of the list, e.g. "segment" for
// (segment ...). It returns "" when the first element is not a symbol.
func (l *List) Name() string {
	if len(l.elements) == 0 {
		return ""
	}
	if sym, ok := l.elements[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Parse reads every top-level expression from r.
func Parse(r io.Reader) ([]Sexp, error) {
	return NewParser(r).ParseAll()
}

// ParseString is Parse over a string.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
