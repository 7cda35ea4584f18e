package kicadsexp

import (
	"io"
	"strings"
	"testing"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "segment record",
			input: "(segment (start 1.000000 2.000000) (end 3.000000 4.000000) (width 0.15) (layer F.Cu) (net 0))",
			want:  []string{"(segment (start 1.000000 2.000000) (end 3.000000 4.000000) (width 0.15) (layer F.Cu) (net 0))"},
		},
		{
			name:  "quoted strings are unquoted",
			input: `(layer "F.Cu")`,
			want:  []string{"(layer F.Cu)"},
		},
		{
			name:  "several top-level expressions and comments",
			input: "# comment\n(a 1)\n(b (c 2))\n",
			want:  []string{"(a 1)", "(b (c 2))"},
		},
		{
			name:  "empty input",
			input: "  \n",
			want:  nil,
		},
		{
			name:    "unbalanced list",
			input:   "(a (b 1)",
			wantErr: true,
		},
		{
			name:    "stray close paren",
			input:   ")",
			wantErr: true,
		},
		{
			name:    "unterminated string",
			input:   `(title "abc`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseString() expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseString() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseString() returned %d expressions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("expr %d = %q, want %q", i, got[i].String(), tt.want[i])
				}
			}
		})
	}
}

func TestParserNextStreamsWithLines(t *testing.T) {
	input := "(kicad_pcb\n  (version 20211014)\n)\n(via (at 0 0))\n"
	p := NewParser(strings.NewReader(input))

	first, err := p.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	list, ok := first.(*List)
	if !ok {
		t.Fatalf("expected *List, got %T", first)
	}
	if list.Name() != "kicad_pcb" || list.Line() != 1 {
		t.Errorf("first = %s at line %d, want kicad_pcb at line 1", list.Name(), list.Line())
	}
	inner, ok := list.Get(1).(*List)
	if !ok || inner.Line() != 2 {
		t.Errorf("version node line = %v, want 2", inner)
	}

	second, err := p.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if got := second.(*List); got.Name() != "via" || got.Line() != 4 {
		t.Errorf("second = %s at line %d, want via at line 4", got.Name(), got.Line())
	}

	if _, err := p.Next(); err != io.EOF {
		t.Errorf("Next() at end = %v, want io.EOF", err)
	}
}

func TestListAccessors(t *testing.T) {
	exprs, err := ParseString("(layers F.Cu B.Cu)")
	if err != nil {
		t.Fatal(err)
	}
	l := exprs[0].(*List)
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
	if l.Get(5) != nil {
		t.Error("Get() out of range should return nil")
	}
	if s, ok := l.Get(2).(Symbol); !ok || s != "B.Cu" {
		t.Errorf("Get(2) = %v, want B.Cu", l.Get(2))
	}
	if !l.Get(1).IsLeaf() || l.IsLeaf() {
		t.Error("IsLeaf() mismatch")
	}
}
