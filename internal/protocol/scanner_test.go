package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCommand_TypedArguments(t *testing.T) {
	name, args, err := ParseCommand(`GRect.create("r1", 30, 40.5)`)
	if err != nil {
		t.Fatalf("ParseCommand error: %v", err)
	}
	if name != "GRect.create" {
		t.Fatalf("expected name GRect.create, got %q", name)
	}
	id := args.String()
	w := args.Float()
	h := args.Float()
	if err := args.End(); err != nil {
		t.Fatalf("End error: %v", err)
	}
	if id != "r1" || w != 30 || h != 40.5 {
		t.Fatalf("expected (r1, 30, 40.5), got (%q, %v, %v)", id, w, h)
	}
}

func TestArgs_JoinsSplitNegativeNumber(t *testing.T) {
	args := NewArgs(`("o", - 12.5, -3, +4)`)
	_ = args.String()
	x := args.Float()
	y := args.Int()
	z := args.Int()
	if err := args.End(); err != nil {
		t.Fatalf("End error: %v", err)
	}
	if x != -12.5 || y != -3 || z != 4 {
		t.Fatalf("expected -12.5, -3, 4, got %v, %v, %v", x, y, z)
	}
}

func TestArgs_BooleansAndEscapes(t *testing.T) {
	args := NewArgs(`(true, false, "a\"b\\c\n\101", 'single')`)
	b1 := args.Bool()
	b2 := args.Bool()
	s := args.String()
	single := args.String()
	if err := args.End(); err != nil {
		t.Fatalf("End error: %v", err)
	}
	if !b1 || b2 {
		t.Fatalf("expected true,false got %v,%v", b1, b2)
	}
	if s != "a\"b\\c\nA" {
		t.Fatalf("unexpected unescaped string %q", s)
	}
	if single != "single" {
		t.Fatalf("expected single, got %q", single)
	}
}

func TestArgs_IntAcceptsIntegralFloat(t *testing.T) {
	args := NewArgs(`(200.0)`)
	if v := args.Int(); v != 200 {
		t.Fatalf("expected 200, got %d", v)
	}
	if err := args.End(); err != nil {
		t.Fatalf("End error: %v", err)
	}

	args = NewArgs(`(2.5)`)
	args.Int()
	if err := args.End(); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for fractional int, got %v", err)
	}
}

func TestArgs_IntRejectsOutOfRangeFloat(t *testing.T) {
	for _, text := range []string{"1e300", "-1e300", "99999999999999999999"} {
		args := NewArgs("(" + text + ")")
		if v := args.Int(); v != 0 {
			t.Fatalf("%s: expected 0, got %d", text, v)
		}
		if err := args.End(); !errors.Is(err, ErrParse) {
			t.Fatalf("%s: expected ErrParse, got %v", text, err)
		}
	}
}

func TestArgs_ErrorsAreStickyAndTyped(t *testing.T) {
	tests := []struct {
		name string
		list string
		read func(a *Args)
		want string
	}{
		{
			name: "comma expected",
			list: `("a" "b")`,
			read: func(a *Args) { _ = a.String(); _ = a.String() },
			want: `expected ","`,
		},
		{
			name: "number expected",
			list: `("a")`,
			read: func(a *Args) { a.Float() },
			want: "expected number",
		},
		{
			name: "unterminated string",
			list: `("abc`,
			read: func(a *Args) { _ = a.String() },
			want: "unterminated string",
		},
		{
			name: "too few arguments",
			list: `("a")`,
			read: func(a *Args) { _ = a.String(); _ = a.String() },
			want: `expected ","`,
		},
		{
			name: "trailing garbage",
			list: `("a") x`,
			read: func(a *Args) { _ = a.String() },
			want: "unexpected",
		},
		{
			name: "too many arguments",
			list: `("a", "b")`,
			read: func(a *Args) { _ = a.String() },
			want: `expected ")"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArgs(tt.list)
			tt.read(a)
			err := a.End()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestArgs_NoArgumentList(t *testing.T) {
	for _, line := range []string{"GWindow.exitGraphics()", "GWindow.exitGraphics", "  JBEConsole.clear( )  "} {
		_, args, err := ParseCommand(line)
		if err != nil {
			t.Fatalf("%q: ParseCommand error: %v", line, err)
		}
		if err := args.End(); err != nil {
			t.Fatalf("%q: End error: %v", line, err)
		}
	}
}

func TestArgs_OptionalTrailingArgument(t *testing.T) {
	a := NewArgs(`("t", "load", "/tmp/ ")`)
	_ = a.String()
	_ = a.String()
	_ = a.String()
	if a.More() {
		t.Fatalf("expected no more arguments")
	}
	if err := a.End(); err != nil {
		t.Fatalf("End error: %v", err)
	}

	a = NewArgs(`("t", "load", "/tmp/ ", "*.png")`)
	_ = a.String()
	_ = a.String()
	_ = a.String()
	if !a.More() {
		t.Fatalf("expected another argument")
	}
	if got := a.String(); got != "*.png" {
		t.Fatalf("expected *.png, got %q", got)
	}
	if err := a.End(); err != nil {
		t.Fatalf("End error: %v", err)
	}
}

func TestArgs_StringList(t *testing.T) {
	a := NewArgs(`("msg", {"red", "green", blue}, "green")`)
	_ = a.String()
	list := a.StringList()
	initial := a.String()
	if err := a.End(); err != nil {
		t.Fatalf("End error: %v", err)
	}
	if strings.Join(list, "|") != "red|green|blue" {
		t.Fatalf("unexpected list %v", list)
	}
	if initial != "green" {
		t.Fatalf("expected green, got %q", initial)
	}

	a = NewArgs(`({})`)
	if list := a.StringList(); len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
	if err := a.End(); err != nil {
		t.Fatalf("End error: %v", err)
	}
}

func TestParseCommand_RejectsNonWord(t *testing.T) {
	_, _, err := ParseCommand(`"quoted"(1)`)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}
