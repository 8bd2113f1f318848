package console

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestStream_PrintRoutesStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	s := NewStream(Options{In: strings.NewReader(""), Out: &out, Err: &errOut})

	s.Print("hello", false)
	s.Println()
	s.Print("oops", true)

	if got := out.String(); got != "hello\n" {
		t.Fatalf("expected %q on out, got %q", "hello\n", got)
	}
	if got := errOut.String(); got != "oops" {
		t.Fatalf("expected %q on err, got %q", "oops", got)
	}
}

func TestStream_GetLine(t *testing.T) {
	s := NewStream(Options{In: strings.NewReader("first\r\nsecond\nlast"), Out: io.Discard, Err: io.Discard})

	for _, want := range []string{"first", "second", "last"} {
		got, err := s.GetLine()
		if err != nil {
			t.Fatalf("GetLine: %v", err)
		}
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	if _, err := s.GetLine(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestStream_ClearSkipsNonTerminal(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(Options{In: strings.NewReader(""), Out: &out, Err: io.Discard})
	s.Clear()
	if out.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", out.String())
	}
}

func TestNew_Kinds(t *testing.T) {
	c, err := New(KindNone, Options{})
	if err != nil {
		t.Fatalf("New(none): %v", err)
	}
	if _, err := c.GetLine(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF from discard console, got %v", err)
	}
	if _, err := New("bogus", Options{}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestTranscript_Write(t *testing.T) {
	var tr transcript
	tr.write("ab", nil)
	tr.write("c\nd", nil)
	tr.write("\n", nil)
	if got := tr.String(); got != "abc\nd\n" {
		t.Fatalf("expected %q, got %q", "abc\nd\n", got)
	}
}

func TestModel_ReadLine(t *testing.T) {
	reply := make(chan string, 1)
	var m tea.Model = newModel()
	m, _ = m.Update(readMsg{reply: reply})
	for _, r := range "hi" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	select {
	case got := <-reply:
		if got != "hi" {
			t.Fatalf("expected %q, got %q", "hi", got)
		}
	default:
		t.Fatal("expected a reply after enter")
	}
	if mm := m.(model); mm.pending != nil || !strings.Contains(mm.text.String(), "hi") {
		t.Fatalf("expected echoed line and no pending read, got %q", mm.text.String())
	}
}
