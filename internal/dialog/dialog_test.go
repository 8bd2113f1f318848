package dialog

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{"save": Save, " SAVE ": Save, "load": Load, "": Load, "open": Load}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Fatalf("ParseMode(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestConfirmAnswer(t *testing.T) {
	tests := []struct {
		kind    ConfirmType
		yes, no bool
		want    int
	}{
		{YesNo, true, false, ResultYes},
		{YesNo, false, true, ResultNo},
		{OKCancel, true, false, ResultOK},
		{OKCancel, false, true, ResultCancel},
		{YesNoCancel, false, false, ResultCancel},
	}
	for _, tt := range tests {
		if got := confirmAnswer(tt.kind, tt.yes, tt.no); got != tt.want {
			t.Fatalf("confirmAnswer(%v, %v, %v): expected %d, got %d", tt.kind, tt.yes, tt.no, tt.want, got)
		}
	}
}

func TestButtons(t *testing.T) {
	labels, codes := buttons(YesNoCancel)
	if len(labels) != 3 || codes[2] != ResultCancel {
		t.Fatalf("expected yes/no/cancel, got %v %v", labels, codes)
	}
	labels, codes = buttons(OKCancel)
	if labels[0] != "OK" || codes[1] != ResultCancel {
		t.Fatalf("expected ok/cancel, got %v %v", labels, codes)
	}
}

func TestDisabled(t *testing.T) {
	d := Disabled{}
	if _, err := d.Open("t", Load, "/"); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if got, _ := d.Confirm("m", "t", YesNo); got != ResultClosed {
		t.Fatalf("expected %d, got %d", ResultClosed, got)
	}
	if got, _ := d.Option("m", "t", []string{"a"}, "a"); got != ResultClosed {
		t.Fatalf("expected %d, got %d", ResultClosed, got)
	}
	if err := d.Message("m", "t", PlainMessage); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestNew(t *testing.T) {
	p, err := New(KindNone, nil)
	if err != nil {
		t.Fatalf("New(none): %v", err)
	}
	if _, ok := p.(Disabled); !ok {
		t.Fatalf("expected Disabled, got %T", p)
	}
	if _, err := New("bogus", nil); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestIndexOf(t *testing.T) {
	if got := indexOf([]string{"a", "b", "c"}, "c"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := indexOf([]string{"a"}, "z"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
