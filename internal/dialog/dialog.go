// Package dialog shows the modal dialogs a client can ask for: file
// choosers and option panes.
package dialog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrCancelled is returned when the user dismisses a dialog.
	ErrCancelled = errors.New("dialog cancelled")
	// ErrUnsupported is returned by providers that cannot show a kind of
	// dialog.
	ErrUnsupported = errors.New("dialog not supported")
)

// Mode selects an open or a save file chooser.
type Mode int

const (
	Load Mode = iota
	Save
)

// ParseMode maps the protocol's mode word. Anything but "save" loads.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "save") {
		return Save
	}
	return Load
}

func (m Mode) String() string {
	if m == Save {
		return "save"
	}
	return "load"
}

// ConfirmType picks the buttons of a confirm dialog.
type ConfirmType int

const (
	YesNo       ConfirmType = 0
	YesNoCancel ConfirmType = 1
	OKCancel    ConfirmType = 2
)

// MessageType picks the icon of a message dialog.
type MessageType int

const (
	PlainMessage       MessageType = -1
	ErrorMessage       MessageType = 0
	InformationMessage MessageType = 1
	WarningMessage     MessageType = 2
	QuestionMessage    MessageType = 3
)

// Confirm dialog answers, as the client decodes them.
const (
	ResultYes    = 0
	ResultOK     = 0
	ResultNo     = 1
	ResultCancel = 2
	ResultClosed = -1
)

// Opener shows a file chooser and returns the chosen path.
type Opener interface {
	Open(title string, mode Mode, path string) (string, error)
}

// Provider shows every kind of dialog.
type Provider interface {
	Opener
	Confirm(message, title string, kind ConfirmType) (int, error)
	Input(message, title string) (string, error)
	Message(message, title string, kind MessageType) error
	Option(message, title string, options []string, initial string) (int, error)
}

// Kinds of provider accepted by New.
const (
	KindNative   = "native"
	KindTerminal = "terminal"
	KindNone     = "none"
)

// New returns the provider for kind. The native provider falls back to the
// terminal for the dialogs it cannot draw, and to Disabled when there is
// no terminal.
func New(kind string, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch kind {
	case KindNone:
		return Disabled{Logger: logger}, nil
	case KindTerminal:
		return NewTerminal()
	case KindNative, "":
		var fallback Provider = Disabled{Logger: logger}
		if t, err := NewTerminal(); err == nil {
			fallback = t
		} else {
			logger.Debug("no terminal for dialog fallback", "error", err)
		}
		return &Native{Fallback: fallback}, nil
	default:
		return nil, fmt.Errorf("unknown dialog kind %q", kind)
	}
}

// confirmAnswer converts a chosen button to the client's code.
func confirmAnswer(kind ConfirmType, yes, no bool) int {
	switch {
	case yes:
		return ResultYes
	case no && kind != OKCancel:
		return ResultNo
	default:
		return ResultCancel
	}
}

// buttons lists the labels of a confirm dialog with their answer codes.
func buttons(kind ConfirmType) ([]string, []int) {
	switch kind {
	case OKCancel:
		return []string{"OK", "Cancel"}, []int{ResultOK, ResultCancel}
	case YesNoCancel:
		return []string{"Yes", "No", "Cancel"}, []int{ResultYes, ResultNo, ResultCancel}
	default:
		return []string{"Yes", "No"}, []int{ResultYes, ResultNo}
	}
}

// indexOf returns the position of s in list, or 0.
func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

// Disabled answers every dialog as if the user closed it.
type Disabled struct {
	Logger *slog.Logger
}

func (d Disabled) log(kind, title string) {
	if d.Logger != nil {
		d.Logger.Info("dialog suppressed", "kind", kind, "title", title)
	}
}

func (d Disabled) Open(title string, _ Mode, _ string) (string, error) {
	d.log("file", title)
	return "", ErrCancelled
}

func (d Disabled) Confirm(_, title string, _ ConfirmType) (int, error) {
	d.log("confirm", title)
	return ResultClosed, nil
}

func (d Disabled) Input(_, title string) (string, error) {
	d.log("input", title)
	return "", ErrCancelled
}

func (d Disabled) Message(_, title string, _ MessageType) error {
	d.log("message", title)
	return nil
}

func (d Disabled) Option(_, title string, _ []string, _ string) (int, error) {
	d.log("option", title)
	return ResultClosed, nil
}
