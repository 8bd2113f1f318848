package dialog

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/sqweek/dialog"
)

// Native shows file choosers, confirmations and messages with the
// platform's own dialogs. Input and option dialogs go to Fallback.
type Native struct {
	Fallback Provider
}

func (n *Native) Open(title string, mode Mode, path string) (string, error) {
	b := dialog.File().Title(title)
	if dir := startDir(path); dir != "" {
		b = b.SetStartDir(dir)
	}
	var (
		chosen string
		err    error
	)
	if mode == Save {
		chosen, err = b.Save()
	} else {
		chosen, err = b.Load()
	}
	if errors.Is(err, dialog.ErrCancelled) {
		return "", ErrCancelled
	}
	return chosen, err
}

// startDir returns the directory a chooser opens in for path.
func startDir(path string) string {
	if path == "" {
		return ""
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func (n *Native) Confirm(message, title string, kind ConfirmType) (int, error) {
	yes := dialog.Message("%s", message).Title(title).YesNo()
	return confirmAnswer(kind, yes, !yes), nil
}

func (n *Native) Message(message, title string, kind MessageType) error {
	b := dialog.Message("%s", message).Title(title)
	if kind == ErrorMessage {
		b.Error()
	} else {
		b.Info()
	}
	return nil
}

func (n *Native) Input(message, title string) (string, error) {
	if n.Fallback == nil {
		return "", ErrUnsupported
	}
	return n.Fallback.Input(message, title)
}

func (n *Native) Option(message, title string, options []string, initial string) (int, error) {
	if n.Fallback == nil {
		return ResultClosed, ErrUnsupported
	}
	return n.Fallback.Option(message, title, options, initial)
}
