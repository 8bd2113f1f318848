package dialog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
)

// Terminal shows dialogs as forms on the controlling terminal. The
// protocol owns stdin and stdout, so forms talk to /dev/tty.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal opens the controlling terminal.
func NewTerminal() (*Terminal, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	return &Terminal{in: tty, out: tty}, nil
}

func (t *Terminal) run(fields ...huh.Field) error {
	err := huh.NewForm(huh.NewGroup(fields...)).
		WithInput(t.in).
		WithOutput(t.out).
		WithShowHelp(true).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

func (t *Terminal) Open(title string, mode Mode, path string) (string, error) {
	chosen := path
	input := huh.NewInput().
		Title(title).
		Description("Path of the file to " + mode.String()).
		Value(&chosen)
	if mode == Load {
		input = input.Validate(func(s string) error {
			st, err := os.Stat(s)
			if err != nil {
				return err
			}
			if st.IsDir() {
				return fmt.Errorf("%s is a directory", s)
			}
			return nil
		})
	}
	if err := t.run(input); err != nil {
		return "", err
	}
	return chosen, nil
}

func (t *Terminal) Confirm(message, title string, kind ConfirmType) (int, error) {
	labels, codes := buttons(kind)
	choice := 0
	opts := make([]huh.Option[int], len(labels))
	for i, l := range labels {
		opts[i] = huh.NewOption(l, i)
	}
	sel := huh.NewSelect[int]().Title(title).Description(message).Options(opts...).Value(&choice)
	if err := t.run(sel); err != nil {
		if errors.Is(err, ErrCancelled) {
			return ResultClosed, nil
		}
		return ResultClosed, err
	}
	return codes[choice], nil
}

func (t *Terminal) Input(message, title string) (string, error) {
	var answer string
	if err := t.run(huh.NewInput().Title(title).Description(message).Value(&answer)); err != nil {
		return "", err
	}
	return answer, nil
}

func (t *Terminal) Message(message, title string, _ MessageType) error {
	var ok bool
	note := huh.NewConfirm().Title(title).Description(message).Affirmative("OK").Negative("").Value(&ok)
	err := t.run(note)
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	return err
}

func (t *Terminal) Option(message, title string, options []string, initial string) (int, error) {
	if len(options) == 0 {
		return ResultClosed, nil
	}
	choice := indexOf(options, initial)
	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, i)
	}
	sel := huh.NewSelect[int]().Title(title).Description(message).Options(opts...).Value(&choice)
	if err := t.run(sel); err != nil {
		if errors.Is(err, ErrCancelled) {
			return ResultClosed, nil
		}
		return ResultClosed, err
	}
	return choice, nil
}
