package backend

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/1broseidon/splbe/internal/dialog"
	"github.com/1broseidon/splbe/internal/protocol"
)

// Dialogs are modal: they run on the session goroutine, so no further
// commands are read until the user answers.

// parent reads the optional owner window id that trails dialog commands.
// Dialogs are not attached to windows, so it is only checked for syntax.
func (c *call) parent() {
	if c.More() {
		_ = c.String()
	}
}

func openFileDialog(c *call) (string, error) {
	title, mode, path := c.String(), c.String(), c.String()
	if c.More() {
		if pattern := c.String(); pattern != "" {
			c.b.logger.Debug("file dialog filter ignored", "pattern", pattern)
		}
	}
	if err := c.End(); err != nil {
		return "", err
	}
	chosen, err := c.b.opts.Dialogs.Open(title, dialog.ParseMode(mode), strings.TrimSpace(path))
	if errors.Is(err, dialog.ErrCancelled) {
		return "", nil
	}
	if err != nil {
		return "", protocol.Native(err)
	}
	return chosen, nil
}

func confirmDialog(c *call) (string, error) {
	message, title, kind := c.String(), c.String(), c.Int()
	c.parent()
	if err := c.End(); err != nil {
		return "", err
	}
	answer, err := c.b.opts.Dialogs.Confirm(message, title, dialog.ConfirmType(kind))
	if errors.Is(err, dialog.ErrCancelled) {
		answer, err = dialog.ResultClosed, nil
	}
	if err != nil {
		return "", protocol.Native(err)
	}
	return strconv.Itoa(answer), nil
}

func inputDialog(c *call) (string, error) {
	message, title := c.String(), c.String()
	c.parent()
	if err := c.End(); err != nil {
		return "", err
	}
	text, err := c.b.opts.Dialogs.Input(message, title)
	if errors.Is(err, dialog.ErrCancelled) {
		return "", nil
	}
	if err != nil {
		return "", protocol.Native(err)
	}
	return text, nil
}

func messageDialog(c *call) (string, error) {
	message, title, kind := c.String(), c.String(), c.Int()
	c.parent()
	if err := c.End(); err != nil {
		return "", err
	}
	err := c.b.opts.Dialogs.Message(message, title, dialog.MessageType(kind))
	if err != nil && !errors.Is(err, dialog.ErrCancelled) {
		return "", protocol.Native(err)
	}
	return "", nil
}

func optionDialog(c *call) (string, error) {
	message, title, options, initial := c.String(), c.String(), c.StringList(), c.String()
	c.parent()
	if err := c.End(); err != nil {
		return "", err
	}
	index, err := c.b.opts.Dialogs.Option(message, title, options, initial)
	if errors.Is(err, dialog.ErrCancelled) {
		index, err = dialog.ResultClosed, nil
	}
	if err != nil {
		return "", protocol.Native(err)
	}
	return strconv.Itoa(index), nil
}

func consoleClear(c *call) (string, error) {
	if err := c.End(); err != nil {
		return "", err
	}
	c.b.opts.Console.Clear()
	return "", nil
}

func consolePrint(c *call) (string, error) {
	text := c.String()
	stderr := false
	if c.More() {
		stderr = c.Bool()
	}
	if err := c.End(); err != nil {
		return "", err
	}
	c.b.opts.Console.Print(text, stderr)
	return "", nil
}

// consolePrintln ends the current line, printing text first when given.
func consolePrintln(c *call) (string, error) {
	text, stderr := "", false
	if c.More() {
		text = c.String()
		if c.More() {
			stderr = c.Bool()
		}
	}
	if err := c.End(); err != nil {
		return "", err
	}
	if text != "" {
		c.b.opts.Console.Print(text, stderr)
	}
	c.b.opts.Console.Println()
	return "", nil
}

func consoleGetLine(c *call) (string, error) {
	if err := c.End(); err != nil {
		return "", err
	}
	line, err := c.b.opts.Console.GetLine()
	if errors.Is(err, io.EOF) {
		return "", protocol.Native(errors.New("console input closed"))
	}
	if err != nil {
		return "", protocol.Native(err)
	}
	return line, nil
}

func consoleSetFont(c *call) (string, error) {
	font := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	c.b.opts.Console.SetFont(font)
	return "", nil
}

func consoleSetLocation(c *call) (string, error) {
	x, y := c.Int(), c.Int()
	if err := c.End(); err != nil {
		return "", err
	}
	c.b.opts.Console.SetLocation(x, y)
	return "", nil
}

func consoleSetSize(c *call) (string, error) {
	w, h := c.Float(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	c.b.opts.Console.SetSize(w, h)
	return "", nil
}
