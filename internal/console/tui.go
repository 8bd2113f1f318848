package console

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type printMsg struct {
	text   string
	stderr bool
}

type clearMsg struct{}

type readMsg struct{ reply chan<- string }

// transcript is the console text, one entry per line.
type transcript struct {
	lines []string
}

func (t *transcript) write(text string, style *lipgloss.Style) {
	if len(t.lines) == 0 {
		t.lines = []string{""}
	}
	parts := strings.Split(text, "\n")
	for i, p := range parts {
		if i > 0 {
			t.lines = append(t.lines, "")
		}
		if p == "" {
			continue
		}
		if style != nil {
			p = style.Render(p)
		}
		t.lines[len(t.lines)-1] += p
	}
}

func (t *transcript) String() string { return strings.Join(t.lines, "\n") }

// model is the bubbletea model of the TUI console.
type model struct {
	view    viewport.Model
	input   textinput.Model
	text    transcript
	pending chan<- string
	ready   bool
}

func newModel() model {
	in := textinput.New()
	in.Prompt = promptStyle.Render("> ")
	return model{view: viewport.New(80, 20), input: in}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-3, 1)
		m.input.Width = max(msg.Width-4, 1)
		m.ready = true
	case printMsg:
		if msg.stderr {
			m.text.write(msg.text, &errStyle)
		} else {
			m.text.write(msg.text, nil)
		}
		m.refresh()
	case clearMsg:
		m.text = transcript{}
		m.refresh()
	case readMsg:
		m.pending = msg.reply
		cmds = append(cmds, m.input.Focus())
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.answer("")
			return m, tea.Quit
		case "enter":
			if m.pending != nil {
				line := m.input.Value()
				m.text.write(line+"\n", nil)
				m.answer(line)
				m.input.Reset()
				m.input.Blur()
				m.refresh()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.pending != nil {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.view, cmd = m.view.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *model) answer(line string) {
	if m.pending != nil {
		m.pending <- line
		m.pending = nil
	}
}

func (m *model) refresh() {
	m.view.SetContent(m.text.String())
	m.view.GotoBottom()
}

func (m model) View() string {
	footer := idleStyle.Render("output only")
	if m.pending != nil {
		footer = m.input.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("console"), m.view.View(), footer)
}

// TUI is a full-screen console drawn with bubbletea.
type TUI struct {
	prog   *tea.Program
	done   chan struct{}
	logger *slog.Logger
}

// NewTUI starts the console program on the given streams.
func NewTUI(opts Options) *TUI {
	opts.defaults()
	t := &TUI{
		prog:   tea.NewProgram(newModel(), tea.WithInput(opts.In), tea.WithOutput(opts.Out), tea.WithAltScreen()),
		done:   make(chan struct{}),
		logger: opts.Logger,
	}
	go func() {
		defer close(t.done)
		if _, err := t.prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			t.logger.Error("console exited", "error", err)
		}
	}()
	return t
}

func (t *TUI) send(msg tea.Msg) {
	select {
	case <-t.done:
	default:
		t.prog.Send(msg)
	}
}

func (t *TUI) Clear() { t.send(clearMsg{}) }
func (t *TUI) Print(text string, stderr bool) { t.send(printMsg{text: text, stderr: stderr}) }
func (t *TUI) Println() { t.send(printMsg{text: "\n"}) }

// GetLine focuses the input line and waits for the user to submit it.
func (t *TUI) GetLine() (string, error) {
	reply := make(chan string, 1)
	t.send(readMsg{reply: reply})
	select {
	case line := <-reply:
		return line, nil
	case <-t.done:
		return "", io.EOF
	}
}

func (t *TUI) SetFont(font string) {
	t.logger.Debug("console font ignored on terminal console", "font", font)
}

func (t *TUI) SetLocation(x, y int) {}

func (t *TUI) SetSize(width, height float64) {}

// Close stops the program and restores the terminal.
func (t *TUI) Close() error {
	t.prog.Quit()
	<-t.done
	return nil
}
