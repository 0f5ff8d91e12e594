package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MikeO7/HarborSim/internal/history"
	"github.com/MikeO7/HarborSim/internal/session"
	"github.com/MikeO7/HarborSim/internal/sim"
)

// maxEntries bounds how much transcript is drawn
const maxEntries = 30

type resultMsg struct {
	result sim.Result
	err    error
}

type changedMsg struct{}

// Model is the terminal prompt
type Model struct {
	ctx     context.Context
	session *session.Session
	vis     *Visualizer
	input   textinput.Model

	width    int
	lastErr  error
	quitting bool
}

// NewModel wires a prompt to sess. vis may be nil to hide the summary.
func NewModel(ctx context.Context, sess *session.Session, vis *Visualizer) Model {
	ti := textinput.New()
	ti.Placeholder = "docker run hello-world"
	ti.Prompt = "$ "
	ti.PromptStyle = styles.Prompt
	ti.CharLimit = 512
	ti.Width = 72
	ti.Focus()

	return Model{
		ctx:     ctx,
		session: sess,
		vis:     vis,
		input:   ti,
		width:   80,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

func (m Model) submit(raw string) tea.Cmd {
	return func() tea.Msg {
		r, err := m.session.Submit(m.ctx, raw)
		return resultMsg{result: r, err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.vis == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-m.vis.Changed():
			return changedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			raw := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(raw) == "" {
				return m, nil
			}
			return m, m.submit(raw)
		case tea.KeyUp:
			m.input.SetValue(m.session.Previous())
			m.input.CursorEnd()
			return m, nil
		case tea.KeyDown:
			m.input.SetValue(m.session.Next())
			m.input.CursorEnd()
			return m, nil
		}

	case resultMsg:
		m.lastErr = msg.err
		return m, nil

	case changedMsg:
		return m, m.waitForChange()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 4 {
			m.input.Width = msg.Width - 4
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return styles.Muted.Render("Bye!") + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("HarborSim"))
	b.WriteString(styles.Muted.Render("  docker command simulator"))
	b.WriteString("\n")
	if m.vis != nil {
		b.WriteString(styles.Stats.Render(m.vis.Summary()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	entries := m.session.History()
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	for _, e := range entries {
		b.WriteString(renderEntry(e))
	}

	if m.lastErr != nil {
		b.WriteString(styles.Error.Render("error: " + m.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("enter run • ↑/↓ history • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func renderEntry(e history.Entry) string {
	var b strings.Builder
	if !e.Actionable() {
		b.WriteString(styles.System.Render(e.Output))
		b.WriteString("\n")
		return b.String()
	}

	mark := styles.Success.Render(markSuccess)
	if !*e.Success {
		mark = styles.Error.Render(markFailure)
	}
	b.WriteString(mark)
	b.WriteString(" ")
	b.WriteString(styles.Prompt.Render("$"))
	b.WriteString(" ")
	b.WriteString(styles.Command.Render(e.Command))
	b.WriteString("\n")

	out := strings.TrimRight(e.Output, "\n")
	if out != "" {
		style := styles.Output
		if !*e.Success {
			style = style.Foreground(colorError)
		}
		b.WriteString(style.Render(out))
		b.WriteString("\n")
	}
	return b.String()
}

// Run starts the prompt and blocks until the user quits or ctx ends
func Run(ctx context.Context, sess *session.Session, vis *Visualizer) error {
	p := tea.NewProgram(NewModel(ctx, sess, vis), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
