package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/session"
	"github.com/sandevgo/docchat/internal/service/ui"
)

type Asker interface {
	Ask(ctx context.Context, s *session.Session, question string, sink core.TokenSink) (chat.TurnResult, error)
}

type (
	tokenMsg    string
	turnDoneMsg struct {
		res chat.TurnResult
		err error
	}
)

// note is a local line (command output, errors) shown after the message it followed.
type note struct {
	after int
	text  string
	err   bool
}

// Model is a chat transcript bound to one session. The transcript is rendered
// from session snapshots, so the session state is the only source of truth.
type Model struct {
	ctx    context.Context
	sess   *session.Session
	asker  Asker
	router core.CmdRouter
	title  string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	notes  []note
	events <-chan tea.Msg
	busy   bool
	ready  bool
	width  int
}

func New(ctx context.Context, sess *session.Session, asker Asker, router core.CmdRouter, title string) Model {
	in := textinput.New()
	in.Placeholder = "Ask about the document, or /help"
	in.Prompt = "› "
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		sess:     sess,
		asker:    asker,
		router:   router,
		title:    title,
		input:    in,
		spinner:  sp,
		viewport: viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.busy {
				m.sess.Abort()
				return m, nil
			}
			return m, tea.Quit
		case tea.KeyEsc:
			if !m.busy {
				return m, tea.Quit
			}
		case tea.KeyEnter:
			return m.submit()
		}

	case tokenMsg:
		cmds = append(cmds, waitFor(m.events))

	case turnDoneMsg:
		m.busy = false
		m.events = nil
		if msg.err != nil {
			m.addNote(describe(msg.err), true)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	if out, ok := m.router.Execute(m.ctx, m.sess.ID(), text); ok {
		m.addNote(strings.TrimSpace(out), false)
		m.refresh()
		return m, nil
	}
	if m.busy {
		m.addNote("Still answering, press ctrl+c to stop.", true)
		m.refresh()
		return m, nil
	}

	m.busy = true
	m.events = m.startTurn(text)
	m.refresh()
	return m, waitFor(m.events)
}

// startTurn runs the pipeline off the UI goroutine. Tokens and the result are
// delivered as messages on the returned channel, which closes after the result.
func (m Model) startTurn(question string) <-chan tea.Msg {
	ch := make(chan tea.Msg, 64)
	go func() {
		defer close(ch)
		sink := core.TokenSinkFunc(func(text string) { ch <- tokenMsg(text) })
		res, err := m.asker.Ask(m.ctx, m.sess, question, sink)
		ch <- turnDoneMsg{res: res, err: err}
	}()
	return ch
}

func waitFor(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) addNote(text string, isErr bool) {
	m.notes = append(m.notes, note{after: len(m.sess.Snapshot().Messages), text: text, err: isErr})
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m Model) transcript() string {
	st := m.sess.Snapshot()
	wrap := lipgloss.NewStyle().Width(max(m.viewport.Width-2, 20))

	var b strings.Builder
	notes := m.notes
	flushNotes := func(upTo int) {
		for len(notes) > 0 && notes[0].after <= upTo {
			style := ui.SystemStyle
			if notes[0].err {
				style = ui.ErrorStyle
			}
			b.WriteString(style.Render(wrap.Render(notes[0].text)) + "\n\n")
			notes = notes[1:]
		}
	}

	flushNotes(0)
	for i, msg := range st.Messages {
		b.WriteString(renderMessage(msg, wrap))
		flushNotes(i + 1)
	}
	if st.Pending != nil {
		b.WriteString(ui.AssistantStyle.Render("docchat") + "\n")
		b.WriteString(wrap.Render(st.Pending.Text) + "▍\n\n")
	}
	flushNotes(len(st.Messages) + 1)
	return b.String()
}

func renderMessage(msg core.Message, wrap lipgloss.Style) string {
	var b strings.Builder
	if msg.Role == core.RoleUser {
		b.WriteString(ui.UserStyle.Render("you") + "\n")
	} else {
		b.WriteString(ui.AssistantStyle.Render("docchat") + "\n")
	}
	b.WriteString(wrap.Render(msg.Text) + "\n")
	for i, src := range msg.Sources {
		label := src.Metadata.Source
		if label == "" {
			label = "document"
		}
		b.WriteString(ui.SourceStyle.Render(fmt.Sprintf("[%d] %s (%.2f)", i+1, label, src.Score)) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading...\n"
	}

	status := ui.DescStyle.Render(m.title + "  ·  enter to send, esc to quit")
	if m.busy {
		phase := m.sess.Snapshot().Phase
		status = m.spinner.View() + " " + ui.DescStyle.Render(phaseLabel(phase)+"  ·  ctrl+c to stop")
	}
	return m.viewport.View() + "\n" + status + "\n" + m.input.View()
}

func phaseLabel(p session.Phase) string {
	switch p {
	case session.PhaseAwaitingCondensation:
		return "rephrasing question"
	case session.PhaseAwaitingRetrieval:
		return "searching document"
	case session.PhaseStreaming:
		return "typing"
	default:
		return "working"
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrAborted):
		return "Stopped."
	case errors.Is(err, core.ErrGenerationInterrupted):
		return "The answer was interrupted: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// Run blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
