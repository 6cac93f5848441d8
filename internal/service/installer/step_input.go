package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep stores one line of text under envKey. Secret inputs are masked.
type InputStep struct {
	input    textinput.Model
	title    string
	envKey   string
	fallback string
	optional bool
	skip     func(*InstallState) bool
}

type inputOption func(*InputStep)

func secret() inputOption {
	return func(s *InputStep) {
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '•'
	}
}

func optional() inputOption {
	return func(s *InputStep) { s.optional = true }
}

// withDefault is stored when the input is left empty.
func withDefault(value string) inputOption {
	return func(s *InputStep) {
		s.fallback = value
		s.optional = true
	}
}

func skipUnless(fn func(*InstallState) bool) inputOption {
	return func(s *InputStep) {
		s.skip = func(st *InstallState) bool { return !fn(st) }
	}
}

func NewInputStep(title, envKey, placeholder string, opts ...inputOption) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = placeholder

	s := &InputStep{input: ti, title: title, envKey: envKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.skip != nil && s.skip(state) {
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" {
			val = s.fallback
		}
		if val == "" && !s.optional {
			return s, cmd
		}
		if val != "" {
			state.EnvVars[s.envKey] = val
		}
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := ""
	if s.optional {
		hint = " (optional, press Enter to skip)"
	}
	return fmt.Sprintf("Enter %s%s:\n\n%s\n\n(press enter to confirm)\n", s.title, hint, s.input.View())
}
