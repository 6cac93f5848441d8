package installer

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrInterrupted = errors.New("docchat setup interrupted")

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Step is one screen of the wizard. Update returns nil when the step is done.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

type item struct {
	id    string
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.id }

type (
	modelsMsg []list.Item
	errMsg    error
	// nextMsg lets a step that may be skipped decide without waiting for input.
	nextMsg struct{}
)

type wizard struct {
	steps   []Step
	current int
	state   *InstallState
	bar     progress.Model

	quitting bool
	width    int
	height   int
}

func newWizard(steps []Step) wizard {
	return wizard{
		steps: steps,
		state: NewInstallState(),
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
	}
}

func (w wizard) Init() tea.Cmd {
	if len(w.steps) == 0 {
		return tea.Quit
	}
	return w.steps[0].Init()
}

func (w wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width, w.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			w.quitting = true
			return w, tea.Quit
		}
	}

	if w.done() {
		return w, tea.Quit
	}

	next, cmd := w.steps[w.current].Update(msg, w.state, w.width, w.height)
	if next != nil {
		w.steps[w.current] = next
		return w, cmd
	}

	w.current++
	if w.done() {
		return w, tea.Quit
	}
	return w, w.steps[w.current].Init()
}

func (w wizard) done() bool {
	return w.current >= len(w.steps)
}

func (w wizard) View() string {
	switch {
	case w.quitting:
		return "Setup cancelled.\n"
	case w.done():
		return "Configuration complete!\n"
	}

	header := titleStyle.Render("Setting up docchat 📄")
	bar := w.bar.ViewAs(float64(w.current) / float64(len(w.steps)))
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s",
		header,
		bar,
		w.steps[w.current].View(w.state),
		hintStyle.Render("ctrl+c to cancel"),
	)
}

// RunWizard collects the configuration interactively and writes <runtime>/.env.
func RunWizard() (*InstallState, error) {
	final, err := tea.NewProgram(newWizard(getSteps()), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}

	w := final.(wizard)
	if w.quitting || !w.done() {
		return nil, ErrInterrupted
	}
	return w.state, nil
}
