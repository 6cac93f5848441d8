package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep computes derived values and drops wizard-only keys
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	finalize(state)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

func finalize(state *InstallState) {
	env := state.EnvVars

	if env["DOCCHAT_TELEGRAM_TOKEN"] != "" {
		env["DOCCHAT_TELEGRAM_ENABLED"] = "true"
	} else {
		env["DOCCHAT_TELEGRAM_ENABLED"] = "false"
	}

	switch env["DOCCHAT_EMBEDDING_PROVIDER"] {
	case "openai":
		env["DOCCHAT_EMBEDDING_MODEL"] = "text-embedding-ada-002"
	case "ollama":
		env["DOCCHAT_EMBEDDING_MODEL"] = "nomic-embed-text"
		if env["DOCCHAT_EMBEDDING_BASE_URL"] == "" && env["DOCCHAT_OLLAMA_BASE_URL"] != "" {
			env["DOCCHAT_EMBEDDING_BASE_URL"] = env["DOCCHAT_OLLAMA_BASE_URL"]
		}
	}

	if env["DOCCHAT_DEBUG"] == "" {
		env["DOCCHAT_DEBUG"] = "0"
	}

	delete(env, "DOCCHAT_CHANNEL")
}
