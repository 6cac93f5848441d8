package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/sandevgo/docchat/internal/config"
)

// SaveEnvStep writes the collected configuration to the runtime .env file
type SaveEnvStep struct {
	err   error
	saved bool
	path  string
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	s.path, s.err = SaveEnv(state)
	if s.err != nil {
		return s, nil
	}
	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved to " + s.path + "\n"
	}
	return "Saving configuration...\n"
}

// SaveEnv writes state to <runtime>/.env, refusing to overwrite an existing file.
func SaveEnv(state *InstallState) (string, error) {
	dir, err := config.EnsureRuntimeDir()
	if err != nil {
		return "", err
	}
	envPath := filepath.Join(dir, ".env")

	if _, err := os.Stat(envPath); err == nil {
		return envPath, fmt.Errorf(".env file already exists at %s", envPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return envPath, err
	}

	if err := godotenv.Write(state.EnvVars, envPath); err != nil {
		return envPath, fmt.Errorf("write %s: %w", envPath, err)
	}
	if err := os.Chmod(envPath, 0o600); err != nil {
		return envPath, err
	}
	return envPath, nil
}
