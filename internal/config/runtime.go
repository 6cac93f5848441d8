package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("DOCCHAT_RUNTIME_PATH"))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = ".docchat"
	}
	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

// LoadEnvFile loads <runtime>/.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile() (string, error) {
	path := filepath.Join(GetRuntimePath(), ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		return path, fmt.Errorf("load %s: %w", path, err)
	}
	return path, nil
}

// EnsureRuntimeDir creates the runtime directory with owner-only permissions.
func EnsureRuntimeDir() (string, error) {
	path := GetRuntimePath()
	if err := os.MkdirAll(path, 0o700); err != nil {
		return path, fmt.Errorf("create runtime dir: %w", err)
	}
	return path, nil
}
