// Package platform resolves per-user storage locations.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "voxbridge"

// Env carries the inputs that decide default directories.
type Env struct {
	GOOS          string
	HomeDir       string
	XDGDataHome   string
	XDGConfigHome string
}

// CurrentEnv reads Env from the running process.
func CurrentEnv() (Env, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Env{}, fmt.Errorf("resolve user home: %w", err)
	}
	return Env{
		GOOS:          runtime.GOOS,
		HomeDir:       homeDir,
		XDGDataHome:   os.Getenv("XDG_DATA_HOME"),
		XDGConfigHome: os.Getenv("XDG_CONFIG_HOME"),
	}, nil
}

func (e Env) ModelDir() (string, error) {
	dataDir, err := e.dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "models"), nil
}

func (e Env) ConfigFile() (string, error) {
	if e.HomeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch e.GOOS {
	case "linux":
		if e.XDGConfigHome != "" {
			return filepath.Join(e.XDGConfigHome, appName, "config.yaml"), nil
		}
		return filepath.Join(e.HomeDir, ".config", appName, "config.yaml"), nil
	case "darwin":
		return filepath.Join(e.HomeDir, "Library", "Application Support", appName, "config.yaml"), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", e.GOOS)
	}
}

func (e Env) dataDir() (string, error) {
	if e.HomeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch e.GOOS {
	case "linux":
		if e.XDGDataHome != "" {
			return filepath.Join(e.XDGDataHome, appName), nil
		}
		return filepath.Join(e.HomeDir, ".local", "share", appName), nil
	case "darwin":
		return filepath.Join(e.HomeDir, "Library", "Application Support", appName), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", e.GOOS)
	}
}

// ResolveModelDir returns override when set, else the default model dir.
func ResolveModelDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	env, err := CurrentEnv()
	if err != nil {
		return "", err
	}
	return env.ModelDir()
}

// DefaultConfigFile returns the default config file location.
func DefaultConfigFile() (string, error) {
	env, err := CurrentEnv()
	if err != nil {
		return "", err
	}
	return env.ConfigFile()
}
