package models

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// InstallBundled copies a model shipped alongside the application into
// destDir and returns the installed path. An existing non-empty copy is
// kept as is. The copy goes through a temporary file so an interrupted
// install never leaves a truncated model behind.
func InstallBundled(src, destDir string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", errors.New("bundled model path is required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", errors.New("model directory must not be empty")
	}

	dest := filepath.Join(destDir, filepath.Base(src))
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		return dest, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open bundled model: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", destDir, err)
	}

	tmp, err := os.CreateTemp(destDir, filepath.Base(src)+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		_ = tmp.Close()
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, in)
	if err != nil {
		return "", fmt.Errorf("copy bundled model: %w", err)
	}
	if written == 0 {
		return "", fmt.Errorf("bundled model %s is empty", src)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("move model into place: %w", err)
	}

	success = true
	return dest, nil
}
