// Package models resolves, downloads and installs ggml speech models.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const DefaultModel = "tiny"

type Model struct {
	Name     string
	FileName string
	URL      string
	SHA256   string
}

// Kind tells how a model reference was resolved.
type Kind int

const (
	KindNamed Kind = iota
	KindFile
)

type Resolved struct {
	Kind  Kind
	Model Model
	Path  string
	// Missing is set for named models not yet present in the model directory.
	Missing bool
}

var registry = map[string]Model{
	"tiny": {
		Name:     "tiny",
		FileName: "ggml-tiny.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
		SHA256:   "be07e048e1e599ad46341c8d2a135645097a538221678b7acdd1b1919c6e1b21",
	},
	"base": {
		Name:     "base",
		FileName: "ggml-base.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
		SHA256:   "60ed5bc3dd14eea856493d334349b405782ddcaf0028d4b5df4088345fba2efe",
	},
	"small": {
		Name:     "small",
		FileName: "ggml-small.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		SHA256:   "1be3a9b2063867b937e64e2ec7483364a79917e157fa98c5d94b5c1fffea987b",
	},
	"medium": {
		Name:     "medium",
		FileName: "ggml-medium.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
		SHA256:   "6c14d5adee5f86394037b4e4e8b59f1673b6cee10e3cf0b11bbdbee79c156208",
	},
	"large-v3": {
		Name:     "large-v3",
		FileName: "ggml-large-v3.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
		SHA256:   "64d182b440b98d5203c4f9bd541544d84c605196c4f7b845dfa11fb23594d1e2",
	},
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Lookup(name string) (Model, bool) {
	model, ok := registry[name]
	return model, ok
}

// Resolve maps a model name or file path to a location on disk. Named
// models live in modelDir under their registry file name; anything that
// looks like a path must already exist.
func Resolve(ref, modelDir string) (Resolved, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = DefaultModel
	}

	if model, ok := Lookup(ref); ok {
		if strings.TrimSpace(modelDir) == "" {
			return Resolved{}, errors.New("model directory must not be empty for named model")
		}

		path := filepath.Join(modelDir, model.FileName)
		missing, err := isMissing(path)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Kind: KindNamed, Model: model, Path: path, Missing: missing}, nil
	}

	if !looksLikePath(ref) {
		return Resolved{}, fmt.Errorf("unknown model %q (known models: %s)", ref, strings.Join(Names(), ", "))
	}

	path := filepath.Clean(ref)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Resolved{}, fmt.Errorf("model file does not exist: %s", path)
		}
		return Resolved{}, fmt.Errorf("stat model file: %w", err)
	}
	if info.IsDir() {
		return Resolved{}, fmt.Errorf("model path is a directory: %s", path)
	}

	return Resolved{Kind: KindFile, Path: path}, nil
}

func isMissing(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat model path: %w", err)
	}
	return info.Size() == 0, nil
}

func looksLikePath(input string) bool {
	lower := strings.ToLower(input)
	return strings.ContainsRune(input, os.PathSeparator) ||
		strings.HasSuffix(lower, ".bin") ||
		strings.HasSuffix(lower, ".gguf")
}
