package transcribe

import (
	"errors"
	"fmt"
)

const (
	MsgNotInitialized    = "local speech model is not initialized"
	MsgRecognitionFailed = "local speech recognition failed"
)

var (
	// ErrNotInitialized is returned by Transcribe when no model is loaded.
	ErrNotInitialized = errors.New(MsgNotInitialized)
	// ErrRecognitionFailed wraps a failed engine decode.
	ErrRecognitionFailed = errors.New(MsgRecognitionFailed)
	// ErrModelLoad matches every *ModelLoadError.
	ErrModelLoad = errors.New("load speech model")
)

// ModelLoadError reports a model that could not be loaded into a context.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load speech model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

func (e *ModelLoadError) Is(target error) bool { return target == ErrModelLoad }

// UserMessage maps an error from Transcribe to the text shown to users.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotInitialized):
		return MsgNotInitialized
	default:
		return MsgRecognitionFailed
	}
}
