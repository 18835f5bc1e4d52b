// Package engine defines the narrow boundary to the on-device recognition
// engine: load a model into a context, run a full decode over normalized
// samples, read back the decoded segments and release the context.
package engine

import (
	"errors"
	"fmt"
)

// SampleRate is the only input rate the engine decodes correctly.
const SampleRate = 16000

// LanguageAuto asks the engine to detect the spoken language itself.
// Bindings translate it to their own "unset" value.
const LanguageAuto = "auto"

// ErrNativeUnavailable is returned when the binary was built without the
// native whisper.cpp backend.
var ErrNativeUnavailable = errors.New("engine: native backend unavailable (build with -tags whispercpp)")

// Engine loads recognition models.
type Engine interface {
	Load(modelPath string, params ContextParams) (Context, error)
}

// Context is a loaded model ready to decode audio. A Context is not safe
// for concurrent use.
type Context interface {
	// Decode runs a full decode pass. A non-nil error should be a
	// *DecodeError when the engine reported a status code.
	Decode(cfg DecodeConfig, samples []float32) error
	// SegmentCount reports the segments produced by the last Decode.
	SegmentCount() int
	// SegmentText returns the text of segment i from the last Decode.
	SegmentText(i int) string
	// Release frees the context. The Context must not be used afterwards.
	Release()
}

// ContextParams controls how a model is loaded.
type ContextParams struct {
	UseGPU bool
}

// Strategy selects the decoding search.
type Strategy int

const (
	StrategyGreedy Strategy = iota
	StrategyBeamSearch
)

func (s Strategy) String() string {
	switch s {
	case StrategyGreedy:
		return "greedy"
	case StrategyBeamSearch:
		return "beam_search"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// DecodeConfig is the per-call decoding configuration.
type DecodeConfig struct {
	Strategy    Strategy
	Temperature float32
	Threads     int

	Translate     bool
	NoContext     bool
	SingleSegment bool

	PrintProgress   bool
	PrintRealtime   bool
	PrintTimestamps bool
	PrintSpecial    bool

	// Language is a language code such as "en", or LanguageAuto.
	Language string
}

// AutoDetectLanguage reports whether the engine should detect the language.
// An empty Language is treated as LanguageAuto.
func (c DecodeConfig) AutoDetectLanguage() bool {
	return c.Language == LanguageAuto || c.Language == ""
}

// DecodeError carries the status code returned by a failed decode.
type DecodeError struct {
	Code int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("engine: decode failed with code %d", e.Code)
}
