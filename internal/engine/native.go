//go:build whispercpp

package engine

/*
#cgo LDFLAGS: -lwhisper -lstdc++ -lm

#include <stdlib.h>
#include <whisper.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"os"
	"unsafe"
)

// NativeAvailable reports whether the native whisper backend is compiled in.
func NativeAvailable() bool { return true }

// Native loads models through the whisper.cpp C API.
type Native struct{}

// NewNative returns the whisper.cpp engine.
func NewNative() (Engine, error) {
	if C.WHISPER_SAMPLE_RATE != SampleRate {
		return nil, fmt.Errorf("engine: linked whisper.cpp expects %d Hz, built for %d Hz", int(C.WHISPER_SAMPLE_RATE), SampleRate)
	}
	return Native{}, nil
}

func (Native) Load(modelPath string, params ContextParams) (Context, error) {
	if modelPath == "" {
		return nil, errors.New("engine: model path required")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("engine: model not readable: %w", err)
	}

	cPath := C.CString(modelPath)
	defer C.free(unsafe.Pointer(cPath))

	cParams := C.whisper_context_default_params()
	cParams.use_gpu = C.bool(params.UseGPU)

	ctx := C.whisper_init_from_file_with_params(cPath, cParams)
	if ctx == nil {
		return nil, fmt.Errorf("engine: failed to initialise context for %s", modelPath)
	}
	return &nativeContext{ctx: ctx}, nil
}

type nativeContext struct {
	ctx *C.struct_whisper_context
}

func (c *nativeContext) Decode(cfg DecodeConfig, samples []float32) error {
	if c.ctx == nil {
		return errors.New("engine: context released")
	}

	strategy := C.enum_whisper_sampling_strategy(C.WHISPER_SAMPLING_GREEDY)
	if cfg.Strategy == StrategyBeamSearch {
		strategy = C.WHISPER_SAMPLING_BEAM_SEARCH
	}

	params := C.whisper_full_default_params(strategy)
	params.print_realtime = C.bool(cfg.PrintRealtime)
	params.print_progress = C.bool(cfg.PrintProgress)
	params.print_timestamps = C.bool(cfg.PrintTimestamps)
	params.print_special = C.bool(cfg.PrintSpecial)
	params.translate = C.bool(cfg.Translate)
	params.no_context = C.bool(cfg.NoContext)
	params.single_segment = C.bool(cfg.SingleSegment)
	params.temperature = C.float(cfg.Temperature)
	if cfg.Threads > 0 {
		params.n_threads = C.int(cfg.Threads)
	}

	// A NULL language lets whisper.cpp run its own detection.
	params.language = nil
	if !cfg.AutoDetectLanguage() {
		cLang := C.CString(cfg.Language)
		defer C.free(unsafe.Pointer(cLang))
		params.language = cLang
	}

	var cSamples *C.float
	if len(samples) > 0 {
		cSamples = (*C.float)(unsafe.Pointer(&samples[0]))
	}

	if ret := C.whisper_full(c.ctx, params, cSamples, C.int(len(samples))); ret != 0 {
		return &DecodeError{Code: int(ret)}
	}
	return nil
}

func (c *nativeContext) SegmentCount() int {
	if c.ctx == nil {
		return 0
	}
	return int(C.whisper_full_n_segments(c.ctx))
}

func (c *nativeContext) SegmentText(i int) string {
	if c.ctx == nil {
		return ""
	}
	text := C.whisper_full_get_segment_text(c.ctx, C.int(i))
	if text == nil {
		return ""
	}
	return C.GoString(text)
}

func (c *nativeContext) Release() {
	if c.ctx != nil {
		C.whisper_free(c.ctx)
		c.ctx = nil
	}
}
