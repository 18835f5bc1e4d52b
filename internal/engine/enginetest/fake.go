// Package enginetest provides a scriptable in-memory engine for tests.
package enginetest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fmueller/voxbridge/internal/engine"
)

// Decode is one recorded Decode call.
type Decode struct {
	ModelPath string
	Config    engine.DecodeConfig
	Samples   []float32
}

// Engine is a fake engine.Engine. Configure the exported fields before use.
type Engine struct {
	// Segments is returned by every successful decode.
	Segments []string
	// DecodeCodes are consumed one per Decode call; a non-zero entry fails
	// that call with *engine.DecodeError. Calls past the end succeed.
	DecodeCodes []int
	// FailLoad lists model paths whose Load fails.
	FailLoad map[string]bool
	// PanicOnDecode makes Decode panic.
	PanicOnDecode bool
	// DecodeDelay keeps each Decode busy for the given duration.
	DecodeDelay time.Duration

	mu         sync.Mutex
	liveAtLoad []int
	loads      []engine.ContextParams
	paths      []string
	live       int
	released   int
	decodes    []Decode
	inFlight   int
	overlap    bool
}

var _ engine.Engine = (*Engine)(nil)

// ErrLoad is returned for paths listed in FailLoad.
var ErrLoad = errors.New("enginetest: load failed")

func (e *Engine) Load(modelPath string, params engine.ContextParams) (engine.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailLoad[modelPath] {
		return nil, fmt.Errorf("%w: %s", ErrLoad, modelPath)
	}

	e.liveAtLoad = append(e.liveAtLoad, e.live)
	e.loads = append(e.loads, params)
	e.paths = append(e.paths, modelPath)
	e.live++
	return &fakeContext{engine: e, modelPath: modelPath}, nil
}

// Loads returns the params of every successful Load.
func (e *Engine) Loads() []engine.ContextParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.ContextParams(nil), e.loads...)
}

// LiveAtLoad returns, for every Load call, how many contexts were still
// live when it started.
func (e *Engine) LiveAtLoad() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.liveAtLoad...)
}

// ModelPaths returns the model path of every successful Load.
func (e *Engine) ModelPaths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.paths...)
}

// Live reports contexts loaded but not yet released.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

// Released reports how many contexts were released.
func (e *Engine) Released() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.released
}

// Decodes returns every recorded Decode call in order.
func (e *Engine) Decodes() []Decode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Decode(nil), e.decodes...)
}

// Overlapped reports whether two decodes ever ran at the same time.
func (e *Engine) Overlapped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.overlap
}

type fakeContext struct {
	engine    *Engine
	modelPath string
	released  bool
	segments  []string
}

func (c *fakeContext) Decode(cfg engine.DecodeConfig, samples []float32) error {
	e := c.engine

	e.mu.Lock()
	if c.released {
		e.mu.Unlock()
		return errors.New("enginetest: decode on released context")
	}
	e.inFlight++
	if e.inFlight > 1 {
		e.overlap = true
	}
	e.decodes = append(e.decodes, Decode{
		ModelPath: c.modelPath,
		Config:    cfg,
		Samples:   append([]float32(nil), samples...),
	})
	code := 0
	if len(e.DecodeCodes) > 0 {
		code = e.DecodeCodes[0]
		e.DecodeCodes = e.DecodeCodes[1:]
	}
	segments := append([]string(nil), e.Segments...)
	panicking := e.PanicOnDecode
	delay := e.DecodeDelay
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight--
		e.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}

	if panicking {
		panic("enginetest: decode panic")
	}

	c.segments = nil
	if code != 0 {
		return &engine.DecodeError{Code: code}
	}
	c.segments = segments
	return nil
}

func (c *fakeContext) SegmentCount() int {
	return len(c.segments)
}

func (c *fakeContext) SegmentText(i int) string {
	if i < 0 || i >= len(c.segments) {
		return ""
	}
	return c.segments[i]
}

func (c *fakeContext) Release() {
	e := c.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if c.released {
		return
	}
	c.released = true
	e.live--
	e.released++
}
