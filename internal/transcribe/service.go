// Package transcribe owns the speech model lifecycle and drives one decode
// pass per call: it keeps at most one engine context alive, normalizes PCM,
// builds the decoding configuration and assembles the decoded segments.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fmueller/voxbridge/internal/audio"
	"github.com/fmueller/voxbridge/internal/engine"
	"go.uber.org/zap"
)

// DefaultThreads is the decode worker count when Options.Threads is unset.
const DefaultThreads = 4

// Options configures a Service.
type Options struct {
	Engine engine.Engine
	// Threads is the decode worker count; zero means DefaultThreads.
	Threads int
	// UseGPU enables GPU acceleration when loading models. Off by default
	// so results do not depend on the device.
	UseGPU bool
	Logger *zap.Logger
}

// Transcript is the result of a successful Transcribe call.
type Transcript struct {
	// Text is every segment concatenated in order. Empty for silence.
	Text string
	// Segments holds the non-empty segment texts in order.
	Segments []string
}

// Service serializes access to a single engine context. All methods are
// safe for concurrent use; calls run one at a time.
type Service struct {
	opts Options
	log  *zap.Logger

	mu        sync.Mutex
	ctx       engine.Context
	modelPath string
}

// New returns an uninitialized Service.
func New(opts Options) (*Service, error) {
	if opts.Engine == nil {
		return nil, errors.New("transcribe: engine is required")
	}
	if opts.Threads < 0 {
		return nil, fmt.Errorf("transcribe: threads must not be negative, got %d", opts.Threads)
	}
	if opts.Threads == 0 {
		opts.Threads = DefaultThreads
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{opts: opts, log: opts.Logger.Named("transcribe")}, nil
}

// Initialize loads modelPath, releasing any previously loaded model first.
// On failure the service is left uninitialized.
func (s *Service) Initialize(modelPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked(modelPath)
}

// EnsureInitialized loads modelPath unless it is already the live model.
func (s *Service) EnsureInitialized(modelPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil && s.modelPath == modelPath {
		return nil
	}
	return s.initializeLocked(modelPath)
}

// Ready reports whether a model is loaded.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx != nil
}

// ModelPath returns the path of the loaded model, or "" if none.
func (s *Service) ModelPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelPath
}

// Close releases the loaded model. It is safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
	return nil
}

// Transcribe decodes mono 16-bit PCM and returns the concatenated segment
// text. The declared sampleRate is only checked against engine.SampleRate
// and logged on mismatch; samples are never resampled. An empty
// languageHint lets the engine detect the language.
//
// ctx is consulted once before decoding starts; a running decode is not
// interrupted.
func (s *Service) Transcribe(ctx context.Context, samples []int16, sampleRate int, languageHint string) (Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		s.log.Error("transcribe called before a model was loaded")
		return Transcript{}, ErrNotInitialized
	}

	if sampleRate != engine.SampleRate {
		s.log.Warn("unexpected sample rate; decoding without resampling",
			zap.Int("sample_rate", sampleRate),
			zap.Int("expected", engine.SampleRate),
		)
	}

	if err := ctx.Err(); err != nil {
		return Transcript{}, err
	}

	pcm := audio.Normalize(samples)
	cfg := decodeConfig(s.opts, languageHint)

	s.log.Info("running decode",
		zap.Int("samples", len(pcm)),
		zap.String("language", languageLabel(cfg)),
		zap.Int("threads", cfg.Threads),
	)
	started := time.Now()

	if err := s.decode(cfg, pcm); err != nil {
		var decodeErr *engine.DecodeError
		if errors.As(err, &decodeErr) {
			s.log.Error("decode failed", zap.Int("code", decodeErr.Code), zap.Duration("elapsed", time.Since(started)))
		} else {
			s.log.Error("decode failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		}
		return Transcript{}, fmt.Errorf("%w: %w", ErrRecognitionFailed, err)
	}

	transcript, count, err := s.collect()
	if err != nil {
		s.log.Error("reading segments failed", zap.Error(err))
		return Transcript{}, fmt.Errorf("%w: %w", ErrRecognitionFailed, err)
	}

	s.log.Info("transcription done",
		zap.Int("segments", count),
		zap.Int("chars", len(transcript.Text)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return transcript, nil
}

func (s *Service) initializeLocked(modelPath string) error {
	if s.ctx != nil {
		s.log.Info("releasing previous model", zap.String("model_path", s.modelPath))
	}
	s.releaseLocked()

	params := engine.ContextParams{UseGPU: s.opts.UseGPU}
	ctx, err := s.load(modelPath, params)
	if err == nil && ctx == nil {
		err = errors.New("engine returned no context")
	}
	if err != nil {
		s.log.Error("failed to load model", zap.String("model_path", modelPath), zap.Error(err))
		return &ModelLoadError{Path: modelPath, Err: err}
	}

	s.ctx = ctx
	s.modelPath = modelPath
	s.log.Info("model loaded", zap.String("model_path", modelPath), zap.Bool("use_gpu", params.UseGPU))
	return nil
}

func (s *Service) releaseLocked() {
	if s.ctx == nil {
		return
	}
	ctx := s.ctx
	s.ctx = nil
	s.modelPath = ""

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("engine panicked while releasing model", zap.Any("panic", r))
		}
	}()
	ctx.Release()
}

func (s *Service) load(modelPath string, params engine.ContextParams) (ctx engine.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx, err = nil, fmt.Errorf("engine panicked: %v", r)
		}
	}()
	return s.opts.Engine.Load(modelPath, params)
}

func (s *Service) decode(cfg engine.DecodeConfig, pcm []float32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panicked: %v", r)
		}
	}()
	return s.ctx.Decode(cfg, pcm)
}

func (s *Service) collect() (transcript Transcript, count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panicked: %v", r)
		}
	}()

	count = s.ctx.SegmentCount()
	var b strings.Builder
	for i := 0; i < count; i++ {
		text := s.ctx.SegmentText(i)
		if text == "" {
			continue
		}
		b.WriteString(text)
		transcript.Segments = append(transcript.Segments, text)
	}
	transcript.Text = b.String()
	return transcript, count, nil
}

func languageLabel(cfg engine.DecodeConfig) string {
	if cfg.AutoDetectLanguage() {
		return "auto"
	}
	return cfg.Language
}
