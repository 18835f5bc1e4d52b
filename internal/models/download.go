package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// DownloadOptions tunes how FetchModel talks to the model host.
type DownloadOptions struct {
	Retries      int
	RetryBackoff time.Duration
	NoProgress   bool
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// ChecksumError reports a model file whose SHA-256 differs from the
// registry pin.
type ChecksumError struct {
	Model    string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("model %s: checksum mismatch: expected %s, got %s", e.Model, e.Expected, e.Actual)
}

// statusError is an unexpected HTTP status from the model host. 4xx
// answers other than 429 are final.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

func (e *statusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// FetchModel downloads a named registry model into resolved.Path. The file
// only appears at its final path once its checksum matched.
func FetchModel(ctx context.Context, resolved Resolved, opts DownloadOptions) error {
	if resolved.Kind != KindNamed {
		return fmt.Errorf("cannot download model file %s", resolved.Path)
	}
	if resolved.Model.URL == "" {
		return fmt.Errorf("model %s has no download URL", resolved.Model.Name)
	}
	if resolved.Path == "" {
		return fmt.Errorf("model %s has no destination path", resolved.Model.Name)
	}

	d := newModelDownload(resolved, opts)
	if err := os.MkdirAll(filepath.Dir(d.dest), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	return d.run(ctx)
}

// VerifyChecksum compares the SHA-256 of the file at path with expected. An
// empty expected checksum always passes.
func VerifyChecksum(path, expected string) error {
	expected = normalizeSum(expected)
	if expected == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}

	if actual := hex.EncodeToString(h.Sum(nil)); actual != expected {
		return &ChecksumError{Model: filepath.Base(path), Expected: expected, Actual: actual}
	}
	return nil
}

type modelDownload struct {
	model    Model
	dest     string
	expected string
	opts     DownloadOptions
	log      *zap.Logger
}

func newModelDownload(resolved Resolved, opts DownloadOptions) *modelDownload {
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 300 * time.Millisecond
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &modelDownload{
		model:    resolved.Model,
		dest:     resolved.Path,
		expected: normalizeSum(resolved.Model.SHA256),
		opts:     opts,
		log:      opts.Logger.With(zap.String("model", resolved.Model.Name)),
	}
}

func (d *modelDownload) run(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= d.opts.Retries; attempt++ {
		if attempt > 1 {
			d.log.Warn("retrying model download", zap.Int("attempt", attempt), zap.Int("max", d.opts.Retries), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * d.opts.RetryBackoff):
			}
		}

		lastErr = d.attempt(ctx)
		if lastErr == nil {
			d.log.Info("model downloaded", zap.String("path", d.dest))
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}

		var status *statusError
		if errors.As(lastErr, &status) && !status.retryable() {
			break
		}
	}

	return fmt.Errorf("model %s: %w", d.model.Name, lastErr)
}

// attempt streams the model into a temp file next to dest and renames it
// into place once the checksum matched.
func (d *modelDownload) attempt(ctx context.Context) error {
	body, size, err := d.open(ctx)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(d.dest), filepath.Base(d.dest)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	sum := sha256.New()
	if err := d.copyBody(io.MultiWriter(tmp, sum), body, size); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := d.check(sum); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, d.dest); err != nil {
		return fmt.Errorf("move model into place: %w", err)
	}
	return nil
}

func (d *modelDownload) open(ctx context.Context) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.model.URL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "voxbridge/1")

	resp, err := d.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("download request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, &statusError{Code: resp.StatusCode}
	}
	return resp.Body, resp.ContentLength, nil
}

func (d *modelDownload) copyBody(w io.Writer, body io.Reader, size int64) error {
	if progressWanted(d.opts.NoProgress, size) {
		bar := progressbar.NewOptions64(
			size,
			progressbar.OptionSetDescription("downloading "+d.model.FileName),
			progressbar.OptionSetWidth(20),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		w = io.MultiWriter(w, bar)
	}

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("download body: %w", err)
	}
	return nil
}

func (d *modelDownload) check(sum hash.Hash) error {
	if d.expected == "" {
		return nil
	}
	if actual := hex.EncodeToString(sum.Sum(nil)); actual != d.expected {
		return &ChecksumError{Model: d.model.Name, Expected: d.expected, Actual: actual}
	}
	return nil
}

func normalizeSum(sum string) string {
	return strings.ToLower(strings.TrimSpace(sum))
}

func progressWanted(noProgress bool, contentLength int64) bool {
	if noProgress || contentLength <= 0 {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
