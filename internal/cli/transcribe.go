package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmueller/voxbridge/internal/audio"
	"github.com/fmueller/voxbridge/internal/engine"
	"github.com/fmueller/voxbridge/internal/models"
	"github.com/fmueller/voxbridge/internal/transcribe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type inputOptions struct {
	raw        bool
	sampleRate int
}

func newTranscribeCmd(app *appState) *cobra.Command {
	input := inputOptions{sampleRate: engine.SampleRate}

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>...",
		Short: "Transcribe 16-bit mono PCM audio files",
		Long: "Transcribe 16-bit mono PCM audio files. The model is loaded once and reused for every file.\n" +
			"Input is WAV by default; use --raw for headerless little-endian s16 samples.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTranscribe(cmd.Context(), cmd.OutOrStdout(), args, input)
		},
	}

	cmd.Flags().BoolVar(&input.raw, "raw", input.raw, "Read headerless little-endian signed 16-bit PCM")
	cmd.Flags().IntVar(&input.sampleRate, "sample-rate", input.sampleRate, "Sample rate of --raw input in Hz")
	return cmd
}

func (a *appState) runTranscribe(ctx context.Context, out io.Writer, paths []string, input inputOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	buffers := make([]audio.Buffer, len(paths))
	for i, path := range paths {
		buf, err := readAudio(path, input)
		if err != nil {
			return err
		}
		buffers[i] = buf
	}

	var (
		svc       *transcribe.Service
		modelPath string
	)
	defer func() {
		if svc != nil {
			_ = svc.Close()
		}
	}()

	for i, path := range paths {
		transcript, skipped := a.silenceGateTranscript(path, buffers[i])
		if !skipped {
			if svc == nil {
				var err error
				if svc, modelPath, err = a.openService(ctx); err != nil {
					return err
				}
			}
			if err := svc.EnsureInitialized(modelPath); err != nil {
				return err
			}

			var err error
			transcript, err = a.transcribeBuffer(ctx, svc, path, buffers[i])
			if err != nil {
				return err
			}
		}

		if len(paths) > 1 {
			fmt.Fprintf(out, "%s\t%s\n", path, transcript)
		} else {
			fmt.Fprintln(out, transcript)
		}
		if isBlankTranscript(transcript) {
			a.log().Warn(noSpeechHint(), zap.String("audio", path))
		}
	}

	return nil
}

func readAudio(path string, input inputOptions) (audio.Buffer, error) {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return audio.Buffer{}, fmt.Errorf("audio file not found: %w", err)
	}

	var (
		buf audio.Buffer
		err error
	)
	if input.raw {
		buf, err = audio.ReadRawFile(path, input.sampleRate)
	} else {
		buf, err = audio.ReadWAV(path)
	}
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("read %s: %w", path, err)
	}
	return buf, nil
}

// openService makes the configured model available and builds a service
// for it. The model is loaded on first use.
func (a *appState) openService(ctx context.Context) (*transcribe.Service, string, error) {
	modelPath, err := a.ensureModelAvailable(ctx)
	if err != nil {
		return nil, "", err
	}

	newEngine := a.newEngine
	if newEngine == nil {
		newEngine = engine.NewNative
	}
	eng, err := newEngine()
	if err != nil {
		return nil, "", err
	}

	svc, err := transcribe.New(transcribe.Options{
		Engine:  eng,
		Threads: a.threads,
		UseGPU:  a.useGPU,
		Logger:  a.log(),
	})
	if err != nil {
		return nil, "", err
	}
	return svc, modelPath, nil
}

func (a *appState) transcribeBuffer(ctx context.Context, svc *transcribe.Service, path string, buf audio.Buffer) (string, error) {
	a.log().Info("transcribing...", zap.String("audio", path), zap.Int("sample_rate", buf.SampleRate), zap.String("language", a.language))
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()

	transcript, err := svc.Transcribe(ctx, buf.Samples, buf.SampleRate, languageHint(a.language))
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.String("audio", path), zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return "", fmt.Errorf("transcribe %s: %w", path, err)
	}
	a.log().Info("transcription finished", zap.String("audio", path), zap.Duration("elapsed", time.Since(started)))

	return strings.TrimSpace(transcript.Text), nil
}

func (a *appState) silenceGateTranscript(path string, buf audio.Buffer) (string, bool) {
	if !a.silenceGate {
		return "", false
	}

	silent, metrics := audio.IsSilent(buf.Samples, a.silenceDBFS)
	if !silent {
		return "", false
	}

	a.log().Info(
		"audio considered silent; skipping transcription",
		zap.String("audio", path),
		zap.Float64("rms_dbfs", metrics.RMSdBFS),
		zap.Float64("peak_dbfs", metrics.PeakdBFS),
		zap.Float64("threshold_dbfs", a.silenceDBFS),
	)

	return blankAudioToken, true
}

func (a *appState) ensureModelAvailable(ctx context.Context) (string, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return "", err
	}

	resolved, err := models.Resolve(a.model, modelDir)
	if err != nil {
		return "", err
	}

	if !resolved.Missing {
		return resolved.Path, nil
	}

	name := resolved.Model.Name
	if !a.autoDownload {
		return "", fmt.Errorf("model %q is missing at %s; run `voxbridge setup --model %s` or use --auto-download=true", name, resolved.Path, name)
	}

	a.log().Info("model not found, downloading", zap.String("model", name), zap.String("destination", resolved.Path))
	if err := models.FetchModel(ctx, resolved, models.DownloadOptions{
		NoProgress: a.noProgress,
		Logger:     a.log(),
	}); err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("download model %q: %w", name, err)
	}

	return resolved.Path, nil
}
