package cli

import (
	"fmt"
	"os"

	"github.com/fmueller/voxbridge/internal/config"
	"github.com/fmueller/voxbridge/internal/engine"
	"github.com/fmueller/voxbridge/internal/logging"
	"github.com/fmueller/voxbridge/internal/platform"
	"github.com/fmueller/voxbridge/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type appState struct {
	configPath   string
	verbose      bool
	jsonLogs     bool
	noProgress   bool
	logLevel     string
	model        string
	modelDir     string
	language     string
	autoDownload bool
	threads      int
	useGPU       bool
	silenceGate  bool
	silenceDBFS  float64

	logger *zap.Logger

	newEngine func() (engine.Engine, error)
}

func newAppState() *appState {
	defaults := config.Default()
	return &appState{
		logLevel:     defaults.LogLevel,
		model:        defaults.Model,
		modelDir:     defaults.ModelDir,
		language:     defaults.Language,
		autoDownload: defaults.AutoDownload,
		threads:      defaults.Engine.Threads,
		useGPU:       defaults.Engine.UseGPU,
		silenceGate:  defaults.Silence.Gate,
		silenceDBFS:  defaults.Silence.ThresholdDBFS,
		newEngine:    engine.NewNative,
	}
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(newAppState())
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "voxbridge",
		Short:         "Transcribe PCM audio with an on-device whisper model",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.applyConfig(cmd.Flags()); err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{Level: app.logLevel, Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.language = sanitizeLanguage(app.language)
			app.logger = logger
			return nil
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", app.configPath, "Config file (default: per-user config.yaml)")
	flags.BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	flags.BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
	flags.StringVar(&app.logLevel, "log-level", app.logLevel, "Log level: debug|info|warn|error")
	flags.BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
	flags.StringVar(&app.model, "model", app.model, "Model name or model file path")
	flags.StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
	flags.StringVar(&app.language, "language", app.language, "Language code (auto|en|zh|...) for transcription")
	flags.BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
	flags.IntVar(&app.threads, "threads", app.threads, "Decode worker threads")
	flags.BoolVar(&app.useGPU, "use-gpu", app.useGPU, "Load models with GPU acceleration")
	flags.BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Detect near-silent audio and skip transcription")
	flags.Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")

	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// applyConfig fills every setting not given on the command line from the
// config file.
func (a *appState) applyConfig(flags *pflag.FlagSet) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath)
	} else {
		var path string
		path, err = platform.DefaultConfigFile()
		if err != nil {
			return nil
		}
		cfg, err = config.LoadOptional(path)
	}
	if err != nil {
		return err
	}

	set := func(name string, apply func()) {
		if !flags.Changed(name) {
			apply()
		}
	}
	set("log-level", func() { a.logLevel = cfg.LogLevel })
	set("model", func() { a.model = cfg.Model })
	set("model-dir", func() { a.modelDir = cfg.ModelDir })
	set("language", func() { a.language = cfg.Language })
	set("auto-download", func() { a.autoDownload = cfg.AutoDownload })
	set("threads", func() { a.threads = cfg.Engine.Threads })
	set("use-gpu", func() { a.useGPU = cfg.Engine.UseGPU })
	set("silence-gate", func() { a.silenceGate = cfg.Silence.Gate })
	set("silence-threshold-dbfs", func() { a.silenceDBFS = cfg.Silence.ThresholdDBFS })

	if a.threads <= 0 {
		return fmt.Errorf("--threads must be > 0, got %d", a.threads)
	}
	return nil
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
