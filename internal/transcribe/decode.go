package transcribe

import "github.com/fmueller/voxbridge/internal/engine"

// decodeConfig builds the configuration for one decode pass. Everything but
// the thread count and the language is fixed: greedy search at temperature
// zero, no diagnostic printing, no translation, no prompt carried over from
// earlier calls and no forced single segment.
func decodeConfig(opts Options, languageHint string) engine.DecodeConfig {
	cfg := engine.DecodeConfig{
		Strategy:    engine.StrategyGreedy,
		Temperature: 0,
		Threads:     opts.Threads,

		Translate:     false,
		NoContext:     true,
		SingleSegment: false,

		PrintProgress:   false,
		PrintRealtime:   false,
		PrintTimestamps: false,
		PrintSpecial:    false,

		Language: engine.LanguageAuto,
	}
	if languageHint != "" {
		cfg.Language = languageHint
	}
	return cfg
}
