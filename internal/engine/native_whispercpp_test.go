//go:build whispercpp

package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const nativeModelEnv = "VOXBRIDGE_TEST_MODEL"

func nativeModelPath(t *testing.T) string {
	t.Helper()

	path := strings.TrimSpace(os.Getenv(nativeModelEnv))
	if path == "" {
		t.Skipf("set %s to a ggml model to run native engine tests", nativeModelEnv)
	}
	return path
}

func TestNativeLoadMissingModel(t *testing.T) {
	eng, err := NewNative()
	require.NoError(t, err)

	_, err = eng.Load(filepath.Join(t.TempDir(), "missing.bin"), ContextParams{})
	require.Error(t, err)
}

func TestNativeDecodeSilence(t *testing.T) {
	path := nativeModelPath(t)

	eng, err := NewNative()
	require.NoError(t, err)

	ctx, err := eng.Load(path, ContextParams{})
	require.NoError(t, err)
	defer ctx.Release()

	cfg := DecodeConfig{Strategy: StrategyGreedy, Threads: 2, NoContext: true, Language: "en"}
	require.NoError(t, ctx.Decode(cfg, make([]float32, SampleRate)))

	for i := 0; i < ctx.SegmentCount(); i++ {
		_ = ctx.SegmentText(i)
	}
}

func TestNativeReleaseIsIdempotent(t *testing.T) {
	path := nativeModelPath(t)

	eng, err := NewNative()
	require.NoError(t, err)

	ctx, err := eng.Load(path, ContextParams{})
	require.NoError(t, err)

	ctx.Release()
	ctx.Release()
	require.Zero(t, ctx.SegmentCount())
	require.Error(t, ctx.Decode(DecodeConfig{}, nil))
}
