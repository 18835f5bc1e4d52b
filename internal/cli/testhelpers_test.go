package cli

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fmueller/voxbridge/internal/engine"
	"github.com/fmueller/voxbridge/internal/engine/enginetest"
	"github.com/stretchr/testify/require"
)

// newTestApp returns app state wired to fake instead of the native engine.
func newTestApp(fake *enginetest.Engine) *appState {
	app := newAppState()
	app.newEngine = func() (engine.Engine, error) {
		return fake, nil
	}
	return app
}

// runCommand executes the root command with an isolated empty config file
// unless args already name one.
func runCommand(t *testing.T, app *appState, args []string) (stdout string, stderr string, err error) {
	t.Helper()

	if app == nil {
		app = newTestApp(&enginetest.Engine{})
	}

	cmd := newRootCmd(app)
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(append([]string{"--config", writeTestConfig(t, ""), "--no-progress"}, args...))

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// writeTestModel creates a non-empty stand-in model file.
func writeTestModel(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ggml-test.bin")
	require.NoError(t, os.WriteFile(path, []byte("fake model"), 0o600))
	return path
}

func writeTestWAV(t *testing.T, name string, samples []int16, sampleRate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, makePCM16WAVForTest(samples, sampleRate, 1), 0o600))
	return path
}

func toneForTest(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(0.25 * math.MaxInt16 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	return samples
}

func makePCM16WAVForTest(samples []int16, sampleRate int, channels int) []byte {
	bytesPerSample := 2
	dataSize := len(samples) * bytesPerSample
	fmtChunkSize := 16
	riffSize := 4 + (8 + fmtChunkSize) + (8 + dataSize)

	out := make([]byte, 12+8+fmtChunkSize+8+dataSize)
	off := 0

	copy(out[off:], []byte("RIFF"))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(riffSize))
	off += 4
	copy(out[off:], []byte("WAVE"))
	off += 4

	copy(out[off:], []byte("fmt "))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(fmtChunkSize))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], 1)
	off += 2
	binary.LittleEndian.PutUint16(out[off:], uint16(channels))
	off += 2
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate*channels*bytesPerSample))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], uint16(channels*bytesPerSample))
	off += 2
	binary.LittleEndian.PutUint16(out[off:], 16)
	off += 2

	copy(out[off:], []byte("data"))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(dataSize))
	off += 4

	for _, s := range samples {
		binary.LittleEndian.PutUint16(out[off:], uint16(s))
		off += 2
	}

	return out
}
