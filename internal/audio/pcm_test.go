package audio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWAVMono16(t *testing.T) {
	t.Parallel()

	want := []int16{0, 1000, -1000, 32767, -32768}
	path := filepath.Join(t.TempDir(), "voice.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(want, 16000, 1), 0o644))

	buf, err := ReadWAV(path)
	require.NoError(t, err)
	require.Equal(t, 16000, buf.SampleRate)
	require.Equal(t, want, buf.Samples)
}

func TestReadWAVKeepsDeclaredRate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "voice-44k.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(sineWave(441, 0.1), 44100, 1), 0o644))

	buf, err := ReadWAV(path)
	require.NoError(t, err)
	require.Equal(t, 44100, buf.SampleRate)
	require.Len(t, buf.Samples, 441)
}

func TestReadWAVRejectsStereo(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stereo.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(make([]int16, 32), 16000, 2), 0o644))

	_, err := ReadWAV(path)
	require.ErrorIs(t, err, ErrNotMono)
}

func TestReadWAVInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not-wav.wav")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := ReadWAV(path)
	require.ErrorIs(t, err, ErrInvalidWAV)
}

func TestReadWAVMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadRawLittleEndian(t *testing.T) {
	t.Parallel()

	data := []byte{0x00, 0x00, 0x00, 0x40, 0x00, 0x80, 0xff, 0x7f}
	buf, err := ReadRaw(bytes.NewReader(data), 16000)
	require.NoError(t, err)
	require.Equal(t, []int16{0, 16384, -32768, 32767}, buf.Samples)
	require.Equal(t, 16000, buf.SampleRate)
}

func TestReadRawRejectsOddLength(t *testing.T) {
	t.Parallel()

	_, err := ReadRaw(bytes.NewReader([]byte{0x01, 0x02, 0x03}), 16000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "odd length")
}

func TestReadRawRejectsBadRate(t *testing.T) {
	t.Parallel()

	_, err := ReadRaw(bytes.NewReader(nil), 0)
	require.Error(t, err)
}

func TestReadRawFileEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.pcm")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	buf, err := ReadRawFile(path, 16000)
	require.NoError(t, err)
	require.Empty(t, buf.Samples)
}

func makePCM16WAV(samples []int16, sampleRate int, channels int) []byte {
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
