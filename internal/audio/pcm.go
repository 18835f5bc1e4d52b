package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/wav"
)

var (
	ErrUnsupportedWAV = errors.New("unsupported wav format")
	ErrInvalidWAV     = errors.New("invalid wav file")
	ErrNotMono        = errors.New("audio must be single-channel")
)

const wavFormatPCM = 1

// Buffer is mono 16-bit PCM at a declared sample rate.
type Buffer struct {
	Samples    []int16
	SampleRate int
}

// ReadWAV loads a 16-bit PCM mono WAV file.
func ReadWAV(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Buffer{}, ErrInvalidWAV
	}

	if dec.WavAudioFormat != wavFormatPCM || dec.BitDepth != 16 {
		return Buffer{}, fmt.Errorf("%w: format %d, %d bits (want 16-bit PCM)", ErrUnsupportedWAV, dec.WavAudioFormat, dec.BitDepth)
	}
	if dec.NumChans != 1 {
		return Buffer{}, fmt.Errorf("%w: got %d channels", ErrNotMono, dec.NumChans)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("decode wav: %w", err)
	}

	samples := make([]int16, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = clampInt16(v)
	}

	return Buffer{Samples: samples, SampleRate: int(dec.SampleRate)}, nil
}

// ReadRaw reads headerless little-endian signed 16-bit samples until EOF.
// A trailing odd byte is rejected.
func ReadRaw(r io.Reader, sampleRate int) (Buffer, error) {
	if sampleRate <= 0 {
		return Buffer{}, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("read raw pcm: %w", err)
	}
	if len(data)%2 != 0 {
		return Buffer{}, fmt.Errorf("raw pcm has odd length %d", len(data))
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}

	return Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// ReadRawFile is ReadRaw over a file.
func ReadRawFile(path string, sampleRate int) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("open raw pcm: %w", err)
	}
	defer f.Close()
	return ReadRaw(f, sampleRate)
}

func clampInt16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
