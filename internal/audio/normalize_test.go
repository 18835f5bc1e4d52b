package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeKnownValues(t *testing.T) {
	t.Parallel()

	got := Normalize([]int16{0, 16384, -32768, 32767})
	require.Len(t, got, 4)
	require.InDelta(t, 0.0, got[0], 1e-9)
	require.InDelta(t, 0.5, got[1], 1e-9)
	require.InDelta(t, -1.0, got[2], 1e-9)
	require.InDelta(t, 0.999969, got[3], 1e-6)
}

func TestNormalizeEverySample(t *testing.T) {
	t.Parallel()

	in := make([]int16, 0, math.MaxUint16+1)
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		in = append(in, int16(v))
	}

	out := Normalize(in)
	require.Len(t, out, len(in))
	for i, s := range in {
		require.Equal(t, float32(s)/32768.0, out[i])
		require.GreaterOrEqual(t, out[i], float32(-1.0))
		require.LessOrEqual(t, out[i], float32(1.0))
	}
}

func TestNormalizeEmpty(t *testing.T) {
	t.Parallel()

	out := Normalize(nil)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []int16{1, -2, 3}
	_ = Normalize(in)
	require.Equal(t, []int16{1, -2, 3}, in)
}
