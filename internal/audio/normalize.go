package audio

// normalizeScale maps the int16 range onto [-1.0, 1.0).
const normalizeScale = 32768.0

// Normalize converts signed 16-bit mono PCM into the float32 samples the
// engine decodes. The output has the same length as the input; nothing is
// resampled or mixed.
func Normalize(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / normalizeScale
	}
	return out
}
