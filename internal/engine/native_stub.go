//go:build !whispercpp

package engine

// NativeAvailable reports whether the native whisper backend is compiled in.
func NativeAvailable() bool { return false }

// NewNative returns ErrNativeUnavailable when the native backend is not built.
func NewNative() (Engine, error) {
	return nil, ErrNativeUnavailable
}
