//go:build !whispercpp

package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNativeUnavailableWithoutBuildTag(t *testing.T) {
	t.Parallel()

	require.False(t, NativeAvailable())
	eng, err := NewNative()
	require.ErrorIs(t, err, ErrNativeUnavailable)
	require.Nil(t, eng)
}
