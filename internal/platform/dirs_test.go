package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelDirLinuxWithXDG(t *testing.T) {
	t.Parallel()

	dir, err := Env{GOOS: "linux", HomeDir: "/home/dev", XDGDataHome: "/tmp/xdg-data"}.ModelDir()
	require.NoError(t, err)
	require.Equal(t, "/tmp/xdg-data/voxbridge/models", dir)
}

func TestModelDirLinuxWithoutXDG(t *testing.T) {
	t.Parallel()

	dir, err := Env{GOOS: "linux", HomeDir: "/home/dev"}.ModelDir()
	require.NoError(t, err)
	require.Equal(t, "/home/dev/.local/share/voxbridge/models", dir)
}

func TestModelDirMacOS(t *testing.T) {
	t.Parallel()

	dir, err := Env{GOOS: "darwin", HomeDir: "/Users/dev"}.ModelDir()
	require.NoError(t, err)
	require.Equal(t, "/Users/dev/Library/Application Support/voxbridge/models", dir)
}

func TestModelDirUnsupportedOS(t *testing.T) {
	t.Parallel()

	_, err := Env{GOOS: "windows", HomeDir: "C:/Users/dev"}.ModelDir()
	require.Error(t, err)
}

func TestModelDirEmptyHome(t *testing.T) {
	t.Parallel()

	_, err := Env{GOOS: "linux"}.ModelDir()
	require.Error(t, err)
}

func TestConfigFileLinux(t *testing.T) {
	t.Parallel()

	path, err := Env{GOOS: "linux", HomeDir: "/home/dev"}.ConfigFile()
	require.NoError(t, err)
	require.Equal(t, "/home/dev/.config/voxbridge/config.yaml", path)

	path, err = Env{GOOS: "linux", HomeDir: "/home/dev", XDGConfigHome: "/etc/xdg"}.ConfigFile()
	require.NoError(t, err)
	require.Equal(t, "/etc/xdg/voxbridge/config.yaml", path)
}

func TestResolveModelDirOverride(t *testing.T) {
	t.Parallel()

	dir, err := ResolveModelDir("/srv/models/")
	require.NoError(t, err)
	require.Equal(t, "/srv/models", dir)
}
