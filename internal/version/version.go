package version

import (
	"runtime/debug"
)

// Set at link time for release builds.
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

// Resolve returns the version string. Release builds report Version as is;
// development builds append the VCS revision recorded by the Go toolchain.
func Resolve() string {
	return resolveVersion(Version, Commit, readVCS)
}

type vcsInfo struct {
	Revision string
	Modified bool
}

func resolveVersion(base, commit string, vcs func() (vcsInfo, bool)) string {
	if base == "" {
		base = "0.0.0"
	}
	if commit != "" && commit != "unknown" {
		return base
	}

	info, ok := vcs()
	if !ok || info.Revision == "" {
		return base
	}

	rev := info.Revision
	if len(rev) > 12 {
		rev = rev[:12]
	}
	suffix := "dev." + rev
	if info.Modified {
		suffix += ".dirty"
	}
	return base + "-" + suffix
}

func readVCS() (vcsInfo, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return vcsInfo{}, false
	}

	var info vcsInfo
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info, info.Revision != ""
}
