// Package runtime holds the identity of the running binary: its version and
// build time, stamped at link time with
//
//	-ldflags "-X github.com/linchenxuan/craftnet/runtime.version=v1.2.0 -X 'github.com/linchenxuan/craftnet/runtime.buildTime=2026-10-01 12:00:00'"
package runtime

import (
	"runtime/debug"
	"sync"
	"time"
)

const buildTimeLayout = "2006-01-02 15:04:05"

// Set by the linker.
var (
	version   string
	buildTime string
)

var (
	resolveOnce     sync.Once
	resolvedVersion string
	resolvedBuild   time.Time
)

func resolve() {
	resolvedVersion = version
	if resolvedVersion == "" {
		resolvedVersion = "devel"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
	}
	resolvedBuild = parseBuildTime(buildTime)
}

func parseBuildTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(buildTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Version returns the stamped version, the module version from the build
// info, or "devel".
func Version() string {
	resolveOnce.Do(resolve)
	return resolvedVersion
}

// BuildTime returns the stamped build time, zero when unknown.
func BuildTime() time.Time {
	resolveOnce.Do(resolve)
	return resolvedBuild
}

// String formats version and build time for banners.
func String() string {
	s := Version()
	if bt := BuildTime(); !bt.IsZero() {
		s += " (built " + bt.Format(buildTimeLayout) + ")"
	}
	return s
}
