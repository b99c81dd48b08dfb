package utils

import (
	"runtime/debug"
	"strings"
)

// version is set with -ldflags "-X .../internal/utils.version=..." on release builds.
var version string

// GetVersion returns the release version without a leading "v", falling
// back to the module version from build info and then to "dev".
func GetVersion() string {
	v := version
	if v == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		} else {
			v = "dev"
		}
	}
	return strings.TrimPrefix(v, "v")
}
