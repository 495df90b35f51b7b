package version

import (
	"fmt"
	"runtime"
)

// Version information, set at build time with ldflags.
var (
	Version   = "0.3.0"
	Commit    = "dev"
	BuildDate = "unknown"
)

func Info() string {
	return fmt.Sprintf("scanview version %s (%s, built %s)\n  go: %s\n  os/arch: %s/%s",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
