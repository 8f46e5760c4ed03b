package version

import (
	"fmt"
	"runtime"
)

// Populated at build time via -ldflags "-X filedesk/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

func String() string {
	base := Version
	if Commit != "" {
		base += fmt.Sprintf(" (%s)", Commit)
	}
	if Date != "" {
		base += fmt.Sprintf(" %s", Date)
	}
	return base
}

// UserAgent is sent with every backend request.
func UserAgent() string {
	return fmt.Sprintf("filedesk/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}
