// Package buildinfo holds version information stamped at link time:
//
//	go build -ldflags "-X github.com/cleared-dev/compta/internal/buildinfo.Version=v0.3.0"
package buildinfo

import "fmt"

// Stamped values; the defaults identify a development build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Summary renders the stamped values for "compta --version".
func Summary() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
