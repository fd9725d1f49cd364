// Package version holds build information set via -ldflags.
package version

var (
	Version = "dev"
	Commit  = ""
)

// String returns the version with the commit when known.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
