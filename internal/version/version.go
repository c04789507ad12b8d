/*
Package version reports the course-hub build and checks for newer releases.

Version, Commit and Date are overwritten from ldflags in cmd/course-hub;
an unstamped binary reports itself as a "dev" build.
*/
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is a snapshot of the build stamp.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build stamp.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// IsDev reports whether the binary was built without a release tag.
func (i Info) IsDev() bool {
	return i.Version == "" || i.Version == "dev"
}

func (i Info) String() string {
	return FormatVersion(i.Version, i.Commit, i.Date)
}

// UserAgent identifies course-hub to remote APIs.
func (i Info) UserAgent() string {
	if i.IsDev() {
		return "course-hub/dev"
	}
	return "course-hub/" + i.Version
}

// GetVersion returns the formatted build stamp, e.g. for --version.
func GetVersion() string {
	return Get().String()
}

// FormatVersion renders a build stamp for display.
func FormatVersion(version, commit, date string) string {
	if version == "" || version == "dev" {
		return "dev (development build)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}
