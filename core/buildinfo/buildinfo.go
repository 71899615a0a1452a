// Package buildinfo carries version data stamped in at link time:
//
//	go build -ldflags "-X 'github.com/m3rciful/reviewbot/core/buildinfo.Version=v1.2.3' \
//	  -X 'github.com/m3rciful/reviewbot/core/buildinfo.Commit=abcdef0' \
//	  -X 'github.com/m3rciful/reviewbot/core/buildinfo.Date=2025-08-30T12:00:00Z'"
package buildinfo

import "strings"

var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)

// Info is a snapshot of the stamped values.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Current returns the values stamped into this binary.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String renders "version (commit)" and drops empty parts.
func (i Info) String() string {
	v := strings.TrimSpace(i.Version)
	c := strings.TrimSpace(i.Commit)
	switch {
	case v == "":
		return c
	case c == "":
		return v
	}
	return v + " (" + c + ")"
}
