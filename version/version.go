// Package version reports build information for the recipeviz binary.
// The variables are stamped at build time:
//
//	go build -ldflags "-X github.com/teranos/recipeviz/version.Version=v0.3.0 \
//	  -X github.com/teranos/recipeviz/version.CommitHash=$(git rev-parse HEAD)"
package version

import (
	"fmt"
	"runtime"
)

var (
	// CommitHash is the git commit the binary was built from
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the release tag, "dev" for untagged builds
	Version = "dev"
)

// Info is the build information sent to canvas clients and printed by the CLI
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current build information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("recipeviz %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
}

// Short returns the abbreviated commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// UserAgent is sent on every request to the search backend and image server
func (i Info) UserAgent() string {
	if i.Version == "dev" && i.CommitHash != "dev" {
		return "recipeviz/dev+" + i.Short()
	}
	return "recipeviz/" + i.Version
}
