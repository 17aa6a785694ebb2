// SPDX-License-Identifier: MIT
//
// Package build exposes metadata embedded into the binary at compile
// time via linker flags. Used for version output and log banners.
package build

// Populated with -ldflags, e.g.
//
//	go build -ldflags "-X audioviz/pkg/build.version=v0.3.0 -X audioviz/pkg/build.commit=$(git rev-parse --short HEAD)"
var (
	name    string
	version string
	commit  string
	date    string
)

// Info holds the resolved build metadata.
type Info struct {
	Name        string
	Description string
	Version     string
	Commit      string
	Date        string
}

// GetInfo returns the build metadata, substituting development defaults
// for any field the linker did not set.
func GetInfo() Info {
	info := Info{
		Name:        name,
		Description: "audio spectrum and rhythm analysis engine",
		Version:     version,
		Commit:      commit,
		Date:        date,
	}
	if info.Name == "" {
		info.Name = "audioviz"
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}
