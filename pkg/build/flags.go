// SPDX-License-Identifier: MIT
//
// Package build provides functionality to manage and retrieve build information
// for the visualizer binary. Metadata such as the application name, build
// timestamp, Git commit hash, and semantic version is embedded at compile time
// using linker flags:
//
//	go build -ldflags "-X neonviz/pkg/build.buildVersion=0.3.0 -X neonviz/pkg/build.buildCommit=$(git rev-parse --short HEAD)"
//
// Development builds run without the flags; Initialize reports which ones are
// missing and the "dev" placeholders stay in place.
package build

import (
	"errors"
	"fmt"
	"strings"
)

// Info is the build metadata reported by --version and the startup log line.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String renders the metadata on a single line.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Package-level variables for build information. These are populated by
// -ldflags during compilation.
var (
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = &Info{
		Name:        "neonviz",
		Description: "Real-time neon spectrum visualizer",
		Time:        "dev",
		Commit:      "dev",
		Version:     "dev",
	}
)

// Initialize copies build information from the ldflags variables into the
// package Info. Values that were not provided keep their "dev" placeholder and
// are listed in the returned error, which callers may treat as a warning.
func Initialize() error {
	var missing []string
	if buildTime == "" {
		missing = append(missing, "buildTime")
	} else {
		buildInfo.Time = buildTime
	}
	if buildCommit == "" {
		missing = append(missing, "buildCommit")
	} else {
		buildInfo.Commit = buildCommit
	}
	if buildVersion == "" {
		missing = append(missing, "buildVersion")
	} else {
		buildInfo.Version = buildVersion
	}

	if len(missing) > 0 {
		return errors.New("build flags not set: " + strings.Join(missing, ", "))
	}
	return nil
}

// GetBuildInfo returns the current build information.
func GetBuildInfo() *Info {
	return buildInfo
}
