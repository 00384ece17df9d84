package app

import (
	"fmt"
	"runtime/debug"
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetBuildInfo records ldflags values. Empty values leave the defaults, which
// BuildVersionString later fills from the module build info when it can.
func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

func BuildVersionString() string {
	version, commit, date := buildVersion, buildCommit, buildDate
	if info, ok := debug.ReadBuildInfo(); ok {
		version, commit, date = mergeBuildInfo(info, version, commit, date)
	}
	return fmt.Sprintf("%s (%s) %s", version, commit, date)
}

// mergeBuildInfo fills placeholder values from `go install` metadata.
func mergeBuildInfo(info *debug.BuildInfo, version, commit, date string) (string, string, string) {
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "none" && s.Value != "" {
				commit = s.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			}
		case "vcs.time":
			if date == "unknown" && s.Value != "" {
				date = s.Value
			}
		}
	}
	return version, commit, date
}
