package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// Version is the current version of salesummary
	Version = "1.0.0"

	// DocumentVersion identifies the summary JSON layout. It changes only when
	// a field is renamed, removed or changes meaning.
	DocumentVersion = "v1"

	// APIVersion is the HTTP API version mounted under /api/v1
	APIVersion = "v1"
)

// Set through -ldflags "-X salescli/pkg/contracts.BuildTime=..." by build.go.
// When unset, the VCS stamp embedded by the go tool is used instead.
var (
	BuildTime = ""
	GitCommit = ""
)

// VersionInfo is reported by the version command and GET /api/v1/version
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	Modified     bool   `json:"modified,omitempty"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	Document     string `json:"document_version"`
	APIVersion   string `json:"api_version"`
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		Document:     DocumentVersion,
		APIVersion:   APIVersion,
	}
	applyBuildSettings(&info)
	return info
}

// applyBuildSettings fills commit and time from vcs.* build settings where
// ldflags left them empty
func applyBuildSettings(info *VersionInfo) {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = shortCommit(s.Value)
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if info.GitCommit == "" {
		info.GitCommit = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// GetVersionString returns "salesummary v<version>"
func GetVersionString() string {
	return fmt.Sprintf("salesummary v%s", Version)
}

// GetFullVersionString returns the version line printed by the version command
func GetFullVersionString() string {
	info := GetVersionInfo()
	commit := info.GitCommit
	if info.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (document %s, built: %s, commit: %s, %s %s/%s)",
		GetVersionString(), info.Document, info.BuildTime, commit,
		info.GoVersion, info.OS, info.Architecture)
}
