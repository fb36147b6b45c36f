// Package version exposes build metadata for the gones executable,
// populated at link time via -ldflags and supplemented from the Go
// toolchain's embedded VCS stamp when those flags are left at defaults.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	BuildUser = "unknown"
)

// BuildInfo is a snapshot of everything known about how this binary was built.
type BuildInfo struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildTime  string `json:"build_time"`
	BuildUser  string `json:"build_user"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	CGOEnabled bool   `json:"cgo_enabled"`
}

// GetBuildInfo assembles a BuildInfo, falling back to the Go toolchain's
// embedded VCS stamp for commit/time when -ldflags didn't set them.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		BuildUser: BuildUser,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "unknown" {
					info.GitCommit = setting.Value
				}
			case "vcs.time":
				if info.BuildTime == "unknown" {
					info.BuildTime = setting.Value
				}
			case "CGO_ENABLED":
				info.CGOEnabled = setting.Value == "1"
			}
		}
	}

	return info
}

// shortCommit truncates a commit hash to 7 characters, the Git convention
// for an "abbreviated" SHA, leaving shorter inputs untouched.
func shortCommit(commit string) string {
	if len(commit) >= 7 {
		return commit[:7]
	}
	return commit
}

// GetVersion returns Version, or a dev-<commit> string when no release
// version was baked in but a VCS commit is known.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if commit := GetBuildInfo().GitCommit; commit != "unknown" {
		return fmt.Sprintf("dev-%s", shortCommit(commit))
	}
	return Version
}

// GetDetailedVersion formats a one-line human-readable build summary.
func GetDetailedVersion() string {
	info := GetBuildInfo()

	line := fmt.Sprintf("gones version %s", info.Version)
	if info.GitCommit != "unknown" {
		line += fmt.Sprintf(" (commit %s)", shortCommit(info.GitCommit))
	}
	if info.BuildTime != "unknown" {
		if parsed, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			line += fmt.Sprintf(" built on %s", parsed.Format("2006-01-02 15:04:05"))
		} else {
			line += fmt.Sprintf(" built on %s", info.BuildTime)
		}
	}
	line += fmt.Sprintf(" with %s for %s/%s", info.GoVersion, info.Platform, info.Arch)
	if info.BuildUser != "unknown" {
		line += fmt.Sprintf(" by %s", info.BuildUser)
	}
	return line
}

// PrintBuildInfo prints the full build metadata to stdout for `-version`.
func PrintBuildInfo() {
	info := GetBuildInfo()

	fmt.Printf("gones - Go NES Emulator\n")
	fmt.Printf("Version:     %s\n", info.Version)
	fmt.Printf("Git Commit:  %s\n", info.GitCommit)
	fmt.Printf("Build Time:  %s\n", info.BuildTime)
	fmt.Printf("Build User:  %s\n", info.BuildUser)
	fmt.Printf("Go Version:  %s\n", info.GoVersion)
	fmt.Printf("Platform:    %s/%s\n", info.Platform, info.Arch)
	fmt.Printf("CGO Enabled: %t\n", info.CGOEnabled)
}
