// Package buildinfo reports which binary is running and since when.
package buildinfo

import (
	"runtime/debug"
	"time"
)

// Filled in with -ldflags "-X github.com/xelth-com/qrcatalog/internal/buildinfo.CommitHash=..."
var (
	BuildTime  string
	CommitTime string
	CommitHash string
)

var started = time.Now().UTC()

// Info is the build and process summary served by /api/status.
type Info struct {
	BuildTime  string `json:"buildTime"`
	CommitHash string `json:"commitHash"`
	CommitTime string `json:"commitTime"`
	GoVersion  string `json:"goVersion"`
	StartTime  string `json:"startTime"`
	Uptime     string `json:"uptime"`
}

// Current reads the linker-set values, falling back to the VCS stamp the Go
// toolchain embeds when the binary was built without -ldflags.
func Current(now time.Time) Info {
	info := Info{
		BuildTime:  BuildTime,
		CommitHash: CommitHash,
		CommitTime: CommitTime,
		StartTime:  started.Format(time.RFC3339),
		Uptime:     now.Sub(started).Truncate(time.Second).String(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.CommitHash == "" && len(s.Value) >= 7 {
				info.CommitHash = s.Value[:7]
			}
		case "vcs.time":
			if info.CommitTime == "" {
				info.CommitTime = s.Value
			}
		}
	}
	return info
}
