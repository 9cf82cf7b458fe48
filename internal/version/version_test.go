package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuild(t *testing.T, v, commit, date string, bi *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origDate, origRead := Version, Commit, Date, readBuildInfo
	Version, Commit, Date = v, commit, date
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() {
		Version, Commit, Date, readBuildInfo = origVersion, origCommit, origDate, origRead
	})
}

func TestGetInfoLinked(t *testing.T) {
	withBuild(t, "1.0.0", "abc123def456", "2026-01-01T12:00:00Z", &debug.BuildInfo{
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffff"}},
	})

	info := GetInfo()
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "abc123def456", info.Commit)
	assert.Equal(t, "2026-01-01T12:00:00Z", info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestGetInfoFromBuildStamp(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-03-02T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	withBuild(t, "dev", "unknown", "unknown", bi)

	info := GetInfo()
	assert.Equal(t, "v0.4.0", info.Version)
	assert.Equal(t, "0123456789abcdef", info.Commit)
	assert.Equal(t, "2026-03-02T10:00:00Z", info.Date)
	assert.True(t, info.Dirty)
	assert.Contains(t, info.String(), "(01234567-dirty)")
}

func TestGetInfoDevelBuild(t *testing.T) {
	withBuild(t, "dev", "unknown", "unknown", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", GetInfo().Version)

	withBuild(t, "dev", "unknown", "unknown", nil)
	assert.Equal(t, "unknown", GetInfo().Commit)
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want []string
	}{
		{
			name: "full",
			info: Info{Version: "1.0.0", Commit: "abc123def456", Date: "2026-01-01", GoVersion: "go1.24.6", Platform: "linux/amd64"},
			want: []string{"AutoSDLC", "1.0.0", "(abc123de)", "2026-01-01", "go1.24.6", "linux/amd64"},
		},
		{
			name: "short commit",
			info: Info{Version: "dev", Commit: "abc", Date: "unknown", GoVersion: "go1.24.6", Platform: "darwin/arm64"},
			want: []string{"AutoSDLC dev", "(abc)", "darwin/arm64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.info.String()
			for _, want := range tt.want {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestShortAndUserAgent(t *testing.T) {
	info := Info{Version: "0.3.1", Platform: "linux/arm64"}

	assert.Equal(t, "0.3.1", info.Short())
	assert.Equal(t, "autosdlc/0.3.1 (linux/arm64)", info.UserAgent())
}
