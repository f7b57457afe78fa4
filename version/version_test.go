package version

import (
	"strings"
	"testing"
)

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"no commit", Info{Version: "dev"}, "dev"},
		{"short commit", Info{Version: "1.0.0", Commit: "abc1234"}, "1.0.0-abc1234"},
		{"long commit", Info{Version: "1.0.0", Commit: "abc1234def5678"}, "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", Commit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestString(t *testing.T) {
	s := Info{Version: "1.0.0", BuildTime: "2024-01-15T10:30:00Z", GoVersion: "go1.26.0"}.String()
	want := "jsonflow 1.0.0, built 2024-01-15T10:30:00Z, go1.26.0"
	if s != want {
		t.Errorf("expected %q, got %q", want, s)
	}
}

func TestGet_UsesLinkedValues(t *testing.T) {
	orig := [3]string{Version, Commit, BuildTime}
	defer func() { Version, Commit, BuildTime = orig[0], orig[1], orig[2] }()

	Version, Commit, BuildTime = "2.0.0", "feedbeef", "2025-03-01T00:00:00Z"
	info := Get()
	if info.Version != "2.0.0" || info.Commit != "feedbeef" || info.BuildTime != "2025-03-01T00:00:00Z" {
		t.Errorf("unexpected info %+v", info)
	}
	if !strings.HasPrefix(info.String(), "jsonflow 2.0.0-feedbee") {
		t.Errorf("unexpected string %q", info.String())
	}
}
