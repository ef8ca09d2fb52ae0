package version

import "testing"

func TestGet(t *testing.T) {
	Version, Commit = "v1.2.3", "abc1234"
	defer func() { Version, Commit = "dev", "none" }()

	info := Get()
	if info.Version != "v1.2.3" || info.Commit != "abc1234" {
		t.Errorf("Get() = %+v", info)
	}
	if info.GoVersion == "" {
		t.Error("Get().GoVersion should not be empty")
	}

	want := "reel v1.2.3 (commit=abc1234, built=" + info.BuildDate + ", go=" + info.GoVersion + ")"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
