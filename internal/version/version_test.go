package version

import "testing"

func TestDefaults(t *testing.T) {
	v, c, d := Info()
	if v != GetVersion() || c != GetCommit() || d != GetDate() {
		t.Fatalf("Info and getters disagree: %s %s %s", v, c, d)
	}
	if v == "" || c == "" || d == "" {
		t.Fatalf("build info must never be empty, got %q %q %q", v, c, d)
	}
}

func TestString_ReflectsLinkerValues(t *testing.T) {
	oldVersion, oldCommit, oldDate := version, commit, date
	t.Cleanup(func() { version, commit, date = oldVersion, oldCommit, oldDate })

	// Так значения подставляет -ldflags "-X .../version.version=...".
	version, commit, date = "1.4.0", "a1b2c3d", "2026-02-22"

	if got, want := String(), "version=1.4.0 commit=a1b2c3d date=2026-02-22"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if GetVersion() != "1.4.0" {
		t.Fatalf("unexpected version %q", GetVersion())
	}
}
