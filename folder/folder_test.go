package folder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWritable(t *testing.T) {
	dir := t.TempDir()
	if !Writable(dir) {
		t.Errorf("Expected temp dir to be writable")
	}
	if Writable(filepath.Join(dir, "does-not-exist")) {
		t.Errorf("Expected missing dir to be reported unwritable")
	}
	// The probe file must not linger.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected the write probe to clean up, found %d entries", len(entries))
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(t.TempDir()); err != nil {
		t.Errorf("Expected an existing temp dir to validate: %v", err)
	}
	if err := Validate(""); err == nil {
		t.Errorf("Expected an empty path to be rejected")
	}

	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Validate(file); err == nil {
		t.Errorf("Expected a plain file to be rejected")
	}
}

func TestValidateCreatesMissingFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "captures", "today")
	if err := Validate(dir); err != nil {
		t.Fatalf("Expected the folder to be created: %v", err)
	}
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Errorf("Expected %s to exist as a directory after Validate", dir)
	}
}

func TestDiscoverDefaultHonorsOneDrive(t *testing.T) {
	od := t.TempDir()
	if err := os.MkdirAll(filepath.Join(od, "Pictures"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OneDrive", od)

	got := DiscoverDefault()
	if want := filepath.Join(od, "Pictures"); got != want {
		t.Errorf("Expected OneDrive Pictures %q, got %q", want, got)
	}
}

func TestDiscoverDefaultAlwaysReturnsSomething(t *testing.T) {
	t.Setenv("OneDrive", "")
	if got := DiscoverDefault(); got == "" {
		t.Errorf("Expected a non-empty fallback folder")
	}
}
