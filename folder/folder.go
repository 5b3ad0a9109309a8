// Package folder picks and validates the output directory for captures.
// The discovery order mirrors the usual Windows setup: a OneDrive-managed
// Pictures folder wins over the local one, and the home directory is the
// last resort. Candidates are validated with a real write probe rather than
// permission-bit inspection.
package folder

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DiscoverDefault returns the first writable candidate folder.
func DiscoverDefault() string {
	for _, dir := range candidates() {
		if dir == "" {
			continue
		}
		if Writable(dir) {
			log.Printf("Output folder: %s", dir)
			return dir
		}
	}
	// Writable home failed too; fall back to the working directory.
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func candidates() []string {
	var dirs []string
	if od := os.Getenv("OneDrive"); od != "" {
		dirs = append(dirs, filepath.Join(od, "Pictures"))
	}
	home, err := os.UserHomeDir()
	if err == nil {
		dirs = append(dirs,
			filepath.Join(home, "OneDrive", "Pictures"),
			filepath.Join(home, "Pictures"),
			home,
		)
	}
	return dirs
}

// Validate checks a user-chosen folder: it must exist (or be creatable) and
// accept a test write.
func Validate(dir string) error {
	if dir == "" {
		return fmt.Errorf("empty folder path")
	}
	if st, err := os.Stat(dir); err == nil {
		if !st.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if !Writable(dir) {
		return fmt.Errorf("%s is not writable", dir)
	}
	return nil
}

// Writable probes dir by creating and deleting a temp file.
func Writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".clickcapture-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
