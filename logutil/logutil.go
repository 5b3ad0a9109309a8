// Package logutil routes the standard logger either to a size-rotated file
// next to the executable or to nowhere at all.
package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const (
	logFileName    = "clickcapture_debug.log"
	defaultLimit   = 10 * 1024 * 1024
	defaultKeep    = 3
	logPermissions = 0o644
)

// Setup configures the global logger. With file logging disabled the output
// is discarded so the console stays free for the capture status line.
func Setup(enableFileLogging bool) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return
	}
	rf := &rotatingFile{path: logPath(), limit: defaultLimit, keep: defaultKeep}
	if err := rf.open(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}
	log.SetOutput(rf)
}

// logPath places the log beside the executable so portable installs keep
// their logs with them. Falls back to the working directory.
func logPath() string {
	exe, err := os.Executable()
	if err != nil {
		return logFileName
	}
	return filepath.Join(filepath.Dir(exe), logFileName)
}

// rotatingFile appends to path and shifts it into numbered archives
// (path.1 newest, path.<keep> oldest) once limit bytes are reached.
type rotatingFile struct {
	path  string
	limit int64
	keep  int

	f    *os.File
	size int64
}

func (r *rotatingFile) open() error {
	if st, err := os.Stat(r.path); err == nil && st.Size() >= r.limit {
		r.shift()
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logPermissions)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	r.f = f
	r.size = st.Size()
	return nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	if r.size+int64(len(p)) > r.limit {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) rotate() error {
	r.f.Close()
	r.shift()
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, logPermissions)
	if err != nil {
		return err
	}
	r.f = f
	r.size = 0
	return nil
}

// shift renames path into path.1 after pushing every existing archive one
// slot down. The archive past keep is removed.
func (r *rotatingFile) shift() {
	os.Remove(r.archive(r.keep))
	for n := r.keep - 1; n >= 1; n-- {
		os.Rename(r.archive(n), r.archive(n+1))
	}
	os.Rename(r.path, r.archive(1))
}

func (r *rotatingFile) archive(n int) string {
	return fmt.Sprintf("%s.%d", r.path, n)
}
