package capture

import (
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/2DPocket/clickcapture/appstate"
)

func solidGrab(t *testing.T) Grabber {
	t.Helper()
	return func(r image.Rectangle) (*image.RGBA, error) {
		img := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		for i := range img.Pix {
			img.Pix[i] = 0x80
		}
		return img, nil
	}
}

func TestSaveWritesSequentialName(t *testing.T) {
	dir := t.TempDir()
	s := &Saver{Grab: solidGrab(t)}

	path, err := s.Save(Request{
		Selection: appstate.Rect{Left: 100, Top: 100, Right: 300, Bottom: 260},
		Dir:       dir,
		Index:     7,
		Scale:     100,
		Quality:   95,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if want := filepath.Join(dir, "0007.jpg"); path != want {
		t.Errorf("Expected path %q, got %q", want, path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Saved file missing: %v", err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Saved file is not a decodable JPEG: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 160 {
		t.Errorf("Expected 200x160 at 100%% scale, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSaveScalesOutput(t *testing.T) {
	dir := t.TempDir()
	s := &Saver{Grab: solidGrab(t)}

	path, err := s.Save(Request{
		Selection: appstate.Rect{Left: 0, Top: 0, Right: 200, Bottom: 100},
		Dir:       dir,
		Index:     1,
		Scale:     65,
		Quality:   80,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.Width != 130 || cfg.Height != 65 {
		t.Errorf("Expected 130x65 at 65%% scale, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSaveRejectsEmptySelection(t *testing.T) {
	s := &Saver{Grab: solidGrab(t)}
	_, err := s.Save(Request{
		Selection: appstate.Rect{Left: 10, Top: 10, Right: 10, Bottom: 90},
		Dir:       t.TempDir(),
		Index:     1, Scale: 100, Quality: 95,
	})
	if err == nil {
		t.Fatalf("Expected an error for a zero-width selection")
	}
}

func TestGrabFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	s := &Saver{Grab: func(image.Rectangle) (*image.RGBA, error) {
		return nil, errors.New("screen gone")
	}}

	_, err := s.Save(Request{
		Selection: appstate.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100},
		Dir:       dir,
		Index:     1, Scale: 100, Quality: 95,
	})
	if err == nil {
		t.Fatalf("Expected grab failure to propagate")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected no files after a failed save, found %d", len(entries))
	}
}

func TestSaveCreatesMissingFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "captures")
	s := &Saver{Grab: solidGrab(t)}

	if _, err := s.Save(Request{
		Selection: appstate.Rect{Left: 0, Top: 0, Right: 50, Bottom: 50},
		Dir:       dir,
		Index:     1, Scale: 100, Quality: 95,
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "0001.jpg")); err != nil {
		t.Errorf("Expected the folder to be created on demand: %v", err)
	}
}
