// Package capture grabs the confirmed screen rectangle, scales it, and saves
// it as the next sequential JPEG. It performs no coordination: the event loop
// decides when to capture and owns the file counter.
package capture

import (
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"

	kbinani "github.com/kbinani/screenshot"
	xdraw "golang.org/x/image/draw"

	"github.com/2DPocket/clickcapture/appstate"
)

// Grabber captures the pixels of an absolute screen rectangle.
type Grabber func(r image.Rectangle) (*image.RGBA, error)

// Request is one capture invocation. Index names the output file
// (%04d.jpg); the caller advances its counter only when Save succeeds.
type Request struct {
	Selection appstate.Rect
	Dir       string
	Index     int
	Scale     int // percent, 55..100
	Quality   int // JPEG quality, 70..100
}

// Saver is the capture collaborator. Grab is swappable for tests; the
// default grabs through kbinani/screenshot.
type Saver struct {
	Grab Grabber
}

func NewSaver() *Saver {
	return &Saver{Grab: defaultGrab}
}

func defaultGrab(r image.Rectangle) (*image.RGBA, error) {
	return kbinani.CaptureRect(r)
}

// Save captures req.Selection and writes Dir/%04d.jpg. It returns the
// written path. On any failure no file remains and the caller must not
// advance its counter.
func (s *Saver) Save(req Request) (string, error) {
	sel := req.Selection
	if sel.Empty() {
		return "", fmt.Errorf("capture: empty selection %+v", sel)
	}

	img, err := s.Grab(image.Rect(sel.Left, sel.Top, sel.Right, sel.Bottom))
	if err != nil {
		return "", fmt.Errorf("capture: grab: %w", err)
	}

	scaled := scale(img, req.Scale)

	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return "", fmt.Errorf("capture: create folder: %w", err)
	}

	path := filepath.Join(req.Dir, fmt.Sprintf("%04d.jpg", req.Index))
	if err := writeJPEG(path, scaled, req.Quality); err != nil {
		return "", err
	}

	b := scaled.Bounds()
	log.Printf("capture: saved %04d.jpg (%dx%d, scale %d%%, quality %d%%)",
		req.Index, b.Dx(), b.Dy(), req.Scale, req.Quality)
	return path, nil
}

// scale resamples img by pct percent. CatmullRom matches the halftone-grade
// downscaling users expect from the status quo; 100% skips the resample.
func scale(img *image.RGBA, pct int) *image.RGBA {
	if pct >= 100 || pct <= 0 {
		return img
	}
	b := img.Bounds()
	w := b.Dx() * pct / 100
	h := b.Dy() * pct / 100
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// writeJPEG encodes to the final path and removes the partial file on any
// failure, so a failed save leaves no trace and no counter gap.
func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: create %s: %w", path, err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("capture: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("capture: close %s: %w", path, err)
	}
	return nil
}
