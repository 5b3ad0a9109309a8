// Package pdfexport batches the captured JPEGs of a folder into one or more
// PDF files. JPEG data is embedded as-is (DCT pass-through) so export never
// degrades the captures; output splits into 0001.pdf, 0002.pdf, ... whenever
// the accumulated size would exceed the configured cap.
package pdfexport

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-pdf/fpdf"
)

// UnlimitedMB is the sentinel cap that disables splitting in practice.
const UnlimitedMB = 1024

// renderDPI maps capture pixels to page points: page_pt = px * 72 / 300.
const renderDPI = 300.0

// size estimation: embedded JPEG bytes dominate; structure is a small
// per-document and per-page overhead.
const (
	docOverheadBytes  = 16 * 1024
	pageOverheadBytes = 2 * 1024
)

// Exporter writes PDFs next to the JPEGs it collects.
type Exporter struct {
	Dir       string
	MaxSizeMB int
}

// Export converts every *.jpg / *.jpeg in Dir (sorted by name, which is the
// capture order for 0001.jpg-style names) and returns the PDF paths written.
func (e *Exporter) Export() ([]string, error) {
	jpegs, err := collectJPEGs(e.Dir)
	if err != nil {
		return nil, err
	}
	if len(jpegs) == 0 {
		return nil, fmt.Errorf("pdfexport: no JPEG files in %s", e.Dir)
	}

	capBytes := int64(e.MaxSizeMB) * 1024 * 1024

	var written []string
	doc := newDoc()
	docSize := int64(docOverheadBytes)
	pages := 0
	outIndex := 1

	flush := func() error {
		if pages == 0 {
			return nil
		}
		path := filepath.Join(e.Dir, fmt.Sprintf("%04d.pdf", outIndex))
		if err := doc.OutputFileAndClose(path); err != nil {
			return fmt.Errorf("pdfexport: write %s: %w", path, err)
		}
		log.Printf("pdfexport: wrote %s (%d pages)", path, pages)
		written = append(written, path)
		outIndex++
		doc = newDoc()
		docSize = docOverheadBytes
		pages = 0
		return nil
	}

	for _, name := range jpegs {
		path := filepath.Join(e.Dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("pdfexport: skipping unreadable %s: %v", name, err)
			continue
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			log.Printf("pdfexport: skipping corrupt %s: %v", name, err)
			continue
		}

		pageCost := int64(len(data)) + pageOverheadBytes
		if pages > 0 && docSize+pageCost > capBytes {
			if err := flush(); err != nil {
				return written, err
			}
		}

		addPage(doc, name, data, cfg.Width, cfg.Height)
		docSize += pageCost
		pages++
	}

	if err := flush(); err != nil {
		return written, err
	}
	if len(written) == 0 {
		return nil, fmt.Errorf("pdfexport: no usable JPEG files in %s", e.Dir)
	}
	return written, nil
}

func newDoc() *fpdf.Fpdf {
	// Unit is points; page size is set per page to match each image.
	return fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: 595.28, Ht: 841.89},
	})
}

func addPage(doc *fpdf.Fpdf, name string, jpegData []byte, pxW, pxH int) {
	ptW := float64(pxW) * 72.0 / renderDPI
	ptH := float64(pxH) * 72.0 / renderDPI

	doc.AddPageFormat("P", fpdf.SizeType{Wd: ptW, Ht: ptH})
	doc.RegisterImageOptionsReader(name,
		fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(jpegData))
	doc.ImageOptions(name, 0, 0, ptW, ptH, false,
		fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
}

func collectJPEGs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pdfexport: read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
