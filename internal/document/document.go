// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package document handles selecting the PDF that is uploaded to the
// question-answering backend.
package document

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// MediaTypePDF is the only media type accepted for upload.
const MediaTypePDF = "application/pdf"

// sniffLen is how much of the file http.DetectContentType looks at.
const sniffLen = 512

var (
	// ErrNotPDF is returned when the selected file is not a PDF.
	ErrNotPDF = errors.New("not a PDF file")

	// ErrNotRegular is returned for directories and other special files.
	ErrNotRegular = errors.New("not a regular file")
)

// Document is a validated PDF on local disk.
type Document struct {
	Path string
	Name string // base name, sent to the backend as the upload file name
	Size int64

	// Pages is the page count, or 0 when the file could not be parsed.
	// The backend does its own parsing, so a PDF that this package cannot
	// read is still uploaded.
	Pages int
}

// Open validates that path names a PDF. Both the media type declared by the
// extension and the type sniffed from the content must be application/pdf.
func Open(path string) (*Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrNotPDF
	}
	path = expandHome(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}

	if declared := baseType(mime.TypeByExtension(filepath.Ext(path))); declared != MediaTypePDF {
		return nil, fmt.Errorf("%s: declared type %q: %w", path, declared, ErrNotPDF)
	}

	sniffed, err := sniff(path)
	if err != nil {
		return nil, err
	}
	if sniffed != MediaTypePDF {
		return nil, fmt.Errorf("%s: content type %q: %w", path, sniffed, ErrNotPDF)
	}

	doc := &Document{
		Path:  path,
		Name:  filepath.Base(path),
		Size:  info.Size(),
		Pages: countPages(path),
	}
	log.Debug().Str("path", path).Int("pages", doc.Pages).Int64("size", doc.Size).Msg("document selected")
	return doc, nil
}

// Reader opens the document for upload. The caller closes it.
func (d *Document) Reader() (io.ReadCloser, error) {
	return os.Open(d.Path)
}

// Describe returns a short human-readable summary such as
// "report.pdf (12 pages, 1.2 MB)".
func (d *Document) Describe() string {
	size := humanSize(d.Size)
	if d.Pages > 0 {
		unit := "pages"
		if d.Pages == 1 {
			unit = "page"
		}
		return fmt.Sprintf("%s (%d %s, %s)", d.Name, d.Pages, unit, size)
	}
	return fmt.Sprintf("%s (%s)", d.Name, size)
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return baseType(http.DetectContentType(buf[:n])), nil
}

// countPages reads the page tree. The parser panics on some malformed
// files, which is treated like any other parse failure.
func countPages(path string) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Str("path", path).Msg("pdf page count failed")
			pages = 0
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("pdf page count failed")
		return 0
	}
	defer f.Close()
	return r.NumPage()
}

func baseType(mediaType string) string {
	if mediaType == "" {
		return ""
	}
	t, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(mediaType)
	}
	return t
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
