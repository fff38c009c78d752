// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// buildPDF returns a minimal well-formed PDF with the given number of blank
// pages, computing xref offsets so a strict parser accepts it.
func buildPDF(pages int) []byte {
	var objs []string
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages),
	)
	for i := 0; i < pages; i++ {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen_ValidPDF(t *testing.T) {
	path := writeFile(t, "Annual Report.pdf", buildPDF(2))

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if doc.Name != "Annual Report.pdf" {
		t.Errorf("Name = %q, want %q", doc.Name, "Annual Report.pdf")
	}
	if doc.Pages != 2 {
		t.Errorf("Pages = %d, want 2", doc.Pages)
	}

	r, err := doc.Reader()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if int64(len(data)) != doc.Size {
		t.Errorf("Reader returned %d bytes, Size = %d", len(data), doc.Size)
	}
}

func TestOpen_UppercaseExtension(t *testing.T) {
	path := writeFile(t, "SCAN.PDF", buildPDF(1))
	if _, err := Open(path); err != nil {
		t.Errorf("Open(%q) error = %v", path, err)
	}
}

func TestOpen_UnparseablePDFStillAccepted(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("%PDF-1.7\nthis is not really a pdf body"))

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if doc.Pages != 0 {
		t.Errorf("Pages = %d, want 0 for unparseable file", doc.Pages)
	}
}

func TestOpen_Rejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"text file", "notes.txt", []byte("hello")},
		{"pdf extension with text content", "fake.pdf", []byte("just some text")},
		{"pdf content without extension", "report", buildPDF(1)},
		{"png", "image.png", []byte("\x89PNG\r\n\x1a\n0000")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.data)
			_, err := Open(path)
			if !errors.Is(err, ErrNotPDF) {
				t.Errorf("Open error = %v, want ErrNotPDF", err)
			}
		})
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open("  "); !errors.Is(err, ErrNotPDF) {
		t.Errorf("Open(blank) error = %v, want ErrNotPDF", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	if !os.IsNotExist(err) {
		t.Errorf("Open(missing) error = %v, want not-exist", err)
	}
}

func TestOpen_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "folder.pdf")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir); !errors.Is(err, ErrNotRegular) {
		t.Errorf("Open(dir) error = %v, want ErrNotRegular", err)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		doc  Document
		want string
	}{
		{Document{Name: "a.pdf", Size: 512, Pages: 1}, "a.pdf (1 page, 512 B)"},
		{Document{Name: "b.pdf", Size: 2048, Pages: 12}, "b.pdf (12 pages, 2.0 KB)"},
		{Document{Name: "c.pdf", Size: 3 * 1024 * 1024}, "c.pdf (3.0 MB)"},
	}
	for _, tt := range tests {
		if got := tt.doc.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}
