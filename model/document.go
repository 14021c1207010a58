package model

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned when setting blank extracted text on a document.
var ErrEmptyText = errors.New("extracted text cannot be empty")

// =============================================================================
// DOCUMENT - Payload source for processing requests
// =============================================================================

// Document is the payload a request processes. Absent content is an
// expected condition, not an error: the workflow maps it to a refunded
// ERROR outcome.
type Document interface {
	// DocumentName identifies the payload in request records.
	DocumentName() string

	// ExtractedContent returns the text to process and whether any
	// content is available.
	ExtractedContent() (string, bool)
}

// =============================================================================
// PDF DOCUMENT
// =============================================================================

// PDFDocument holds the text extracted from an uploaded PDF.
// Extraction itself happens upstream; this type only carries the result.
type PDFDocument struct {
	OriginalFilename string
	FilePath         string
	FileSize         int64

	text string
}

// NewPDFDocument creates a document with no extracted text yet.
func NewPDFDocument(filename, path string, size int64) *PDFDocument {
	return &PDFDocument{OriginalFilename: filename, FilePath: path, FileSize: size}
}

func (d *PDFDocument) DocumentName() string { return d.OriginalFilename }

// SetExtractedText stores the extraction result. Blank text is rejected
// so "no content" stays distinguishable from "empty content".
func (d *PDFDocument) SetExtractedText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	d.text = text
	return nil
}

// ExtractedContent returns the stored text, false when nothing was set.
func (d *PDFDocument) ExtractedContent() (string, bool) {
	if d.text == "" {
		return "", false
	}
	return d.text, true
}

// =============================================================================
// TEXT DOCUMENT - Inline payload for API submissions
// =============================================================================

// TextDocument wraps raw text submitted directly over the API.
type TextDocument struct {
	Name string
	Text string
}

func (d TextDocument) DocumentName() string { return d.Name }

func (d TextDocument) ExtractedContent() (string, bool) {
	if strings.TrimSpace(d.Text) == "" {
		return "", false
	}
	return d.Text, true
}
