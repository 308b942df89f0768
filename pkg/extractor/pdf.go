// Package extractor pulls plain text out of uploaded documents before they
// are attached to an agent session.
package extractor

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText extracts the text of every page of a PDF, concatenated with blank
// lines between pages. Extraction is best-effort: corrupt files, encrypted
// files, and pages the parser cannot handle all degrade to "" rather than
// failing the upload.
func PDFText(data []byte) (text string) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var pages []string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}

	return strings.Join(pages, "\n\n")
}

// IsPDF reports whether the payload looks like a PDF file.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
