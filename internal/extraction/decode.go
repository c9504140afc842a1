package extraction

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// DecodeText returns the text of an uploaded receipt. PDFs are read page
// by page; everything else is treated as UTF-8 text with invalid bytes
// dropped.
func DecodeText(data []byte, contentType, filename string) (string, error) {
	if isPDF(data, contentType, filename) {
		return pdfText(data)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// isPDF checks the MIME type, the extension and the %PDF- magic bytes
func isPDF(data []byte, contentType, filename string) bool {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "application/pdf" {
		return true
	}
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// pdfText joins the text of every page with newlines
func pdfText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("reading PDF page %d: %w", i+1, err)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
