package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"jobsearch-backend/internal/shared/storage/object"
)

const (
	mimePDF   = "application/pdf"
	mimeDOC   = "application/msword"
	mimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePlain = "text/plain"

	// Legacy .doc files are scanned only up to this many bytes; the useful
	// text sits near the front of the OLE container.
	docScanLimit = 256 << 10

	// A legacy .doc extraction shorter than this is treated as garbage
	// rather than a resume.
	docMinChars = 100
)

// ErrUnsupportedType is returned when no extractor exists for the MIME type.
var ErrUnsupportedType = errors.New("unsupported mime type")

// ErrExtractionFailed is returned when a supported file yields no usable text.
var ErrExtractionFailed = errors.New("text extraction failed")

// Text pulls plain text from a stored object.
func Text(ctx context.Context, store object.ObjectStore, fileKey string, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: read: %w", fileKey, mimeType, err)
	}

	text, err := TextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	return text, nil
}

// TextFromBytes extracts text from an in-memory payload based on its MIME type.
func TextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := normalizeMimeType(mimeType, fileName, data)
	switch normalized {
	case mimePlain:
		return string(data), nil
	case mimePDF:
		return extractPDF(data)
	case mimeDOCX:
		return extractDOCX(data)
	case mimeDOC:
		return extractLegacyDOC(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf parse: %v", ErrExtractionFailed, err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf text: %v", ErrExtractionFailed, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: pdf read: %v", ErrExtractionFailed, err)
	}
	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: pdf has no text layer", ErrExtractionFailed)
	}
	return text, nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty docx data", ErrExtractionFailed)
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx container: %v", ErrExtractionFailed, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: document.xml not found", ErrExtractionFailed)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("%w: docx entry: %v", ErrExtractionFailed, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: docx read: %v", ErrExtractionFailed, err)
	}

	return stripDocxXML(string(raw)), nil
}

// extractLegacyDOC scans the binary container for printable runs. There is no
// maintained Go parser for the OLE .doc format, so this is heuristic: keep
// printable ASCII and whitespace from the file prefix and require a minimum
// amount of text to come out.
func extractLegacyDOC(data []byte) (string, error) {
	if len(data) > docScanLimit {
		data = data[:docScanLimit]
	}

	var buf strings.Builder
	lastSpace := false
	for _, b := range data {
		r := rune(b)
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			if !lastSpace {
				buf.WriteByte('\n')
				lastSpace = true
			}
		case r >= 0x20 && r < 0x7f:
			buf.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				buf.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	text := strings.TrimSpace(buf.String())
	if countTextChars(text) < docMinChars {
		return "", fmt.Errorf("%w: legacy doc yielded too little text", ErrExtractionFailed)
	}
	return text, nil
}

func countTextChars(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean != "application/zip" {
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".docx":
		return mimeDOCX
	default:
		return clean
	}
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			return mimeDOCX
		}
	}
	return ""
}
