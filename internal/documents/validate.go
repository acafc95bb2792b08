package documents

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the inclusive upload size cap. A file of exactly this
// size is accepted.
const MaxUploadBytes = 5 << 20 // 5MB

var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

var extensionMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// NormalizeMimeType strips parameters like charset and lowercases the type.
func NormalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

// ResolveMimeType picks the effective MIME type for an upload, falling back
// to the file extension when the declared type is empty or generic.
func ResolveMimeType(declared, fileName string) string {
	clean := NormalizeMimeType(declared)
	if clean != "" && clean != "application/octet-stream" {
		return clean
	}
	if byExt, ok := extensionMimeTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return byExt
	}
	return clean
}

// ValidateUpload checks size and type before anything is persisted.
func ValidateUpload(fileName, mimeType string, sizeBytes int64) error {
	if strings.TrimSpace(fileName) == "" {
		return fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if sizeBytes <= 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if sizeBytes > MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, sizeBytes, MaxUploadBytes)
	}
	if !allowedMimeTypes[NormalizeMimeType(mimeType)] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
	}
	return nil
}
