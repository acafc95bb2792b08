package documents

import "errors"

var (
	// ErrInvalidInput indicates a malformed or missing request value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates no document exists for the given ID.
	ErrNotFound = errors.New("document not found")

	// ErrForbidden indicates the document belongs to a different user.
	ErrForbidden = errors.New("document access forbidden")

	// ErrFileTooLarge indicates the upload exceeds the size cap.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrUnsupportedFileType indicates the MIME type is not accepted.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
