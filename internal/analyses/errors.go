package analyses

import "errors"

// ErrNotFound indicates no analysis exists for the document.
var ErrNotFound = errors.New("analysis not found")
