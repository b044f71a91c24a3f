package journal

import "errors"

// ErrInvalidInput indicates a nil or incomplete entry.
var ErrInvalidInput = errors.New("invalid journal entry")
