package concept

import "errors"

var (
	// ErrConceptNotFound indicates the concept isn't visible on the branch.
	ErrConceptNotFound = errors.New("concept not found")
	// ErrInvalidDocument indicates a document that isn't a JSON object.
	ErrInvalidDocument = errors.New("invalid concept document")
	// ErrMissingID indicates a document without conceptId or id.
	ErrMissingID = errors.New("concept document has no id")
)
