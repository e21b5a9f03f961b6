package readability

import "errors"

var (
	// ErrTooManyElements is returned when the document exceeds MaxElemsToParse.
	ErrTooManyElements = errors.New("too many elements")
	// ErrNoBody is returned when the document has no <body>.
	ErrNoBody = errors.New("document has no body")
	// ErrNoContent is returned when no pass produced readable text.
	ErrNoContent = errors.New("no readable content")
)
