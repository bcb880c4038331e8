package eraconsole

import "errors"

// Failure classes. Every error surfaced by the engine wraps one of these and
// can be tested with errors.Is.
var (
	ErrMissingAsset    = errors.New("eraconsole: missing asset")
	ErrInvalidCrop     = errors.New("eraconsole: invalid crop region")
	ErrIO              = errors.New("eraconsole: image io failure")
	ErrMalformedMark   = errors.New("eraconsole: malformed image mark")
	ErrFontUnavailable = errors.New("eraconsole: font unavailable")
	ErrEventNotFound   = errors.New("eraconsole: event not found")
)
