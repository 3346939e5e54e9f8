package encode

import "errors"

var (
	ErrEncoding = errors.New("encoding error")

	// ErrEncodeConstraint marks values the target format cannot
	// represent at the top level (XML and TOML require an object
	// root).
	ErrEncodeConstraint = errors.New("encode constraint error")
)
