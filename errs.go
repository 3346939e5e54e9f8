package yq

import "errors"

var (
	// ErrHelp and ErrVersion are returned by BuildRequest when the
	// matching flag appears; the command prints and exits 0.
	ErrHelp    = errors.New("help requested")
	ErrVersion = errors.New("version requested")
)
