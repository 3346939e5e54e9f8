package pipeline

import "errors"

var (
	// ErrSpawn means the filter executable could not be started at
	// all. Nothing runs after it.
	ErrSpawn = errors.New("spawn error")

	// ErrPipeCreate marks a named pipe that could not be created for
	// one input. Non-fatal: that input is skipped with a warning.
	ErrPipeCreate = errors.New("pipe creation error")

	// ErrProcess covers the filter crashing mid-stream or producing
	// output the JSON decoder cannot read.
	ErrProcess = errors.New("process error")

	ErrConfig = errors.New("configuration error")
)
