// Package pipeline owns one run of the external filter process: it
// spawns the process, streams every input document to it as compact
// JSON (over stdin or named pipes), and demultiplexes the process's
// concatenated JSON output back into documents for re-encoding. The
// process is abstracted behind Runner so the whole pipeline can be
// exercised without a jq binary.
package pipeline
