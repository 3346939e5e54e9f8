// Package decode turns source-format text into ir.Node document
// streams.
//
// A Decoder reads one input (file or stdin) and yields one node per
// document via Next, returning io.EOF at the end of the stream. YAML
// inputs may hold multiple documents separated by "---"; XML and TOML
// inputs hold exactly one. The JSON decoder is the raw,
// position-advancing variant used to split the filter process's
// concatenated output: it accepts back-to-back top-level values with
// only whitespace between them.
//
// Decoding preserves object key order. With the Annotate option the
// decoder also records node tags, styles and comments and delivers
// each document pre-wrapped in the annotation side channel's sentinel
// shape (see the annotate package).
package decode
