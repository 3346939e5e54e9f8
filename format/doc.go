// Package format enumerates the document formats yq can read and write.
//
// The input format of an invocation is fixed by the entry point (yq reads
// YAML, xq reads XML, tq reads TOML); the output format defaults to JSON
// and is selected with the output flags. AnnotatedYAMLFormat is YAML plus
// the annotation side channel that carries tags, styles and comments
// through the filter process.
//
// # Related Packages
//
//   - github.com/vergenzt/yq/decode - Decode format text to IR
//   - github.com/vergenzt/yq/encode - Encode IR to format text
package format
