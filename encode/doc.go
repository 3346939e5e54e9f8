// Package encode renders ir.Node trees as text in each output
// format.
//
// YAML output is the block form, honoring node styles (quoted,
// literal, folded, flow), tags and comments, with configurable width,
// indent and indentless sequences. JSON output is the compact wire
// form fed to the filter process. XML and TOML can only represent an
// object at the top level; encoding anything else fails with
// ErrEncodeConstraint unless a wrapping root is configured.
package encode
