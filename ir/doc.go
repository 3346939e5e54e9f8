// Package ir provides the intermediate representation (IR) that yq
// pipes between document formats and the filter process.
//
// # Overview
//
// Every document yq reads (YAML, XML, TOML) and every value the filter
// process emits is represented as an ir.Node tree. The IR is exactly
// the JSON data model - null, bool, number, string, array, and object
// with ordered keys - plus optional per-node annotations (tag, style,
// head and line comments) that only the annotated output formats use.
//
// # Node Structure
//
// The IR is a recursive tagged union: the Type field selects which of
// the payload fields is meaningful.
//
// For ObjectType nodes, Fields[i] is the key for the value at
// Values[i], so there are always the same number of fields as values.
// Key order is insertion order and is preserved end-to-end; keys are
// always strings.
//
// Number nodes keep the source lexeme in Number alongside the parsed
// Int64 or Float64 value, so re-encoding can reproduce the original
// spelling when the target grammar allows it.
//
// # Creating Nodes
//
// Use constructor functions to create nodes:
//
//	node := ir.FromString("hello")
//	num := ir.FromInt(42)
//	obj := ir.NewObject().SetField("key", ir.FromString("value"))
//	arr := ir.NewArray().Append(ir.FromInt(1)).Append(ir.FromInt(2))
//
// # Navigating Nodes
//
// Nodes maintain parent-child relationships (Parent, ParentIndex,
// ParentField). Use Path() to get a JSONPath-style path string for
// error messages:
//
//	path := node.Path() // e.g., "$.foo.bar[0]"
//
// # Thread Safety
//
// Node structures are not thread-safe. If you need to access nodes
// from multiple goroutines, you must synchronize access yourself or
// clone nodes for each goroutine.
//
// # Related Packages
//
//   - github.com/vergenzt/yq/decode - Decodes format text into IR nodes
//   - github.com/vergenzt/yq/encode - Encodes IR nodes to format text
//   - github.com/vergenzt/yq/annotate - Annotation side channel over IR
package ir
