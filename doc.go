// Package yq is a jq wrapper for YAML, XML and TOML documents: it
// transcodes input documents to JSON, pipes them through a jq filter,
// and transcodes the filter's output back into the requested format.
// The cmd/yq, cmd/xq and cmd/tq entry points share this package and
// differ only in their input format.
package yq
