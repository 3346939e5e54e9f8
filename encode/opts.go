package encode

import "github.com/vergenzt/yq/format"

type EncodeOption func(*EncState)

func EncodeFormat(f format.Format) EncodeOption {
	return func(es *EncState) { es.format = f }
}

// Width sets the column where plain and folded scalars wrap.
func Width(n int) EncodeOption {
	return func(es *EncState) {
		if n > 0 {
			es.width = n
		}
	}
}

func Indent(n int) EncodeOption {
	return func(es *EncState) {
		if n > 0 {
			es.indent = n
		}
	}
}

// Indentless emits block sequences at the same indent as their key.
func Indentless(v bool) EncodeOption {
	return func(es *EncState) { es.indentless = v }
}

// XMLRoot wraps the document in a root element of the given name, so
// non-object top-level values become representable.
func XMLRoot(name string) EncodeOption {
	return func(es *EncState) { es.xmlRoot = name }
}

// XMLDTD prepends the XML declaration.
func XMLDTD(v bool) EncodeOption {
	return func(es *EncState) { es.xmlDTD = v }
}
