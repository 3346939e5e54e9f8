package encode

import (
	"bytes"
	"io"
	"strings"

	"github.com/vergenzt/yq/format"
	"github.com/vergenzt/yq/ir"
)

type EncState struct {
	col, depth int
	indent     int
	width      int
	indentless bool

	format  format.Format
	xmlRoot string
	xmlDTD  bool
}

// Encode writes node to w in the configured format, ending with a
// newline. Multi-document separators are the caller's business.
func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{
		indent: 2,
		width:  80,
		format: format.YAMLFormat,
	}
	for _, opt := range opts {
		opt(es)
	}
	switch es.format {
	case format.JSONFormat:
		if err := ir.WriteJSON(node, w); err != nil {
			return err
		}
		return writeString(w, "\n")
	case format.YAMLFormat, format.AnnotatedYAMLFormat:
		return es.encodeYAMLDoc(node, w)
	case format.XMLFormat:
		return es.encodeXMLDoc(node, w)
	case format.TOMLFormat:
		return es.encodeTOMLDoc(node, w)
	default:
		return format.ErrBadFormat
	}
}

// MustString renders node as YAML, panicking on error. Test helper.
func MustString(node *ir.Node, opts ...EncodeOption) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(node, buf, opts...); err != nil {
		panic(err)
	}
	return buf.String()
}

func writeString(w io.Writer, s string) error {
	_, err := w.Write([]byte(s))
	return err
}

// writeNL starts a fresh line at the current depth. At column zero
// (start of document) it writes nothing.
func (es *EncState) writeNL(w io.Writer) error {
	if es.col == 0 {
		return nil
	}
	indentString := strings.Repeat(" ", es.indent*es.depth)
	if err := writeString(w, "\n"+indentString); err != nil {
		return err
	}
	es.col = len(indentString)
	return nil
}

func (es *EncState) write(w io.Writer, s string) error {
	es.col += len(s)
	return writeString(w, s)
}
