package decode

import (
	"io"

	"github.com/vergenzt/yq/annotate"
	"github.com/vergenzt/yq/debug"
	"github.com/vergenzt/yq/format"
	"github.com/vergenzt/yq/ir"
)

type Decoder struct {
	r        io.Reader
	format   format.Format
	annotate bool
	filename string

	jsonDec *jsonDecoder
	docs    []*ir.Node
	pos     int
	loaded  bool
	n       int
	err     error
}

type DecodeOption func(*Decoder)

func DecodeFormat(f format.Format) DecodeOption {
	return func(d *Decoder) { d.format = f }
}

// Annotate makes Next deliver documents pre-wrapped in the annotation
// side channel's sentinel shape, carrying tags, styles and comments.
func Annotate(v bool) DecodeOption {
	return func(d *Decoder) { d.annotate = v }
}

// Filename names the input in error messages. Defaults to "<stdin>".
func Filename(name string) DecodeOption {
	return func(d *Decoder) { d.filename = name }
}

func NewDecoder(r io.Reader, opts ...DecodeOption) *Decoder {
	d := &Decoder{
		r:        r,
		format:   format.YAMLFormat,
		filename: "<stdin>",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next returns the next document in the input, or io.EOF when the
// stream is exhausted.
func (d *Decoder) Next() (*ir.Node, error) {
	if d.err != nil {
		return nil, d.err
	}
	node, err := d.next()
	if err != nil {
		d.err = err
		return nil, err
	}
	d.n++
	if debug.Decode() {
		debug.Logf("decode: %s: %s document %d\n", d.filename, d.format, d.n)
	}
	if d.annotate {
		node, err = annotate.Wrap(node)
		if err != nil {
			err = errf(d.filename, "%v", err)
			d.err = err
			return nil, err
		}
	}
	return node, nil
}

func (d *Decoder) next() (*ir.Node, error) {
	if d.format.IsJSON() {
		if d.jsonDec == nil {
			d.jsonDec = newJSONDecoder(d.r, d.filename)
		}
		return d.jsonDec.next()
	}
	if !d.loaded {
		if err := d.load(); err != nil {
			return nil, err
		}
		d.loaded = true
	}
	if d.pos >= len(d.docs) {
		return nil, io.EOF
	}
	node := d.docs[d.pos]
	d.pos++
	return node, nil
}

func (d *Decoder) load() error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return errf(d.filename, "error reading: %v", err)
	}
	switch d.format {
	case format.YAMLFormat, format.AnnotatedYAMLFormat:
		d.docs, err = decodeYAML(data, d.filename)
	case format.XMLFormat:
		d.docs, err = decodeXML(data, d.filename)
	case format.TOMLFormat:
		d.docs, err = decodeTOML(data, d.filename)
	default:
		return errf(d.filename, "unknown input format %s", d.format)
	}
	return err
}
