package format

import (
	"errors"
	"fmt"
)

type Format int

const (
	JSONFormat Format = iota
	YAMLFormat
	AnnotatedYAMLFormat
	XMLFormat
	TOMLFormat
)

var ErrBadFormat = errors.New("bad format")

func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"j":              JSONFormat,
		"json":           JSONFormat,
		"y":              YAMLFormat,
		"yaml":           YAMLFormat,
		"Y":              AnnotatedYAMLFormat,
		"annotated_yaml": AnnotatedYAMLFormat,
		"x":              XMLFormat,
		"xml":            XMLFormat,
		"t":              TOMLFormat,
		"toml":           TOMLFormat,
	}[v]
	if ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case JSONFormat:
		return []byte("json"), nil
	case YAMLFormat:
		return []byte("yaml"), nil
	case AnnotatedYAMLFormat:
		return []byte("annotated_yaml"), nil
	case XMLFormat:
		return []byte("xml"), nil
	case TOMLFormat:
		return []byte("toml"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsJSON() bool { return f == JSONFormat }

// IsYAML reports whether f is one of the YAML output variants.
func (f Format) IsYAML() bool {
	return f == YAMLFormat || f == AnnotatedYAMLFormat
}

// Annotated reports whether f carries node annotations (tag, style,
// comments) through the filter round trip.
func (f Format) Annotated() bool { return f == AnnotatedYAMLFormat }

// ObjectRoot reports whether f can only represent an object at the top
// level of a document.
func (f Format) ObjectRoot() bool {
	return f == XMLFormat || f == TOMLFormat
}

// Suffix returns the file extension for this format (including the dot).
func (f Format) Suffix() string {
	switch f {
	case JSONFormat:
		return ".json"
	case XMLFormat:
		return ".xml"
	case TOMLFormat:
		return ".toml"
	default:
		return ".yaml"
	}
}

// AllFormats returns all supported formats in preference order.
func AllFormats() []Format {
	return []Format{JSONFormat, YAMLFormat, AnnotatedYAMLFormat, XMLFormat, TOMLFormat}
}
