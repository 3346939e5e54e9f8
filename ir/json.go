package ir

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

// ToJSON renders a node as one compact JSON value, the wire form fed
// to the filter process. Annotations are not represented; use the
// annotate package to keep them.
func ToJSON(y *Node) ([]byte, error) {
	return appendJSON(nil, y)
}

func WriteJSON(y *Node, w io.Writer) error {
	d, err := ToJSON(y)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

func appendJSON(dst []byte, y *Node) ([]byte, error) {
	var err error
	switch y.Type {
	case NullType:
		return append(dst, "null"...), nil
	case BoolType:
		if y.Bool {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case NumberType:
		return appendJSONNumber(dst, y)
	case StringType:
		return append(dst, QuoteJSON(y.String)...), nil
	case ArrayType:
		dst = append(dst, '[')
		for i, v := range y.Values {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst, err = appendJSON(dst, v)
			if err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case ObjectType:
		dst = append(dst, '{')
		for i, f := range y.Fields {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = append(dst, QuoteJSON(f.String)...)
			dst = append(dst, ':')
			dst, err = appendJSON(dst, y.Values[i])
			if err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	default:
		return nil, fmt.Errorf("%w: cannot represent %s in json", errInternal, y.Type)
	}
}

func appendJSONNumber(dst []byte, y *Node) ([]byte, error) {
	if y.Number != "" && ValidJSONNumber(y.Number) {
		return append(dst, y.Number...), nil
	}
	if y.Int64 != nil {
		return strconv.AppendInt(dst, *y.Int64, 10), nil
	}
	if y.Float64 != nil {
		f := *y.Float64
		// Non-finite values follow the filter process's extended
		// grammar rather than strict JSON.
		switch {
		case math.IsInf(f, 1):
			return append(dst, "Infinity"...), nil
		case math.IsInf(f, -1):
			return append(dst, "-Infinity"...), nil
		case math.IsNaN(f):
			return append(dst, "NaN"...), nil
		}
		return strconv.AppendFloat(dst, f, 'g', -1, 64), nil
	}
	return nil, fmt.Errorf("%w: number node without value", errInternal)
}

// ValidJSONNumber reports whether lexeme conforms to the JSON number
// grammar and can be emitted verbatim.
func ValidJSONNumber(lexeme string) bool {
	s := lexeme
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	// int part
	switch {
	case s[0] == '0':
		s = s[1:]
	case s[0] >= '1' && s[0] <= '9':
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		s = s[i:]
	default:
		return false
	}
	// frac part
	if len(s) > 0 && s[0] == '.' {
		s = s[1:]
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 {
			return false
		}
		s = s[i:]
	}
	// exp part
	if len(s) > 0 && (s[0] == 'e' || s[0] == 'E') {
		s = s[1:]
		if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
			s = s[1:]
		}
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 {
			return false
		}
		s = s[i:]
	}
	return len(s) == 0
}

// QuoteJSON escapes s as a JSON string literal.
func QuoteJSON(s string) string {
	d := make([]byte, 1, len(s)+2)
	d[0] = '"'
	for _, r := range s {
		switch r {
		case '"':
			d = append(d, '\\', '"')
		case '\\':
			d = append(d, '\\', '\\')
		case '\b':
			d = append(d, '\\', 'b')
		case '\f':
			d = append(d, '\\', 'f')
		case '\n':
			d = append(d, '\\', 'n')
		case '\r':
			d = append(d, '\\', 'r')
		case '\t':
			d = append(d, '\\', 't')
		default:
			if r < 0x20 {
				d = append(d, fmt.Sprintf("\\u%04x", r)...)
			} else {
				d = append(d, string(r)...)
			}
		}
	}
	return string(append(d, '"'))
}
