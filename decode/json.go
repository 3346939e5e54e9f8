package decode

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/vergenzt/yq/ir"
)

func f64(f float64) *float64 { return &f }
func nan() float64           { return math.NaN() }
func inf(sign int) float64   { return math.Inf(sign) }

// jsonDecoder reads a stream of concatenated JSON values. The filter
// process may emit top-level values back to back with only whitespace
// between them, so decoding is raw and position-advancing rather than
// line oriented.
type jsonDecoder struct {
	buf      *bufio.Reader
	filename string
}

func newJSONDecoder(in io.Reader, filename string) *jsonDecoder {
	return &jsonDecoder{buf: bufio.NewReader(in), filename: filename}
}

// next returns the next value in the stream, or io.EOF once the input
// holds nothing but trailing whitespace.
func (r *jsonDecoder) next() (*ir.Node, error) {
	b, err := r.skipSpace()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errf(r.filename, "error reading: %v", err)
	}
	return r.parseValue(b)
}

func (r *jsonDecoder) parseValue(b byte) (*ir.Node, error) {
	switch b {
	case '"':
		s, err := r.parseString()
		if err != nil {
			return nil, err
		}
		return ir.FromString(s), nil
	case '[':
		return r.parseArray()
	case '{':
		return r.parseObject()
	case 't':
		if err := r.expect("rue"); err != nil {
			return nil, err
		}
		return ir.FromBool(true), nil
	case 'f':
		if err := r.expect("alse"); err != nil {
			return nil, err
		}
		return ir.FromBool(false), nil
	case 'n':
		if err := r.expect("ull"); err != nil {
			return nil, err
		}
		return ir.Null(), nil
	// Non-finite extensions matching what we ourselves emit.
	case 'N':
		if err := r.expect("aN"); err != nil {
			return nil, err
		}
		return ir.FromNumber("NaN", nil, f64(nan())), nil
	case 'I':
		if err := r.expect("nfinity"); err != nil {
			return nil, err
		}
		return ir.FromNumber("Infinity", nil, f64(inf(1))), nil
	default:
		if b == '-' || b >= '0' && b <= '9' {
			return r.parseNumber(b)
		}
		return nil, errf(r.filename, "syntax error: invalid value starting with %q", b)
	}
}

func (r *jsonDecoder) parseArray() (*ir.Node, error) {
	res := ir.NewArray()
	b, err := r.skipSpaceStrict()
	if err != nil {
		return nil, err
	}
	if b == ']' {
		return res, nil
	}
	for {
		v, err := r.parseValue(b)
		if err != nil {
			return nil, err
		}
		res.Append(v)
		b, err = r.skipSpaceStrict()
		if err != nil {
			return nil, err
		}
		switch b {
		case ']':
			return res, nil
		case ',':
			b, err = r.skipSpaceStrict()
			if err != nil {
				return nil, err
			}
		default:
			return nil, errf(r.filename, "syntax error: expected ']' or ',', got %q", b)
		}
	}
}

func (r *jsonDecoder) parseObject() (*ir.Node, error) {
	res := ir.NewObject()
	b, err := r.skipSpaceStrict()
	if err != nil {
		return nil, err
	}
	if b == '}' {
		return res, nil
	}
	for {
		if b != '"' {
			return nil, errf(r.filename, "syntax error: expected '\"', got %q", b)
		}
		key, err := r.parseString()
		if err != nil {
			return nil, err
		}
		b, err = r.skipSpaceStrict()
		if err != nil {
			return nil, err
		}
		if b != ':' {
			return nil, errf(r.filename, "syntax error: expected ':', got %q", b)
		}
		b, err = r.skipSpaceStrict()
		if err != nil {
			return nil, err
		}
		v, err := r.parseValue(b)
		if err != nil {
			return nil, err
		}
		// Filter output may repeat keys; last wins at the key's
		// first-seen position.
		res.SetField(key, v)
		b, err = r.skipSpaceStrict()
		if err != nil {
			return nil, err
		}
		switch b {
		case '}':
			return res, nil
		case ',':
			b, err = r.skipSpaceStrict()
			if err != nil {
				return nil, err
			}
		default:
			return nil, errf(r.filename, "syntax error: expected '}' or ',', got %q", b)
		}
	}
}

func (r *jsonDecoder) parseNumber(b byte) (*ir.Node, error) {
	var sb strings.Builder
	sb.WriteByte(b)
	for {
		c, err := r.buf.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errf(r.filename, "error reading: %v", err)
		}
		if c >= '0' && c <= '9' || c == '.' || c == '+' || c == '-' || c == 'e' || c == 'E' {
			sb.WriteByte(c)
			continue
		}
		// "-Infinity"
		if c == 'I' && sb.String() == "-" {
			if err := r.expect("nfinity"); err != nil {
				return nil, err
			}
			return ir.FromNumber("-Infinity", nil, f64(inf(-1))), nil
		}
		if err := r.buf.UnreadByte(); err != nil {
			return nil, err
		}
		break
	}
	lexeme := sb.String()
	if i, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
		return ir.FromNumber(lexeme, &i, nil), nil
	}
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return nil, errf(r.filename, "syntax error: invalid number %q", lexeme)
	}
	return ir.FromNumber(lexeme, nil, &f), nil
}

// The leading '"' has already been consumed.
func (r *jsonDecoder) parseString() (string, error) {
	var sb strings.Builder
	for {
		c, err := r.buf.ReadByte()
		if err != nil {
			return "", errf(r.filename, "unterminated string: %v", err)
		}
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			if err := r.parseEscape(&sb); err != nil {
				return "", err
			}
		default:
			sb.WriteByte(c)
		}
	}
}

func (r *jsonDecoder) parseEscape(sb *strings.Builder) error {
	c, err := r.buf.ReadByte()
	if err != nil {
		return errf(r.filename, "unterminated string: %v", err)
	}
	switch c {
	case '"', '\\', '/':
		sb.WriteByte(c)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		r1, err := r.parseHex16()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r1) {
			// A low surrogate escape must follow to complete the pair.
			var pre [2]byte
			if _, err := io.ReadFull(r.buf, pre[:]); err != nil || pre[0] != '\\' || pre[1] != 'u' {
				return errf(r.filename, "syntax error: unpaired surrogate escape")
			}
			r2, err := r.parseHex16()
			if err != nil {
				return err
			}
			sb.WriteRune(utf16.DecodeRune(r1, r2))
			return nil
		}
		sb.WriteRune(r1)
	default:
		return errf(r.filename, "syntax error: invalid escape '\\%c'", c)
	}
	return nil
}

func (r *jsonDecoder) parseHex16() (rune, error) {
	var d [4]byte
	if _, err := io.ReadFull(r.buf, d[:]); err != nil {
		return 0, errf(r.filename, "unterminated unicode escape: %v", err)
	}
	v, err := strconv.ParseUint(string(d[:]), 16, 32)
	if err != nil {
		return 0, errf(r.filename, "syntax error: invalid unicode escape %q", string(d[:]))
	}
	return rune(v), nil
}

func (r *jsonDecoder) expect(rest string) error {
	for i := 0; i < len(rest); i++ {
		c, err := r.buf.ReadByte()
		if err != nil || c != rest[i] {
			return errf(r.filename, "syntax error: unexpected input")
		}
	}
	return nil
}

// skipSpace returns the next non-whitespace byte; io.EOF if the input
// ends first.
func (r *jsonDecoder) skipSpace() (byte, error) {
	for {
		b, err := r.buf.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\n', '\r':
		default:
			return b, nil
		}
	}
}

// skipSpaceStrict is skipSpace where end of input is a syntax error.
func (r *jsonDecoder) skipSpaceStrict() (byte, error) {
	b, err := r.skipSpace()
	if err != nil {
		return 0, errf(r.filename, "unexpected end of input")
	}
	return b, nil
}
