package encode

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vergenzt/yq/ir"
)

func (es *EncState) encodeTOMLDoc(node *ir.Node, w io.Writer) error {
	if node.Type != ir.ObjectType {
		return fmt.Errorf(
			"%w: cannot represent %s at the top level of a TOML document, only tables are allowed there",
			ErrEncodeConstraint, node.Type)
	}
	return es.tomlTable(node, nil, w)
}

// tomlTable writes one table body: plain key/value pairs first, then
// sub-tables and arrays of tables, each under its own header. The
// split keeps later pairs from landing inside an earlier sub-table.
func (es *EncState) tomlTable(node *ir.Node, path []string, w io.Writer) error {
	for i, f := range node.Fields {
		val := node.Values[i]
		if isTOMLTable(val) {
			continue
		}
		s, err := tomlValue(val)
		if err != nil {
			return fmt.Errorf("%s: %w", f.String, err)
		}
		if err := writeString(w, tomlKey(f.String)+" = "+s+"\n"); err != nil {
			return err
		}
	}
	for i, f := range node.Fields {
		val := node.Values[i]
		if !isTOMLTable(val) {
			continue
		}
		sub := append(append([]string(nil), path...), f.String)
		header := tomlHeader(sub)
		if val.Type == ir.ObjectType {
			if err := writeString(w, "["+header+"]\n"); err != nil {
				return err
			}
			if err := es.tomlTable(val, sub, w); err != nil {
				return err
			}
			continue
		}
		for _, item := range val.Values {
			if err := writeString(w, "[["+header+"]]\n"); err != nil {
				return err
			}
			if err := es.tomlTable(item, sub, w); err != nil {
				return err
			}
		}
	}
	return nil
}

// isTOMLTable reports whether val gets its own [header] rather than an
// inline value: objects, and non-empty arrays of objects.
func isTOMLTable(val *ir.Node) bool {
	switch val.Type {
	case ir.ObjectType:
		return true
	case ir.ArrayType:
		if len(val.Values) == 0 {
			return false
		}
		for _, item := range val.Values {
			if item.Type != ir.ObjectType {
				return false
			}
		}
		return true
	}
	return false
}

func tomlValue(node *ir.Node) (string, error) {
	switch node.Type {
	case ir.NullType:
		return "", fmt.Errorf("%w: TOML cannot represent null", ErrEncoding)
	case ir.BoolType:
		if node.Bool {
			return "true", nil
		}
		return "false", nil
	case ir.NumberType:
		return tomlNumber(node), nil
	case ir.StringType:
		return ir.QuoteJSON(node.String), nil
	case ir.ArrayType:
		parts := make([]string, 0, len(node.Values))
		for _, item := range node.Values {
			s, err := tomlValue(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case ir.ObjectType:
		parts := make([]string, 0, len(node.Fields))
		for i, f := range node.Fields {
			s, err := tomlValue(node.Values[i])
			if err != nil {
				return "", err
			}
			parts = append(parts, tomlKey(f.String)+" = "+s)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	}
	return "", fmt.Errorf("%w: bad node type %d", ErrEncoding, node.Type)
}

func tomlNumber(node *ir.Node) string {
	switch node.Number {
	case "", "Infinity", "-Infinity", "NaN", ".inf", "-.inf", "+.inf", ".nan":
	default:
		return node.Number
	}
	if node.Int64 != nil {
		return strconv.FormatInt(*node.Int64, 10)
	}
	if node.Float64 != nil {
		f := *node.Float64
		switch {
		case math.IsInf(f, 1):
			return "inf"
		case math.IsInf(f, -1):
			return "-inf"
		case math.IsNaN(f):
			return "nan"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "0"
}

var tomlBareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func tomlKey(s string) string {
	if tomlBareKey.MatchString(s) {
		return s
	}
	return ir.QuoteJSON(s)
}

func tomlHeader(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = tomlKey(p)
	}
	return strings.Join(parts, ".")
}
