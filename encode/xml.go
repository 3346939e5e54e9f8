package encode

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vergenzt/yq/ir"
)

func (es *EncState) encodeXMLDoc(node *ir.Node, w io.Writer) error {
	if es.xmlRoot != "" {
		wrapped := ir.NewObject()
		wrapped.SetField(es.xmlRoot, node)
		node = wrapped
	}
	if node.Type != ir.ObjectType {
		return fmt.Errorf(
			"%w: cannot represent %s at the top level of an XML document, use --xml-root=name to wrap the output in a root element",
			ErrEncodeConstraint, node.Type)
	}
	roots := 0
	for _, val := range node.Values {
		if val.Type == ir.ArrayType {
			roots += len(val.Values)
		} else {
			roots++
		}
	}
	if roots != 1 {
		return fmt.Errorf(
			"%w: an XML document needs exactly one root element, got %d, use --xml-root=name to wrap the output in a root element",
			ErrEncodeConstraint, roots)
	}
	if es.xmlDTD {
		if err := writeString(w, `<?xml version="1.0" encoding="utf-8"?>`+"\n"); err != nil {
			return err
		}
	}
	for i, f := range node.Fields {
		if err := es.xmlElement(f.String, node.Values[i], 0, w); err != nil {
			return err
		}
	}
	return nil
}

func (es *EncState) xmlElement(name string, val *ir.Node, depth int, w io.Writer) error {
	if val.Type == ir.ArrayType {
		for _, item := range val.Values {
			if item.Type == ir.ArrayType {
				return fmt.Errorf("%w: XML cannot represent an array of arrays", ErrEncoding)
			}
			if err := es.xmlElement(name, item, depth, w); err != nil {
				return err
			}
		}
		return nil
	}

	pad := strings.Repeat(" ", es.indent*depth)
	if val.Type != ir.ObjectType {
		text, err := xmlScalarText(val)
		if err != nil {
			return err
		}
		return writeString(w, pad+"<"+name+">"+escapeXMLText(text)+"</"+name+">\n")
	}

	var open strings.Builder
	open.WriteString(pad + "<" + name)
	text := ""
	hasText := false
	var childNames []string
	var children []*ir.Node
	for i, f := range val.Fields {
		child := val.Values[i]
		switch {
		case strings.HasPrefix(f.String, "@"):
			av, err := xmlScalarText(child)
			if err != nil {
				return fmt.Errorf("%w: attribute %s: not a scalar", ErrEncoding, f.String)
			}
			open.WriteString(" " + f.String[1:] + `="` + escapeXMLAttr(av) + `"`)
		case f.String == "#text":
			tv, err := xmlScalarText(child)
			if err != nil {
				return fmt.Errorf("%w: #text: not a scalar", ErrEncoding)
			}
			text = tv
			hasText = true
		default:
			childNames = append(childNames, f.String)
			children = append(children, child)
		}
	}
	open.WriteString(">")
	if len(children) == 0 {
		return writeString(w, open.String()+escapeXMLText(text)+"</"+name+">\n")
	}
	if hasText {
		return fmt.Errorf("%w: element %s mixes #text with child elements", ErrEncoding, name)
	}
	if err := writeString(w, open.String()+"\n"); err != nil {
		return err
	}
	for i, cn := range childNames {
		if err := es.xmlElement(cn, children[i], depth+1, w); err != nil {
			return err
		}
	}
	return writeString(w, pad+"</"+name+">\n")
}

func xmlScalarText(node *ir.Node) (string, error) {
	switch node.Type {
	case ir.NullType:
		return "", nil
	case ir.BoolType:
		if node.Bool {
			return "true", nil
		}
		return "false", nil
	case ir.NumberType:
		if node.Number != "" {
			return node.Number, nil
		}
		if node.Int64 != nil {
			return strconv.FormatInt(*node.Int64, 10), nil
		}
		if node.Float64 != nil {
			return strconv.FormatFloat(*node.Float64, 'g', -1, 64), nil
		}
		return "0", nil
	case ir.StringType:
		return node.String, nil
	default:
		return "", fmt.Errorf("%w: %s has no XML text form", ErrEncoding, node.Type)
	}
}

var xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var xmlAttrEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", "&#10;", "\t", "&#9;")

func escapeXMLText(s string) string {
	return xmlTextEscaper.Replace(s)
}

func escapeXMLAttr(s string) string {
	return xmlAttrEscaper.Replace(s)
}
