package decode

import (
	"bytes"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/vergenzt/yq/ir"
)

// decodeXML maps an XML document onto the IR with the usual
// dictionary conventions: attributes become "@name" keys, text
// content becomes "#text" (or a bare string when the element has
// nothing else), and repeated sibling elements collapse into arrays.
// Entity expansion is disabled.
func decodeXML(data []byte, filename string) ([]*ir.Node, error) {
	doc, err := xmlquery.ParseWithOptions(bytes.NewReader(data), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict: true,
			Entity: map[string]string{},
		},
	})
	if err != nil {
		return nil, errf(filename, "%v", err)
	}
	var root *xmlquery.Node
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		if root != nil {
			return nil, errf(filename, "multiple root elements")
		}
		root = child
	}
	if root == nil {
		return nil, errf(filename, "no root element")
	}
	res := ir.NewObject()
	res.SetField(elementName(root), elementValue(root))
	clearRepeatedTags(res)
	return []*ir.Node{res}, nil
}

func elementName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

func elementValue(n *xmlquery.Node) *ir.Node {
	var (
		text     strings.Builder
		children []*xmlquery.Node
	)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			children = append(children, child)
		case xmlquery.TextNode, xmlquery.CharDataNode:
			t := strings.TrimSpace(child.Data)
			if t == "" {
				continue
			}
			if text.Len() > 0 {
				text.WriteByte('\n')
			}
			text.WriteString(t)
		}
	}
	if len(n.Attr) == 0 && len(children) == 0 {
		if text.Len() == 0 {
			return ir.Null()
		}
		return ir.FromString(text.String())
	}

	res := ir.NewObject()
	for _, attr := range n.Attr {
		name := attr.Name.Local
		if attr.Name.Space != "" {
			name = attr.Name.Space + ":" + name
		}
		res.SetField("@"+name, ir.FromString(attr.Value))
	}
	if text.Len() > 0 {
		res.SetField("#text", ir.FromString(text.String()))
	}
	for _, child := range children {
		appendChild(res, elementName(child), elementValue(child))
	}
	return res
}

// appendChild inserts a child element value, collapsing repeated
// names into an array at the first occurrence's position.
func appendChild(obj *ir.Node, name string, val *ir.Node) {
	i := obj.FieldIndex(name)
	if i == -1 {
		obj.SetField(name, val)
		return
	}
	existing := obj.Values[i]
	if existing.Type == ir.ArrayType && existing.Tag == repeatedTag {
		existing.Append(val)
		return
	}
	arr := ir.NewArray()
	arr.Tag = repeatedTag
	arr.Append(existing)
	arr.Append(val)
	obj.SetField(name, arr)
}

// repeatedTag marks arrays synthesized from repeated sibling
// elements, so a later literal array child is not merged into one.
// It is cleared before the document leaves the decoder.
const repeatedTag = "!repeated"

func clearRepeatedTags(y *ir.Node) {
	y.Visit(func(n *ir.Node, isPost bool) (bool, error) {
		if !isPost && n.Tag == repeatedTag {
			n.Tag = ""
		}
		return true, nil
	})
}
