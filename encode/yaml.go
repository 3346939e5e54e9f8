package encode

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vergenzt/yq/ir"
)

func (es *EncState) encodeYAMLDoc(node *ir.Node, w io.Writer) error {
	if node.HeadComment != "" {
		for _, ln := range strings.Split(node.HeadComment, "\n") {
			if err := es.write(w, ln); err != nil {
				return err
			}
			if err := writeString(w, "\n"); err != nil {
				return err
			}
			es.col = 0
		}
	}
	if err := es.encodeNode(node, w, true); err != nil {
		return err
	}
	return writeString(w, "\n")
}

// encodeNode renders node starting at the current position.
// inlineFirst suppresses the newline before the first mapping key or
// sequence marker, for the compact form after "- " and at document
// start.
func (es *EncState) encodeNode(node *ir.Node, w io.Writer, inlineFirst bool) error {
	switch node.Type {
	case ir.ObjectType:
		if node.Style == ir.FlowStyle || len(node.Fields) == 0 {
			return es.writeFlow(node, w)
		}
		return es.encodeBlockMap(node, w, inlineFirst)
	case ir.ArrayType:
		if node.Style == ir.FlowStyle || len(node.Values) == 0 {
			return es.writeFlow(node, w)
		}
		return es.encodeBlockSeq(node, w, inlineFirst)
	case ir.StringType:
		if node.Style == ir.LiteralStyle || node.Style == ir.FoldedStyle {
			return es.encodeBlockScalar(node, w)
		}
		return es.writeScalar(node, w)
	default:
		return es.writeScalar(node, w)
	}
}

func (es *EncState) encodeBlockMap(node *ir.Node, w io.Writer, inlineFirst bool) error {
	for i, f := range node.Fields {
		val := node.Values[i]
		needNL := !(i == 0 && inlineFirst)
		nl := func() error {
			if needNL {
				return es.writeNL(w)
			}
			needNL = true
			return nil
		}
		if val.HeadComment != "" {
			for _, ln := range strings.Split(val.HeadComment, "\n") {
				if err := nl(); err != nil {
					return err
				}
				if err := es.write(w, ln); err != nil {
					return err
				}
			}
		}
		if err := nl(); err != nil {
			return err
		}
		if err := es.write(w, quoteScalar(f.String)+":"); err != nil {
			return err
		}
		if err := es.encodeValueAfterKey(val, w); err != nil {
			return err
		}
	}
	return nil
}

func (es *EncState) encodeValueAfterKey(val *ir.Node, w io.Writer) error {
	switch val.Type {
	case ir.ObjectType:
		if val.Style == ir.FlowStyle || len(val.Fields) == 0 {
			if err := es.write(w, " "); err != nil {
				return err
			}
			return es.writeFlow(val, w)
		}
		if err := es.writeContainerSuffix(val, w); err != nil {
			return err
		}
		es.depth++
		err := es.encodeNode(val, w, false)
		es.depth--
		return err
	case ir.ArrayType:
		if val.Style == ir.FlowStyle || len(val.Values) == 0 {
			if err := es.write(w, " "); err != nil {
				return err
			}
			return es.writeFlow(val, w)
		}
		if err := es.writeContainerSuffix(val, w); err != nil {
			return err
		}
		if !es.indentless {
			es.depth++
		}
		err := es.encodeNode(val, w, false)
		if !es.indentless {
			es.depth--
		}
		return err
	case ir.StringType:
		if val.Style == ir.LiteralStyle || val.Style == ir.FoldedStyle {
			if err := es.write(w, " "); err != nil {
				return err
			}
			return es.encodeBlockScalar(val, w)
		}
		fallthrough
	default:
		if err := es.write(w, " "); err != nil {
			return err
		}
		return es.writeScalar(val, w)
	}
}

// writeContainerSuffix finishes the "key:" line of a block container
// value: optional tag and line comment stay on the key's line.
func (es *EncState) writeContainerSuffix(val *ir.Node, w io.Writer) error {
	if val.Tag != "" {
		if err := es.write(w, " "+val.Tag); err != nil {
			return err
		}
	}
	if val.LineComment != "" {
		return es.write(w, " "+val.LineComment)
	}
	return nil
}

func (es *EncState) encodeBlockSeq(node *ir.Node, w io.Writer, inlineFirst bool) error {
	for i, val := range node.Values {
		needNL := !(i == 0 && inlineFirst)
		nl := func() error {
			if needNL {
				return es.writeNL(w)
			}
			needNL = true
			return nil
		}
		if val.HeadComment != "" {
			for _, ln := range strings.Split(val.HeadComment, "\n") {
				if err := nl(); err != nil {
					return err
				}
				if err := es.write(w, ln); err != nil {
					return err
				}
			}
		}
		if err := nl(); err != nil {
			return err
		}
		if err := es.write(w, "- "); err != nil {
			return err
		}
		if err := es.encodeElement(val, w); err != nil {
			return err
		}
	}
	return nil
}

func (es *EncState) encodeElement(val *ir.Node, w io.Writer) error {
	switch val.Type {
	case ir.ObjectType, ir.ArrayType:
		if val.Style == ir.FlowStyle || len(val.Fields)+len(val.Values) == 0 {
			return es.writeFlow(val, w)
		}
		if val.Tag != "" {
			if err := es.write(w, val.Tag); err != nil {
				return err
			}
			es.depth++
			err := es.encodeNode(val, w, false)
			es.depth--
			return err
		}
		es.depth++
		err := es.encodeNode(val, w, true)
		es.depth--
		return err
	case ir.StringType:
		if val.Style == ir.LiteralStyle || val.Style == ir.FoldedStyle {
			return es.encodeBlockScalar(val, w)
		}
		fallthrough
	default:
		return es.writeScalar(val, w)
	}
}

// writeScalar renders a leaf on the current line, folding long plain
// strings at the configured width.
func (es *EncState) writeScalar(node *ir.Node, w io.Writer) error {
	if node.Tag != "" {
		if err := es.write(w, node.Tag+" "); err != nil {
			return err
		}
	}
	s, err := scalarText(node)
	if err != nil {
		return err
	}
	if foldablePlain(node, s) && es.col+len(s) > es.width {
		if err := es.writePlainFolded(s, w); err != nil {
			return err
		}
	} else {
		if err := es.write(w, s); err != nil {
			return err
		}
	}
	if node.LineComment != "" {
		return es.write(w, " "+node.LineComment)
	}
	return nil
}

func foldablePlain(node *ir.Node, s string) bool {
	if node.Type != ir.StringType || node.Style != ir.PlainStyle {
		return false
	}
	if !strings.Contains(s, " ") {
		return false
	}
	// refolding joins lines with single spaces, so anything else is
	// lossy
	return !strings.Contains(s, "  ") && !strings.HasPrefix(s, "\"")
}

func (es *EncState) writePlainFolded(s string, w io.Writer) error {
	words := strings.Split(s, " ")
	es.depth++
	defer func() { es.depth-- }()
	for i, word := range words {
		if i > 0 {
			if es.col+1+len(word) > es.width {
				if err := es.writeNL(w); err != nil {
					return err
				}
			} else {
				if err := es.write(w, " "); err != nil {
					return err
				}
			}
		}
		if err := es.write(w, word); err != nil {
			return err
		}
	}
	return nil
}

// encodeBlockScalar writes a literal ("|") or folded (">") block,
// falling back to a quoted scalar when the content cannot survive the
// block form.
func (es *EncState) encodeBlockScalar(node *ir.Node, w io.Writer) error {
	content := node.String
	if !blockable(content) {
		return es.writeScalarQuoted(node, w)
	}
	folded := node.Style == ir.FoldedStyle && foldableBlock(content)
	indicator := "|"
	if folded {
		indicator = ">"
	}
	body, chomp := chompSplit(content)
	if node.Tag != "" {
		if err := es.write(w, node.Tag+" "); err != nil {
			return err
		}
	}
	if err := es.write(w, indicator+chomp); err != nil {
		return err
	}
	if node.LineComment != "" {
		if err := es.write(w, " "+node.LineComment); err != nil {
			return err
		}
	}
	es.depth++
	defer func() { es.depth-- }()
	lines := strings.Split(body, "\n")
	for i, ln := range lines {
		if folded {
			if i > 0 {
				if err := es.blankLine(w); err != nil {
					return err
				}
			}
			if err := es.writeNL(w); err != nil {
				return err
			}
			if err := es.writeWrapped(ln, w); err != nil {
				return err
			}
			continue
		}
		if err := es.writeNL(w); err != nil {
			return err
		}
		if err := es.write(w, ln); err != nil {
			return err
		}
	}
	return nil
}

func (es *EncState) writeScalarQuoted(node *ir.Node, w io.Writer) error {
	if node.Tag != "" {
		if err := es.write(w, node.Tag+" "); err != nil {
			return err
		}
	}
	if err := es.write(w, ir.QuoteJSON(node.String)); err != nil {
		return err
	}
	if node.LineComment != "" {
		return es.write(w, " "+node.LineComment)
	}
	return nil
}

// writeWrapped emits one logical line of a folded block, wrapping at
// width.
func (es *EncState) writeWrapped(ln string, w io.Writer) error {
	words := strings.Split(ln, " ")
	for i, word := range words {
		if i > 0 {
			if es.col+1+len(word) > es.width {
				if err := es.writeNL(w); err != nil {
					return err
				}
			} else {
				if err := es.write(w, " "); err != nil {
					return err
				}
			}
		}
		if err := es.write(w, word); err != nil {
			return err
		}
	}
	return nil
}

// blankLine emits an empty separator line (no indent).
func (es *EncState) blankLine(w io.Writer) error {
	if err := writeString(w, "\n"); err != nil {
		return err
	}
	es.col = 0
	return nil
}

// chompSplit splits trailing newlines off content and picks the block
// chomping indicator that restores them on parse.
func chompSplit(content string) (body, chomp string) {
	trimmed := strings.TrimRight(content, "\n")
	switch len(content) - len(trimmed) {
	case 0:
		return content, "-"
	case 1:
		return trimmed, ""
	default:
		return content[:len(content)-1], "+"
	}
}

func blockable(content string) bool {
	if content == "" || strings.TrimRight(content, "\n") == "" {
		return false
	}
	for _, ln := range strings.Split(content, "\n") {
		if strings.HasPrefix(ln, " ") || strings.HasPrefix(ln, "\t") {
			return false
		}
		for _, r := range ln {
			if r < 0x20 && r != '\t' {
				return false
			}
		}
	}
	return true
}

// foldableBlock reports whether content survives a fold/refold round
// trip: no interior blank lines, no double spaces, no trailing
// spaces.
func foldableBlock(content string) bool {
	body := strings.TrimRight(content, "\n")
	for _, ln := range strings.Split(body, "\n") {
		if ln == "" || strings.Contains(ln, "  ") || strings.HasSuffix(ln, " ") {
			return false
		}
	}
	return true
}

// writeFlow renders node inline in flow style.
func (es *EncState) writeFlow(node *ir.Node, w io.Writer) error {
	s, err := flowText(node)
	if err != nil {
		return err
	}
	if err := es.write(w, s); err != nil {
		return err
	}
	if node.LineComment != "" {
		return es.write(w, " "+node.LineComment)
	}
	return nil
}

func flowText(node *ir.Node) (string, error) {
	prefix := ""
	if node.Tag != "" {
		prefix = node.Tag + " "
	}
	switch node.Type {
	case ir.ObjectType:
		parts := make([]string, 0, len(node.Fields))
		for i, f := range node.Fields {
			v, err := flowText(node.Values[i])
			if err != nil {
				return "", err
			}
			parts = append(parts, quoteScalar(f.String)+": "+v)
		}
		return prefix + "{" + strings.Join(parts, ", ") + "}", nil
	case ir.ArrayType:
		parts := make([]string, 0, len(node.Values))
		for _, v := range node.Values {
			s, err := flowText(v)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return prefix + "[" + strings.Join(parts, ", ") + "]", nil
	default:
		s, err := scalarText(node)
		if err != nil {
			return "", err
		}
		return s, nil
	}
}

// scalarText renders a leaf value (without tag or comments). Flow
// context quotes block-styled strings.
func scalarText(node *ir.Node) (string, error) {
	switch node.Type {
	case ir.NullType:
		return "null", nil
	case ir.BoolType:
		if node.Bool {
			return "true", nil
		}
		return "false", nil
	case ir.NumberType:
		return yamlNumber(node), nil
	case ir.StringType:
		if node.Style == ir.QuotedStyle ||
			node.Style == ir.LiteralStyle || node.Style == ir.FoldedStyle ||
			needsQuote(node.String) {
			return ir.QuoteJSON(node.String), nil
		}
		return node.String, nil
	default:
		return "", fmt.Errorf("%w: %s is not a scalar", ErrEncoding, node.Type)
	}
}

func yamlNumber(node *ir.Node) string {
	switch node.Number {
	case "", "Infinity", "-Infinity", "NaN":
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
			return ".inf"
		case math.IsInf(f, -1):
			return "-.inf"
		case math.IsNaN(f):
			return ".nan"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "0"
}

// quoteScalar quotes s when YAML requires it, else returns it plain.
func quoteScalar(s string) string {
	if needsQuote(s) {
		return ir.QuoteJSON(s)
	}
	return s
}

func needsQuote(v string) bool {
	if v == "" {
		return true
	}
	if v != strings.TrimSpace(v) {
		return true
	}
	switch v[0] {
	case '-', '?', ':', ',', '[', ']', '{', '}', '#', '&', '*', '!', '|',
		'>', '\'', '"', '%', '@', '`':
		return true
	}
	if strings.ContainsAny(v, "\n\t\r") {
		return true
	}
	if strings.Contains(v, ": ") || strings.HasSuffix(v, ":") {
		return true
	}
	if strings.Contains(v, " #") {
		return true
	}
	switch strings.ToLower(v) {
	case "null", "~", "true", "false", "yes", "no", "on", "off":
		return true
	}
	if looksNumeric(v) {
		return true
	}
	for _, r := range v {
		if r < 0x20 {
			return true
		}
	}
	return false
}

func looksNumeric(v string) bool {
	if _, err := strconv.ParseInt(v, 0, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return true
	}
	switch v {
	case ".inf", "-.inf", "+.inf", ".nan":
		return true
	}
	return false
}
