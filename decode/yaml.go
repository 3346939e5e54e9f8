package decode

import (
	"math"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"

	"github.com/vergenzt/yq/ir"
)

func decodeYAML(data []byte, filename string) ([]*ir.Node, error) {
	f, err := parser.ParseBytes(data, parser.ParseComments)
	if err != nil {
		return nil, errf(filename, "%v", err)
	}
	w := &yamlWalker{
		filename: filename,
		anchors:  map[string]*ir.Node{},
		inFlight: map[string]bool{},
	}
	var docs []*ir.Node
	for _, doc := range f.Docs {
		if doc.Body == nil {
			continue
		}
		node, err := w.walk(doc.Body)
		if err != nil {
			return nil, err
		}
		if node == nil {
			// comment-only document
			continue
		}
		docs = append(docs, node)
	}
	return docs, nil
}

type yamlWalker struct {
	filename string
	anchors  map[string]*ir.Node
	inFlight map[string]bool
}

func (w *yamlWalker) walk(n ast.Node) (*ir.Node, error) {
	var (
		res *ir.Node
		err error
	)
	switch x := n.(type) {
	case *ast.NullNode:
		res = ir.Null()
	case *ast.BoolNode:
		res = ir.FromBool(x.Value)
	case *ast.IntegerNode:
		res, err = w.walkInteger(x)
	case *ast.FloatNode:
		res = ir.FromNumber(tokenValue(x), nil, f64(x.Value))
	case *ast.InfinityNode:
		res = ir.FromNumber(tokenValue(x), nil, f64(x.Value))
	case *ast.NanNode:
		res = ir.FromNumber(tokenValue(x), nil, f64(math.NaN()))
	case *ast.StringNode:
		res = ir.FromString(x.Value)
		if tk := x.GetToken(); tk != nil {
			switch tk.Type {
			case token.SingleQuoteType, token.DoubleQuoteType:
				res.Style = ir.QuotedStyle
			}
		}
	case *ast.LiteralNode:
		res, err = w.walkLiteral(x)
	case *ast.MappingNode:
		res, err = w.walkMapping(x.Values, x.IsFlowStyle)
	case *ast.MappingValueNode:
		// single-pair mapping
		res, err = w.walkMapping([]*ast.MappingValueNode{x}, false)
	case *ast.SequenceNode:
		res, err = w.walkSequence(x)
	case *ast.AnchorNode:
		res, err = w.walkAnchor(x)
	case *ast.AliasNode:
		res, err = w.walkAlias(x)
	case *ast.TagNode:
		res, err = w.walk(x.Value)
		if err == nil && res != nil && x.Start != nil {
			res.Tag = x.Start.Value
		}
	case *ast.CommentGroupNode:
		return nil, nil
	default:
		return nil, errf(w.filename, "unsupported yaml node %T", n)
	}
	if err != nil {
		return nil, err
	}
	if res != nil {
		w.attachComment(n, res)
	}
	return res, nil
}

func (w *yamlWalker) walkInteger(x *ast.IntegerNode) (*ir.Node, error) {
	lexeme := tokenValue(x)
	switch v := x.Value.(type) {
	case int64:
		return ir.FromNumber(lexeme, &v, nil), nil
	case uint64:
		if v <= math.MaxInt64 {
			i := int64(v)
			return ir.FromNumber(lexeme, &i, nil), nil
		}
		return ir.FromNumber(lexeme, nil, f64(float64(v))), nil
	case int:
		i := int64(v)
		return ir.FromNumber(lexeme, &i, nil), nil
	default:
		return nil, errf(w.filename, "unsupported integer representation %T", x.Value)
	}
}

func (w *yamlWalker) walkLiteral(x *ast.LiteralNode) (*ir.Node, error) {
	res := ir.FromString(x.Value.Value)
	res.Style = ir.LiteralStyle
	if x.Start != nil && strings.HasPrefix(x.Start.Value, ">") {
		res.Style = ir.FoldedStyle
	}
	return res, nil
}

func (w *yamlWalker) walkSequence(x *ast.SequenceNode) (*ir.Node, error) {
	res := ir.NewArray()
	if x.IsFlowStyle {
		res.Style = ir.FlowStyle
	}
	for _, v := range x.Values {
		node, err := w.walk(v)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		res.Append(node)
	}
	return res, nil
}

type yamlPair struct {
	key string
	val *ir.Node
}

func (w *yamlWalker) walkMapping(values []*ast.MappingValueNode, flow bool) (*ir.Node, error) {
	var (
		explicit []yamlPair
		merged   []yamlPair
		seen     = map[string]bool{}
	)
	for _, mv := range values {
		if _, isMerge := mv.Key.(*ast.MergeKeyNode); isMerge {
			mergePairs, err := w.walkMergeValue(mv.Value)
			if err != nil {
				return nil, err
			}
			for _, p := range mergePairs {
				// earlier merge sources win
				if hasPair(merged, p.key) {
					continue
				}
				merged = append(merged, p)
			}
			continue
		}
		key, err := w.mapKey(mv.Key)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, errf(w.filename, "duplicate key %q in mapping", key)
		}
		seen[key] = true
		val, err := w.walk(mv.Value)
		if err != nil {
			return nil, err
		}
		if val == nil {
			val = ir.Null()
		}
		w.attachComment(mv, val)
		explicit = append(explicit, yamlPair{key: key, val: val})
	}
	res := ir.NewObject()
	if flow {
		res.Style = ir.FlowStyle
	}
	// merged keys first; explicit keys override in place
	for _, p := range merged {
		res.SetField(p.key, p.val)
	}
	for _, p := range explicit {
		res.SetField(p.key, p.val)
	}
	return res, nil
}

// walkMergeValue flattens the value of a "<<" key: a mapping, or a
// sequence of mappings merged in order.
func (w *yamlWalker) walkMergeValue(v ast.Node) ([]yamlPair, error) {
	node, err := w.walk(v)
	if err != nil {
		return nil, err
	}
	var sources []*ir.Node
	switch node.Type {
	case ir.ObjectType:
		sources = []*ir.Node{node}
	case ir.ArrayType:
		sources = node.Values
	default:
		return nil, errf(w.filename, "cannot merge %s value", node.Type)
	}
	var pairs []yamlPair
	for _, src := range sources {
		if src.Type != ir.ObjectType {
			return nil, errf(w.filename, "cannot merge %s value", src.Type)
		}
		for i, f := range src.Fields {
			if hasPair(pairs, f.String) {
				continue
			}
			pairs = append(pairs, yamlPair{key: f.String, val: src.Values[i]})
		}
	}
	return pairs, nil
}

func hasPair(pairs []yamlPair, key string) bool {
	for i := range pairs {
		if pairs[i].key == key {
			return true
		}
	}
	return false
}

func (w *yamlWalker) mapKey(k ast.MapKeyNode) (string, error) {
	switch x := k.(type) {
	case *ast.StringNode:
		return x.Value, nil
	default:
		if tk := k.GetToken(); tk != nil {
			return tk.Value, nil
		}
		return "", errf(w.filename, "unsupported mapping key %T", k)
	}
}

func (w *yamlWalker) walkAnchor(x *ast.AnchorNode) (*ir.Node, error) {
	name := ""
	if tk := x.Name.GetToken(); tk != nil {
		name = tk.Value
	}
	if name != "" {
		if w.inFlight[name] {
			return nil, errf(w.filename, "recursive alias %q", name)
		}
		w.inFlight[name] = true
		defer delete(w.inFlight, name)
	}
	node, err := w.walk(x.Value)
	if err != nil {
		return nil, err
	}
	if name != "" && node != nil {
		w.anchors[name] = node
	}
	return node, nil
}

func (w *yamlWalker) walkAlias(x *ast.AliasNode) (*ir.Node, error) {
	name := ""
	if tk := x.Value.GetToken(); tk != nil {
		name = tk.Value
	}
	if w.inFlight[name] {
		return nil, errf(w.filename, "recursive alias %q", name)
	}
	node, ok := w.anchors[name]
	if !ok {
		return nil, errf(w.filename, "undefined alias %q", name)
	}
	return node.Clone(), nil
}

// attachComment records the node's comment group as a head or line
// comment, classified by whether the group starts on the node's line.
func (w *yamlWalker) attachComment(n ast.Node, res *ir.Node) {
	cg := n.GetComment()
	if cg == nil {
		return
	}
	text := commentText(cg)
	if text == "" {
		return
	}
	nodeLine := -1
	if tk := n.GetToken(); tk != nil && tk.Position != nil {
		nodeLine = tk.Position.Line
	}
	groupLine := -1
	if tk := cg.GetToken(); tk != nil && tk.Position != nil {
		groupLine = tk.Position.Line
	}
	if nodeLine != -1 && groupLine != -1 && groupLine < nodeLine {
		if res.HeadComment == "" {
			res.HeadComment = text
		}
		return
	}
	if res.LineComment == "" {
		res.LineComment = text
	}
}

func commentText(cg *ast.CommentGroupNode) string {
	lines := make([]string, 0, len(cg.Comments))
	for _, c := range cg.Comments {
		tk := c.GetToken()
		if tk == nil {
			continue
		}
		v := strings.TrimRight(tk.Value, "\n")
		if !strings.HasPrefix(v, "#") {
			v = "#" + v
		}
		lines = append(lines, v)
	}
	return strings.Join(lines, "\n")
}

func tokenValue(n ast.Node) string {
	if tk := n.GetToken(); tk != nil {
		return tk.Value
	}
	return ""
}
