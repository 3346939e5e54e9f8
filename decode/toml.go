package decode

import (
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/vergenzt/yq/ir"
)

// decodeTOML walks the document expression by expression so that key
// order survives; unmarshalling into a map would lose it. Datetime
// scalars keep their source lexeme as strings.
func decodeTOML(data []byte, filename string) ([]*ir.Node, error) {
	w := &tomlWalker{filename: filename}
	root := ir.NewObject()
	cur := root

	p := &unstable.Parser{}
	p.Reset(data)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table:
			target, err := w.openTable(root, keyParts(e))
			if err != nil {
				return nil, err
			}
			cur = target
		case unstable.ArrayTable:
			target, err := w.openArrayTable(root, keyParts(e))
			if err != nil {
				return nil, err
			}
			cur = target
		case unstable.KeyValue:
			val, err := w.value(e.Value())
			if err != nil {
				return nil, err
			}
			if err := w.setKey(cur, keyParts(e), val); err != nil {
				return nil, err
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, errf(filename, "%v", err)
	}
	return []*ir.Node{root}, nil
}

type tomlWalker struct {
	filename string
}

func keyParts(e *unstable.Node) []string {
	var parts []string
	it := e.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// openTable navigates to (creating as needed) the object for a
// [a.b.c] header.
func (w *tomlWalker) openTable(root *ir.Node, parts []string) (*ir.Node, error) {
	cur := root
	for _, part := range parts {
		next := ir.Get(cur, part)
		switch {
		case next == nil:
			obj := ir.NewObject()
			cur.SetField(part, obj)
			cur = obj
		case next.Type == ir.ObjectType:
			cur = next
		case next.Type == ir.ArrayType && len(next.Values) > 0:
			// descend into the latest element of an array of tables
			last := next.Values[len(next.Values)-1]
			if last.Type != ir.ObjectType {
				return nil, errf(w.filename, "cannot extend %s at key %q", last.Type, part)
			}
			cur = last
		default:
			return nil, errf(w.filename, "cannot redefine %s at key %q", next.Type, part)
		}
	}
	return cur, nil
}

// openArrayTable appends a fresh object for a [[a.b]] header and
// returns it.
func (w *tomlWalker) openArrayTable(root *ir.Node, parts []string) (*ir.Node, error) {
	if len(parts) == 0 {
		return nil, errf(w.filename, "empty array table key")
	}
	parent, err := w.openTable(root, parts[:len(parts)-1])
	if err != nil {
		return nil, err
	}
	last := parts[len(parts)-1]
	arr := ir.Get(parent, last)
	if arr == nil {
		arr = ir.NewArray()
		parent.SetField(last, arr)
	} else if arr.Type != ir.ArrayType {
		return nil, errf(w.filename, "cannot redefine %s as array of tables at key %q", arr.Type, last)
	}
	obj := ir.NewObject()
	arr.Append(obj)
	return obj, nil
}

func (w *tomlWalker) setKey(cur *ir.Node, parts []string, val *ir.Node) error {
	if len(parts) == 0 {
		return errf(w.filename, "empty key")
	}
	target, err := w.openTable(cur, parts[:len(parts)-1])
	if err != nil {
		return err
	}
	last := parts[len(parts)-1]
	if ir.Get(target, last) != nil {
		return errf(w.filename, "duplicate key %q", strings.Join(parts, "."))
	}
	target.SetField(last, val)
	return nil
}

func (w *tomlWalker) value(n *unstable.Node) (*ir.Node, error) {
	switch n.Kind {
	case unstable.String:
		return ir.FromString(string(n.Data)), nil
	case unstable.Bool:
		return ir.FromBool(string(n.Data) == "true"), nil
	case unstable.Integer:
		return w.integer(string(n.Data))
	case unstable.Float:
		return w.float(string(n.Data))
	case unstable.DateTime, unstable.LocalDateTime, unstable.LocalDate, unstable.LocalTime:
		return ir.FromString(string(n.Data)), nil
	case unstable.Array:
		res := ir.NewArray()
		it := n.Children()
		for it.Next() {
			v, err := w.value(it.Node())
			if err != nil {
				return nil, err
			}
			res.Append(v)
		}
		return res, nil
	case unstable.InlineTable:
		res := ir.NewObject()
		it := n.Children()
		for it.Next() {
			kv := it.Node()
			v, err := w.value(kv.Value())
			if err != nil {
				return nil, err
			}
			if err := w.setKey(res, keyParts(kv), v); err != nil {
				return nil, err
			}
		}
		return res, nil
	default:
		return nil, errf(w.filename, "unsupported toml value kind %v", n.Kind)
	}
}

func (w *tomlWalker) integer(lexeme string) (*ir.Node, error) {
	i, err := strconv.ParseInt(lexeme, 0, 64)
	if err != nil {
		// 0 base handles 0x/0o/0b and underscores; plain decimals
		// with underscores need them stripped.
		i, err = strconv.ParseInt(strings.ReplaceAll(lexeme, "_", ""), 10, 64)
		if err != nil {
			return nil, errf(w.filename, "invalid integer %q", lexeme)
		}
	}
	return ir.FromNumber(lexeme, &i, nil), nil
}

func (w *tomlWalker) float(lexeme string) (*ir.Node, error) {
	s := strings.ReplaceAll(lexeme, "_", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		switch s {
		case "inf", "+inf":
			return ir.FromNumber(lexeme, nil, f64(inf(1))), nil
		case "-inf":
			return ir.FromNumber(lexeme, nil, f64(inf(-1))), nil
		case "nan", "+nan", "-nan":
			return ir.FromNumber(lexeme, nil, f64(nan())), nil
		}
		return nil, errf(w.filename, "invalid float %q", lexeme)
	}
	return ir.FromNumber(lexeme, nil, &f), nil
}
