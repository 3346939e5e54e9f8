package ir

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

type Node struct {
	Type        Type
	Parent      *Node
	ParentIndex int
	ParentField string
	Fields      []*Node
	Values      []*Node

	// Annotations, populated by decoders and honored by encoders.
	Tag         string
	Style       Style
	HeadComment string
	LineComment string

	String  string
	Bool    bool
	Number  string
	Float64 *float64
	Int64   *int64
}

func (y *Node) WithTag(tag string) *Node {
	y.Tag = tag
	return y
}

func (y *Node) WithStyle(s Style) *Node {
	y.Style = s
	return y
}

func (y *Node) Clone() *Node {
	res := &Node{}
	return y.CloneTo(res)
}

func (y *Node) CloneTo(dst *Node) *Node {
	dst.Parent = y.Parent
	dst.ParentIndex = y.ParentIndex
	dst.ParentField = y.ParentField
	dst.Type = y.Type
	dst.Tag = y.Tag
	dst.Style = y.Style
	dst.HeadComment = y.HeadComment
	dst.LineComment = y.LineComment
	dst.Values = make([]*Node, len(y.Values))
	dst.Fields = make([]*Node, len(y.Fields))
	for i, yv := range y.Values {
		dstI := &Node{}
		yv.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dstI.ParentField = yv.ParentField
		dst.Values[i] = dstI
	}
	for i, yf := range y.Fields {
		dstI := &Node{}
		yf.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dstI.ParentField = yf.String
		dst.Fields[i] = dstI
	}

	dst.String = y.String
	dst.Number = y.Number
	if y.Float64 != nil {
		f := *y.Float64
		dst.Float64 = &f
	}
	if y.Int64 != nil {
		i := *y.Int64
		dst.Int64 = &i
	}
	dst.Bool = y.Bool
	return dst
}

func FromString(v string) *Node {
	return FromStringAt(&Node{}, v)
}

func FromStringAt(p *Node, v string) *Node {
	p.Type = StringType
	p.String = v
	return p
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

// FromNumber builds a number node from a source lexeme, keeping the
// lexeme so encoders can reproduce it verbatim where the target
// grammar allows.
func FromNumber(lexeme string, i64 *int64, f64 *float64) *Node {
	return &Node{
		Type:    NumberType,
		Number:  lexeme,
		Int64:   i64,
		Float64: f64,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

func Null() *Node {
	return &Node{Type: NullType}
}

func NewObject() *Node {
	return &Node{Type: ObjectType}
}

func NewArray() *Node {
	return &Node{Type: ArrayType}
}

// FieldIndex returns the index of key in y's fields, or -1.
func (y *Node) FieldIndex(key string) int {
	for i := range y.Fields {
		if y.Fields[i].String == key {
			return i
		}
	}
	return -1
}

// SetField appends (key, val) to an object. If key is already present
// the value is replaced at the key's first-seen position (last wins).
func (y *Node) SetField(key string, val *Node) *Node {
	if i := y.FieldIndex(key); i != -1 {
		val.Parent = y
		val.ParentIndex = i
		val.ParentField = key
		y.Values[i] = val
		return y
	}
	i := len(y.Fields)
	yField := &Node{
		Parent:      y,
		ParentIndex: i,
		ParentField: key,
		Type:        StringType,
		String:      key,
	}
	val.Parent = y
	val.ParentIndex = i
	val.ParentField = key
	y.Fields = append(y.Fields, yField)
	y.Values = append(y.Values, val)
	return y
}

// Append adds val to an array node.
func (y *Node) Append(val *Node) *Node {
	val.Parent = y
	val.ParentIndex = len(y.Values)
	y.Values = append(y.Values, val)
	return y
}

func Get(y *Node, field string) *Node {
	if i := y.FieldIndex(field); i != -1 {
		return y.Values[i]
	}
	return nil
}

func ToMap(node *Node) map[string]*Node {
	if node.Type != ObjectType {
		return nil
	}
	res := make(map[string]*Node, len(node.Fields))
	for i := range node.Fields {
		res[node.Fields[i].String] = node.Values[i]
	}
	return res
}

func FromMap(yMap map[string]*Node) *Node {
	res := &Node{}
	res.Type = ObjectType
	keys := slices.Sorted(maps.Keys(yMap))
	for _, key := range keys {
		res.SetField(key, yMap[key])
	}
	return res
}

func FromSlice(ySlice []*Node) *Node {
	res := &Node{
		Type: ArrayType,
	}
	res.Values = make([]*Node, len(ySlice))
	for i, y := range ySlice {
		res.Values[i] = y
		y.Parent = res
		y.ParentIndex = i
	}
	return res
}

func (y *Node) Visit(f func(y *Node, isPost bool) (bool, error)) error {
	dive, err := f(y, false)
	if err != nil {
		return err
	}
	if dive {
		for _, yy := range y.Values {
			if err := yy.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(y, true); err != nil {
		return err
	}
	return nil
}

// Path returns the JSONPath-style position of this node in the tree,
// for error reporting.
//
// Examples:
//   - Root node → "$"
//   - Object field "a" → "$.a"
//   - Array element at index 0 → "$[0]"
//   - Nested "$.a.b[0]"
func (y *Node) Path() string {
	if y.Parent == nil {
		return "$"
	}
	switch y.Parent.Type {
	case ObjectType:
		f := y.ParentField
		if strings.ContainsAny(f, ". []{}\"'") || f == "" {
			f = "[" + strconv.Quote(f) + "]"
			return y.Parent.Path() + f
		}
		return y.Parent.Path() + "." + f
	case ArrayType:
		return y.Parent.Path() + "[" + strconv.Itoa(y.ParentIndex) + "]"
	default:
		panic("parent but not in container")
	}
}
