// Package annotate implements the side channel that carries node
// annotations (tag, style, comments) through the filter process.
//
// Wrap turns every node into a two-key object using reserved sentinel
// keys: one holding the value (with wrapped children), one holding a
// list of annotation markers. The result is ordinary JSON, so any
// filter expression can still navigate it; the annotations survive as
// long as the filter passes the sentinel sub-structures through.
// Unwrap reverses the encoding and is deliberately tolerant of
// missing annotation entries, because the filter may strip them, but
// rejects structurally invalid sentinel shapes with an error naming
// the offending path.
package annotate

import (
	"fmt"
	"strings"

	"github.com/vergenzt/yq/debug"
	"github.com/vergenzt/yq/ir"
)

const (
	// ValueKey holds the wrapped node's value.
	ValueKey = "__yq_v__"
	// AnnotationKey holds the wrapped node's annotation markers.
	AnnotationKey = "__yq_a__"
)

// Wrap encodes y and its annotations into the sentinel shape. It
// fails if a document object already uses one of the sentinel keys,
// since the encoding could not be reversed unambiguously.
func Wrap(y *ir.Node) (*ir.Node, error) {
	res, err := wrap(y)
	if debug.Annotate() {
		if err != nil {
			debug.Logf("annotate: wrap: %v\n", err)
		} else {
			debug.Logf("annotate: wrapped %s document\n", y.Type)
		}
	}
	return res, err
}

func wrap(y *ir.Node) (*ir.Node, error) {
	var (
		val *ir.Node
		err error
	)
	switch y.Type {
	case ir.ObjectType:
		val = ir.NewObject()
		for i, f := range y.Fields {
			key := f.String
			if key == ValueKey || key == AnnotationKey {
				return nil, fmt.Errorf("%w: document key %q collides with sentinel at %s",
					ErrAnnotation, key, y.Path())
			}
			child, err := wrap(y.Values[i])
			if err != nil {
				return nil, err
			}
			val.SetField(key, child)
		}
	case ir.ArrayType:
		val = ir.NewArray()
		for _, v := range y.Values {
			child, err := wrap(v)
			if err != nil {
				return nil, err
			}
			val.Append(child)
		}
	default:
		val, err = bare(y)
		if err != nil {
			return nil, err
		}
	}
	res := ir.NewObject()
	res.SetField(ValueKey, val)
	res.SetField(AnnotationKey, markers(y))
	return res, nil
}

// Unwrap decodes the sentinel shape back into a node with annotation
// fields. Nodes the filter created from scratch carry no sentinels
// and pass through unannotated.
func Unwrap(y *ir.Node) (*ir.Node, error) {
	res, err := unwrap(y)
	if debug.Annotate() {
		if err != nil {
			debug.Logf("annotate: unwrap: %v\n", err)
		} else {
			debug.Logf("annotate: unwrapped %s document\n", res.Type)
		}
	}
	return res, err
}

func unwrap(y *ir.Node) (*ir.Node, error) {
	switch y.Type {
	case ir.ObjectType:
		val := ir.Get(y, ValueKey)
		ann := ir.Get(y, AnnotationKey)
		if val == nil && ann != nil {
			return nil, fmt.Errorf("%w: %q without %q at %s",
				ErrAnnotation, AnnotationKey, ValueKey, y.Path())
		}
		if val == nil {
			// plain object from the filter
			res := ir.NewObject()
			for i, f := range y.Fields {
				child, err := unwrap(y.Values[i])
				if err != nil {
					return nil, err
				}
				res.SetField(f.String, child)
			}
			return res, nil
		}
		res, err := unwrapValue(val)
		if err != nil {
			return nil, err
		}
		if ann != nil {
			if err := applyMarkers(res, ann); err != nil {
				return nil, err
			}
		}
		return res, nil
	case ir.ArrayType:
		res := ir.NewArray()
		for _, v := range y.Values {
			child, err := unwrap(v)
			if err != nil {
				return nil, err
			}
			res.Append(child)
		}
		return res, nil
	default:
		return bare(y)
	}
}

// unwrapValue handles the node stored under ValueKey: containers hold
// wrapped children, scalars are bare.
func unwrapValue(val *ir.Node) (*ir.Node, error) {
	switch val.Type {
	case ir.ObjectType:
		res := ir.NewObject()
		for i, f := range val.Fields {
			child, err := unwrap(val.Values[i])
			if err != nil {
				return nil, err
			}
			res.SetField(f.String, child)
		}
		return res, nil
	case ir.ArrayType:
		res := ir.NewArray()
		for _, v := range val.Values {
			child, err := unwrap(v)
			if err != nil {
				return nil, err
			}
			res.Append(child)
		}
		return res, nil
	default:
		return bare(val)
	}
}

// markers serializes y's annotation fields as a list of strings.
func markers(y *ir.Node) *ir.Node {
	res := ir.NewArray()
	if y.Tag != "" {
		res.Append(ir.FromString("tag=" + y.Tag))
	}
	if y.Style != ir.PlainStyle {
		res.Append(ir.FromString("style=" + y.Style.String()))
	}
	if y.HeadComment != "" {
		res.Append(ir.FromString("head=" + y.HeadComment))
	}
	if y.LineComment != "" {
		res.Append(ir.FromString("line=" + y.LineComment))
	}
	return res
}

func applyMarkers(res *ir.Node, ann *ir.Node) error {
	if ann.Type != ir.ArrayType {
		return fmt.Errorf("%w: %q is %s, not an array, at %s",
			ErrAnnotation, AnnotationKey, ann.Type, ann.Path())
	}
	for _, m := range ann.Values {
		if m.Type != ir.StringType {
			return fmt.Errorf("%w: %s annotation marker at %s",
				ErrAnnotation, m.Type, m.Path())
		}
		name, value, ok := strings.Cut(m.String, "=")
		if !ok {
			return fmt.Errorf("%w: malformed annotation marker %q at %s",
				ErrAnnotation, m.String, m.Path())
		}
		switch name {
		case "tag":
			res.Tag = value
		case "style":
			s, err := ir.ParseStyle(value)
			if err != nil {
				return fmt.Errorf("%w: %v at %s", ErrAnnotation, err, m.Path())
			}
			res.Style = s
		case "head":
			res.HeadComment = value
		case "line":
			res.LineComment = value
		default:
			return fmt.Errorf("%w: unknown annotation marker %q at %s",
				ErrAnnotation, name, m.Path())
		}
	}
	return nil
}

// bare copies a scalar without annotations or parent links.
func bare(y *ir.Node) (*ir.Node, error) {
	switch y.Type {
	case ir.NullType:
		return ir.Null(), nil
	case ir.BoolType:
		return ir.FromBool(y.Bool), nil
	case ir.StringType:
		return ir.FromString(y.String), nil
	case ir.NumberType:
		var (
			i64 *int64
			fl  *float64
		)
		if y.Int64 != nil {
			i := *y.Int64
			i64 = &i
		}
		if y.Float64 != nil {
			f := *y.Float64
			fl = &f
		}
		return ir.FromNumber(y.Number, i64, fl), nil
	default:
		return nil, fmt.Errorf("%w: cannot wrap %s scalar", ErrAnnotation, y.Type)
	}
}
