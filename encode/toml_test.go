package encode

import (
	"errors"
	"strings"
	"testing"

	"github.com/vergenzt/yq/format"
	"github.com/vergenzt/yq/ir"
)

func TestEncodeTOML(t *testing.T) {
	tests := []struct {
		name string
		in   *ir.Node
		want string
	}{
		{
			name: "pairs",
			in:   obj("b", ir.FromInt(1), "a", ir.FromString("x")),
			want: "b = 1\na = \"x\"\n",
		},
		{
			name: "pairs come before tables",
			in:   obj("t", obj("x", ir.FromInt(1)), "k", ir.FromInt(2)),
			want: "k = 2\n[t]\nx = 1\n",
		},
		{
			name: "nested tables",
			in:   obj("a", obj("b", obj("c", ir.FromInt(1)))),
			want: "[a]\n[a.b]\nc = 1\n",
		},
		{
			name: "array of tables",
			in:   obj("item", arr(obj("id", ir.FromInt(1)), obj("id", ir.FromInt(2)))),
			want: "[[item]]\nid = 1\n[[item]]\nid = 2\n",
		},
		{
			name: "inline arrays",
			in:   obj("l", arr(ir.FromInt(1), ir.FromString("x"))),
			want: "l = [1, \"x\"]\n",
		},
		{
			name: "empty array stays inline",
			in:   obj("l", ir.NewArray()),
			want: "l = []\n",
		},
		{
			name: "quoted keys",
			in:   obj("a b", ir.FromInt(1)),
			want: "\"a b\" = 1\n",
		},
		{
			name: "booleans and floats",
			in:   obj("b", ir.FromBool(false), "f", ir.FromFloat(2.5)),
			want: "b = false\nf = 2.5\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeString(t, tt.in, EncodeFormat(format.TOMLFormat))
			checkGolden(t, got, tt.want)
		})
	}
}

func TestEncodeTOMLErrors(t *testing.T) {
	if err := Encode(arr(ir.FromInt(1)), &strings.Builder{},
		EncodeFormat(format.TOMLFormat)); !errors.Is(err, ErrEncodeConstraint) {
		t.Errorf("non-object top level: want ErrEncodeConstraint, got %v", err)
	}
	if err := Encode(obj("n", ir.Null()), &strings.Builder{},
		EncodeFormat(format.TOMLFormat)); !errors.Is(err, ErrEncoding) {
		t.Errorf("null value: want ErrEncoding, got %v", err)
	}
}
