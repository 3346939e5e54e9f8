package encode

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/vergenzt/yq/decode"
	"github.com/vergenzt/yq/format"
	"github.com/vergenzt/yq/ir"
)

func encodeString(t *testing.T, node *ir.Node, opts ...EncodeOption) string {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := Encode(node, buf, opts...); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf.String()
}

func checkGolden(t *testing.T, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	t.Errorf("output mismatch (want vs got):\n%s", dmp.DiffPrettyText(diffs))
}

func obj(pairs ...any) *ir.Node {
	res := ir.NewObject()
	for i := 0; i < len(pairs); i += 2 {
		res.SetField(pairs[i].(string), pairs[i+1].(*ir.Node))
	}
	return res
}

func arr(vals ...*ir.Node) *ir.Node {
	res := ir.NewArray()
	for _, v := range vals {
		res.Append(v)
	}
	return res
}

func styled(y *ir.Node, s ir.Style) *ir.Node { return y.WithStyle(s) }

func TestEncodeYAML(t *testing.T) {
	tests := []struct {
		name string
		in   *ir.Node
		opts []EncodeOption
		want string
	}{
		{
			name: "scalars",
			in: obj("i", ir.FromInt(1), "f", ir.FromFloat(1.5), "s", ir.FromString("str"),
				"b", ir.FromBool(true), "n", ir.Null()),
			want: "i: 1\nf: 1.5\ns: str\nb: true\nn: null\n",
		},
		{
			name: "quoting",
			in: obj("empty", ir.FromString(""), "num", ir.FromString("42"),
				"booly", ir.FromString("true"), "colon", ir.FromString("a: b"),
				"hash", ir.FromString("x #y")),
			want: "empty: \"\"\nnum: \"42\"\nbooly: \"true\"\ncolon: \"a: b\"\nhash: \"x #y\"\n",
		},
		{
			name: "nested map",
			in:   obj("a", obj("b", ir.FromInt(2), "c", ir.FromInt(3))),
			want: "a:\n  b: 2\n  c: 3\n",
		},
		{
			name: "sequence under key",
			in:   obj("a", arr(ir.FromInt(1), ir.FromInt(2))),
			want: "a:\n  - 1\n  - 2\n",
		},
		{
			name: "indentless sequence",
			in:   obj("a", arr(ir.FromInt(1), ir.FromInt(2))),
			opts: []EncodeOption{Indentless(true)},
			want: "a:\n- 1\n- 2\n",
		},
		{
			name: "root sequence",
			in:   arr(ir.FromInt(1), ir.FromInt(2)),
			want: "- 1\n- 2\n",
		},
		{
			name: "map element starts on the dash line",
			in:   arr(obj("a", ir.FromInt(1), "b", ir.FromInt(2))),
			want: "- a: 1\n  b: 2\n",
		},
		{
			name: "flow styles",
			in: obj("m", styled(obj("x", ir.FromInt(1)), ir.FlowStyle),
				"l", styled(arr(ir.FromInt(1), ir.FromInt(2)), ir.FlowStyle)),
			want: "m: {x: 1}\nl: [1, 2]\n",
		},
		{
			name: "empty containers are flow",
			in:   obj("m", ir.NewObject(), "l", ir.NewArray()),
			want: "m: {}\nl: []\n",
		},
		{
			name: "quoted style",
			in:   obj("s", styled(ir.FromString("hi"), ir.QuotedStyle)),
			want: "s: \"hi\"\n",
		},
		{
			name: "literal block",
			in:   obj("s", styled(ir.FromString("line1\nline2\n"), ir.LiteralStyle)),
			want: "s: |\n  line1\n  line2\n",
		},
		{
			name: "literal without trailing newline",
			in:   obj("s", styled(ir.FromString("abc"), ir.LiteralStyle)),
			want: "s: |-\n  abc\n",
		},
		{
			name: "folded block",
			in:   obj("s", styled(ir.FromString("hello world"), ir.FoldedStyle)),
			want: "s: >-\n  hello world\n",
		},
		{
			name: "tagged scalar",
			in:   obj("k", ir.FromString("v").WithTag("!note")),
			want: "k: !note v\n",
		},
		{
			name: "tagged map",
			in:   obj("k", obj("a", ir.FromInt(1)).WithTag("!cfg")),
			want: "k: !cfg\n  a: 1\n",
		},
		{
			name: "non-finite floats",
			in: obj("a", ir.FromFloat(math.Inf(1)), "b", ir.FromFloat(math.Inf(-1)),
				"c", ir.FromFloat(math.NaN())),
			want: "a: .inf\nb: -.inf\nc: .nan\n",
		},
		{
			name: "root scalar",
			in:   ir.FromString("hi"),
			want: "hi\n",
		},
		{
			name: "root literal",
			in:   styled(ir.FromString("a\nb\n"), ir.LiteralStyle),
			want: "|\n  a\n  b\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkGolden(t, encodeString(t, tt.in, tt.opts...), tt.want)
		})
	}
}

func TestEncodeYAMLComments(t *testing.T) {
	val := ir.FromInt(1)
	val.LineComment = "# here"
	doc := obj("a", val)
	b := ir.FromInt(2)
	b.HeadComment = "# note"
	doc.SetField("b", b)

	want := "a: 1 # here\n# note\nb: 2\n"
	checkGolden(t, encodeString(t, doc), want)
}

func TestEncodeYAMLWidthFolds(t *testing.T) {
	long := "aaaa bbbb cccc dddd eeee"
	out := encodeString(t, obj("k", ir.FromString(long)), Width(20))
	if !strings.Contains(out, "\n  ") {
		t.Fatalf("long plain scalar did not fold: %q", out)
	}
	var m map[string]string
	if err := yaml.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("emitted YAML does not parse: %v\n%s", err, out)
	}
	if m["k"] != long {
		t.Errorf("folding changed the value: %q", m["k"])
	}
}

// the quoting rules must make an independent parser read our strings
// back as strings
func TestEncodeYAMLQuotingSurvivesParse(t *testing.T) {
	values := []string{"", "42", "1.5", "true", "null", "yes", "a: b", "x #y", "- lead", "a\nb"}
	doc := ir.NewObject()
	for i, v := range values {
		doc.SetField(string(rune('a'+i)), ir.FromString(v))
	}
	out := encodeString(t, doc)
	var m map[string]string
	if err := yaml.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("emitted YAML does not parse: %v\n%s", err, out)
	}
	for i, v := range values {
		if got := m[string(rune('a'+i))]; got != v {
			t.Errorf("value %q read back as %q", v, got)
		}
	}
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	docs := []*ir.Node{
		obj("a", ir.FromInt(1), "b", arr(ir.FromString("x"), obj("c", ir.Null()))),
		arr(styled(ir.FromString("q"), ir.QuotedStyle), styled(obj("f", ir.FromInt(1)), ir.FlowStyle)),
		obj("lit", styled(ir.FromString("l1\nl2\n"), ir.LiteralStyle), "t", ir.FromString("v").WithTag("!x")),
	}
	for _, doc := range docs {
		out := encodeString(t, doc)
		d := decode.NewDecoder(strings.NewReader(out), decode.DecodeFormat(format.YAMLFormat))
		back, err := d.Next()
		if err != nil {
			t.Fatalf("decoding our own output: %v\n%s", err, out)
		}
		if !ir.Equal(back, doc) {
			backJSON, _ := ir.ToJSON(back)
			docJSON, _ := ir.ToJSON(doc)
			t.Errorf("round trip changed the document:\nin:  %s\nout: %s", docJSON, backJSON)
		}
		if _, err := d.Next(); err != io.EOF {
			t.Errorf("round trip produced extra documents: %v", err)
		}
	}
}

func TestEncodeJSONTarget(t *testing.T) {
	doc := obj("b", ir.FromInt(1), "a", arr(ir.Null(), ir.FromBool(false)))
	got := encodeString(t, doc, EncodeFormat(format.JSONFormat))
	checkGolden(t, got, "{\"b\":1,\"a\":[null,false]}\n")
}
