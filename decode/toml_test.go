package decode

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/vergenzt/yq/format"
)

func TestTOMLDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"top level pairs", "b = 1\na = \"x\"\n", `{"b":1,"a":"x"}`},
		{"table", "[server]\nhost = \"h\"\nport = 8080\n", `{"server":{"host":"h","port":8080}}`},
		{"nested table", "[a.b]\nx = 1\n", `{"a":{"b":{"x":1}}}`},
		{
			"array of tables",
			"[[item]]\nid = 1\n[[item]]\nid = 2\n",
			`{"item":[{"id":1},{"id":2}]}`,
		},
		{"dotted key", "a.b.c = 1\n", `{"a":{"b":{"c":1}}}`},
		{"inline", "p = {x = 1, y = [1, 2]}\n", `{"p":{"x":1,"y":[1,2]}}`},
		{"underscore int", "n = 1_000\n", `{"n":1000}`},
		{"float", "f = 2.5\ninf = inf\n", `{"f":2.5,"inf":Infinity}`},
		{"bool", "on = true\noff = false\n", `{"on":true,"off":false}`},
		{
			"datetime becomes its lexeme",
			"ts = 1979-05-27T07:32:00Z\nd = 1979-05-27\n",
			`{"ts":"1979-05-27T07:32:00Z","d":"1979-05-27"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := decodeAll(t, format.TOMLFormat, tt.in)
			if len(docs) != 1 {
				t.Fatalf("got %d docs, want 1", len(docs))
			}
			if got := jsonOf(t, docs[0]); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTOMLDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"duplicate key", "a = 1\na = 2\n"},
		{"syntax", "a = = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(strings.NewReader(tt.in),
				DecodeFormat(format.TOMLFormat), Filename("in.toml"))
			_, err := d.Next()
			if err == nil || err == io.EOF {
				t.Fatal("want error")
			}
			if !errors.Is(err, ErrDecode) {
				t.Errorf("not an ErrDecode: %v", err)
			}
			if !strings.Contains(err.Error(), "in.toml") {
				t.Errorf("error does not name the input: %v", err)
			}
		})
	}
}
