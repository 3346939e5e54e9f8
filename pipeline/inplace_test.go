package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/expr-lang/expr"

	"github.com/vergenzt/yq/format"
)

func TestRunInPlaceConfigErrors(t *testing.T) {
	file := Input{Path: "a.yaml"}
	tests := []struct {
		name string
		req  *Request
	}{
		{
			name: "only the yaml outputs can rewrite in place",
			req:  &Request{TargetFormat: format.JSONFormat, Inputs: []Input{file}},
		},
		{
			name: "no inputs",
			req:  &Request{TargetFormat: format.YAMLFormat},
		},
		{
			name: "stdin input",
			req:  &Request{TargetFormat: format.YAMLFormat, Inputs: []Input{file, {}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := RunInPlace(tt.req)
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("want ErrConfig, got %v", err)
			}
			if st != 1 {
				t.Errorf("status = %d, want 1", st)
			}
		})
	}
}

func TestRunInPlace(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml")}
	contents := []string{"n: 1\n", "n: 2\n"}
	inputs := make([]Input, len(paths))
	for i, p := range paths {
		if err := os.WriteFile(p, []byte(contents[i]), 0o644); err != nil {
			t.Fatal(err)
		}
		inputs[i] = Input{Path: p, Reader: strings.NewReader(contents[i])}
	}
	fake := &fakeRunner{transform: func(doc json.RawMessage) (json.RawMessage, error) {
		var v any
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, err
		}
		res, err := expr.Eval(`{"n": doc.n * 10}`, map[string]any{"doc": v})
		if err != nil {
			return nil, err
		}
		return json.Marshal(res)
	}}
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs:       inputs,
		InPlace:      true,
		Stderr:       io.Discard,
		Runner:       fake,
	}
	st, err := RunInPlace(req)
	if err != nil || st != 0 {
		t.Fatalf("RunInPlace = %d, %v", st, err)
	}
	for i, want := range []string{"n: 10\n", "n: 20\n"} {
		if got := readFile(t, paths[i]); got != want {
			t.Errorf("%s = %q, want %q", paths[i], got, want)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestRunInPlaceContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(bad, []byte("a: [1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(good, []byte("n: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fake := &fakeRunner{transform: func(doc json.RawMessage) (json.RawMessage, error) {
		var v map[string]any
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, err
		}
		v["seen"] = true
		return json.Marshal(v)
	}}
	var errOut bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs: []Input{
			{Path: bad, Reader: strings.NewReader("a: [1\n")},
			{Path: good, Reader: strings.NewReader("n: 2\n")},
		},
		InPlace: true,
		Stderr:  &errOut,
		Runner:  fake,
	}
	st, err := RunInPlace(req)
	if err != nil {
		t.Fatalf("RunInPlace: %v", err)
	}
	if st != 1 {
		t.Errorf("status = %d, want 1", st)
	}
	if got := readFile(t, bad); got != "a: [1\n" {
		t.Errorf("failed input was rewritten: %q", got)
	}
	if got := readFile(t, good); got != "n: 2\nseen: true\n" {
		t.Errorf("good input = %q", got)
	}
	if errOut.Len() == 0 {
		t.Error("no warning for the failed file")
	}
}
