package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/expr-lang/expr"

	"github.com/vergenzt/yq/encode"
	"github.com/vergenzt/yq/format"
)

// fakeRunner runs the filter in-process. Documents are read from the
// named pipes in argv order, then from stdin, put through transform
// one by one, and written out as newline-separated JSON.
type fakeRunner struct {
	transform func(doc json.RawMessage) (json.RawMessage, error)
	exit      int

	mu    sync.Mutex
	argvs [][]string
}

func identity(doc json.RawMessage) (json.RawMessage, error) { return doc, nil }

func (r *fakeRunner) argv(t *testing.T) []string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.argvs) == 0 {
		t.Fatal("the filter was never started")
	}
	return r.argvs[len(r.argvs)-1]
}

func (r *fakeRunner) Start(argv []string, stdout, stderr io.Writer) (Process, error) {
	r.mu.Lock()
	r.argvs = append(r.argvs, argv)
	r.mu.Unlock()

	stdinR, stdinW := io.Pipe()
	p := &fakeProcess{stdin: stdinW, stdinR: stdinR, exit: r.exit, done: make(chan struct{})}
	out := stdout
	if out == nil {
		outR, outW := io.Pipe()
		p.stdout = outR
		p.outW = outW
		out = outW
	}
	go func() {
		err := r.filter(argv, stdinR, out)
		if p.outW != nil {
			p.outW.CloseWithError(err)
		}
		close(p.done)
	}()
	return p, nil
}

func (r *fakeRunner) filter(argv []string, stdin io.Reader, out io.Writer) error {
	srcs := []io.Reader{}
	for _, arg := range argv[1:] {
		fi, err := os.Stat(arg)
		if err != nil || fi.Mode()&os.ModeNamedPipe == 0 {
			continue
		}
		f, err := os.Open(arg)
		if err != nil {
			return err
		}
		defer f.Close()
		srcs = append(srcs, f)
	}
	srcs = append(srcs, stdin)
	for _, src := range srcs {
		dec := json.NewDecoder(src)
		for {
			var doc json.RawMessage
			if err := dec.Decode(&doc); err == io.EOF {
				break
			} else if err != nil {
				return err
			}
			res, err := r.transform(doc)
			if err != nil {
				return err
			}
			if _, err := out.Write(append(res, '\n')); err != nil {
				return err
			}
		}
	}
	return nil
}

type fakeProcess struct {
	stdin  io.WriteCloser
	stdinR *io.PipeReader
	stdout io.Reader
	outW   *io.PipeWriter
	exit   int
	done   chan struct{}
}

func (p *fakeProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *fakeProcess) Stdout() io.Reader     { return p.stdout }

func (p *fakeProcess) Wait() (int, error) {
	<-p.done
	return p.exit, nil
}

func (p *fakeProcess) Kill() {
	p.stdinR.CloseWithError(errors.New("killed"))
	if p.outW != nil {
		p.outW.CloseWithError(errors.New("killed"))
	}
}

// exitRunner models a filter that dies on startup (a program compile
// error): it closes both ends of its world without ever opening the
// input pipes, leaving only an exit status.
type exitRunner struct {
	status int
}

func (r exitRunner) Start(argv []string, stdout, stderr io.Writer) (Process, error) {
	stdinR, stdinW := io.Pipe()
	stdinR.CloseWithError(io.ErrClosedPipe)
	outR, outW := io.Pipe()
	outW.Close()
	done := make(chan struct{})
	close(done)
	return &fakeProcess{
		stdin:  stdinW,
		stdinR: stdinR,
		stdout: outR,
		exit:   r.status,
		done:   done,
	}, nil
}

func stdinInput(doc string) Input {
	return Input{Reader: strings.NewReader(doc)}
}

func TestRunIdentity(t *testing.T) {
	fake := &fakeRunner{transform: identity}
	var out, errOut bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs:       []Input{stdinInput("a: 1\nb: x\n---\n- 1\n- 2\n")},
		JQArgs:       []string{"."},
		Stdout:       &out,
		Stderr:       &errOut,
		Runner:       fake,
	}
	st, err := Run(req)
	if err != nil || st != 0 {
		t.Fatalf("Run = %d, %v", st, err)
	}
	want := "a: 1\nb: x\n---\n- 1\n- 2\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
	if argv := fake.argv(t); len(argv) != 2 || argv[0] != "jq" || argv[1] != "." {
		t.Errorf("argv = %q", argv)
	}
}

func TestRunExprFilter(t *testing.T) {
	fake := &fakeRunner{transform: func(doc json.RawMessage) (json.RawMessage, error) {
		var v any
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, err
		}
		res, err := expr.Eval("doc.n * 2", map[string]any{"doc": v})
		if err != nil {
			return nil, err
		}
		return json.Marshal(res)
	}}
	var out bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs:       []Input{stdinInput("n: 21\n")},
		Stdout:       &out,
		Stderr:       io.Discard,
		Runner:       fake,
	}
	if st, err := Run(req); err != nil || st != 0 {
		t.Fatalf("Run = %d, %v", st, err)
	}
	if out.String() != "42\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestRunJSONPatchFilter(t *testing.T) {
	patch, err := jsonpatch.DecodePatch([]byte(`[{"op": "add", "path": "/b", "value": 2}]`))
	if err != nil {
		t.Fatal(err)
	}
	fake := &fakeRunner{transform: func(doc json.RawMessage) (json.RawMessage, error) {
		return patch.Apply(doc)
	}}
	var out bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs:       []Input{stdinInput("a: 1\n")},
		Stdout:       &out,
		Stderr:       io.Discard,
		Runner:       fake,
	}
	if st, err := Run(req); err != nil || st != 0 {
		t.Fatalf("Run = %d, %v", st, err)
	}
	if out.String() != "a: 1\nb: 2\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestRunFileInputs(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRunner{transform: identity}
	var out bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs: []Input{
			{Path: filepath.Join(dir, "a.yaml"), Reader: strings.NewReader("a: 1\n")},
			{Path: filepath.Join(dir, "b.yaml"), Reader: strings.NewReader("b: 2\n")},
		},
		JQArgs: []string{"."},
		Stdout: &out,
		Stderr: io.Discard,
		Runner: fake,
	}
	if st, err := Run(req); err != nil || st != 0 {
		t.Fatalf("Run = %d, %v", st, err)
	}
	if out.String() != "a: 1\n---\nb: 2\n" {
		t.Errorf("got %q", out.String())
	}

	// the filter sees one pipe path per file input, after its own args
	argv := fake.argv(t)
	if len(argv) != 4 {
		t.Fatalf("argv = %q", argv)
	}
	for i, base := range []string{"a.yaml", "b.yaml"} {
		name := filepath.Base(argv[2+i])
		if !strings.HasPrefix(name, base+".tmp_") || !strings.HasSuffix(name, ".json") {
			t.Errorf("pipe name %q does not derive from %s", name, base)
		}
	}

	// the pipes are cleaned up
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestRunJSONPassthrough(t *testing.T) {
	fake := &fakeRunner{transform: identity}
	var out bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.JSONFormat,
		Inputs:       []Input{stdinInput("a: 1\nb: x\n")},
		Stdout:       &out,
		Stderr:       io.Discard,
		Runner:       fake,
	}
	if st, err := Run(req); err != nil || st != 0 {
		t.Fatalf("Run = %d, %v", st, err)
	}
	if out.String() != "{\"a\":1,\"b\":\"x\"}\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestRunAnnotatedRoundTrip(t *testing.T) {
	fake := &fakeRunner{transform: identity}
	var out bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.AnnotatedYAMLFormat,
		Inputs:       []Input{stdinInput("s: !note hi\nq: \"42\"\n")},
		Stdout:       &out,
		Stderr:       io.Discard,
		Runner:       fake,
	}
	if st, err := Run(req); err != nil || st != 0 {
		t.Fatalf("Run = %d, %v", st, err)
	}
	if out.String() != "s: !note hi\nq: \"42\"\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestRunExitStatusPropagates(t *testing.T) {
	fake := &fakeRunner{transform: identity, exit: 5}
	var out bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs:       []Input{stdinInput("a: 1\n")},
		Stdout:       &out,
		Stderr:       io.Discard,
		Runner:       fake,
	}
	st, err := Run(req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st != 5 {
		t.Errorf("status = %d, want 5", st)
	}
}

func TestRunSpawnError(t *testing.T) {
	var out, errOut bytes.Buffer
	req := &Request{
		Program:      "yq-test-no-such-filter",
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.JSONFormat,
		Inputs:       []Input{stdinInput("")},
		JQArgs:       []string{"."},
		Stdout:       &out,
		Stderr:       &errOut,
	}
	st, err := Run(req)
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("want ErrSpawn, got %v", err)
	}
	if st != 1 {
		t.Errorf("status = %d, want 1", st)
	}
	if !strings.Contains(err.Error(), "Is yq-test-no-such-filter installed and available on PATH?") {
		t.Errorf("unhelpful spawn error: %v", err)
	}
}

func TestRunSkipsInputWithoutPipe(t *testing.T) {
	fake := &fakeRunner{transform: identity}
	var out, errOut bytes.Buffer
	bad := "/yq-test-no-such-dir/a.yaml"
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs: []Input{
			{Path: bad, Reader: strings.NewReader("a: 1\n")},
			stdinInput("ok: 1\n"),
		},
		Stdout: &out,
		Stderr: &errOut,
		Runner: fake,
	}
	st, err := Run(req)
	if err != nil || st != 0 {
		t.Fatalf("Run = %d, %v", st, err)
	}
	if out.String() != "ok: 1\n" {
		t.Errorf("got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "skipping "+bad) {
		t.Errorf("no skip warning: %q", errOut.String())
	}
}

func TestRunFilterExitsWithoutReading(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs: []Input{
			{Path: filepath.Join(dir, "a.yaml"), Reader: strings.NewReader("a: 1\n")},
		},
		JQArgs: []string{"bad("},
		Stdout: &out,
		Stderr: &errOut,
		Runner: exitRunner{status: 3},
	}
	var (
		st  int
		err error
	)
	ret := make(chan struct{})
	go func() {
		st, err = Run(req)
		close(ret)
	}()
	select {
	case <-ret:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the filter exited")
	}
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st != 3 {
		t.Errorf("status = %d, want 3", st)
	}
}

// an output constraint failure has to surface as itself, not as the
// broken pipe it provokes in the still-running feeder
func TestRunEncodeConstraintSurfaces(t *testing.T) {
	fake := &fakeRunner{transform: identity}
	var out bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.XMLFormat,
		Inputs:       []Input{stdinInput(strings.Repeat("- x\n---\n", 500))},
		Stdout:       &out,
		Stderr:       io.Discard,
		Runner:       fake,
	}
	st, err := Run(req)
	if !errors.Is(err, encode.ErrEncodeConstraint) {
		t.Fatalf("want ErrEncodeConstraint, got %v", err)
	}
	if st != 1 {
		t.Errorf("status = %d, want 1", st)
	}
}

func TestRunBadFilterOutput(t *testing.T) {
	fake := &fakeRunner{transform: func(json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage("{not json"), nil
	}}
	var out bytes.Buffer
	req := &Request{
		SourceFormat: format.YAMLFormat,
		TargetFormat: format.YAMLFormat,
		Inputs:       []Input{stdinInput("a: 1\n")},
		Stdout:       &out,
		Stderr:       io.Discard,
		Runner:       fake,
	}
	st, err := Run(req)
	if err == nil {
		t.Fatal("want error for unparsable filter output")
	}
	if st != 1 {
		t.Errorf("status = %d, want 1", st)
	}
}
