package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/vergenzt/yq/annotate"
	"github.com/vergenzt/yq/debug"
	"github.com/vergenzt/yq/decode"
	"github.com/vergenzt/yq/encode"
	"github.com/vergenzt/yq/format"
	"github.com/vergenzt/yq/ir"
)

type feed struct {
	in   Input
	fifo string // "" means the process's stdin
}

type waitResult struct {
	status int
	err    error
}

// errStoppedReading marks input the filter exited without consuming.
// Not a failure by itself: the filter's exit status is the verdict.
var errStoppedReading = errors.New("the filter stopped reading its input")

// stoppedReading reports whether a feed error only means the filter is
// no longer accepting input.
func stoppedReading(err error) bool {
	return errors.Is(err, errStoppedReading) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrClosedPipe)
}

// Run executes one filter pass: spawn the process, deliver every
// input to it as compact JSON, and (unless the target format is JSON,
// which the process writes directly) re-encode its output documents.
// The int is the invocation's exit status.
func Run(req *Request) (int, error) {
	stderr := req.stderr()

	feeds := make([]feed, 0, len(req.Inputs))
	var fifos []string
	for _, in := range req.Inputs {
		if in.Path == "" {
			feeds = append(feeds, feed{in: in})
			continue
		}
		fifo, err := makeFIFO(in.Path)
		if err != nil {
			warnf(stderr, "%v, skipping %s", err, in.Path)
			continue
		}
		feeds = append(feeds, feed{in: in, fifo: fifo})
		fifos = append(fifos, fifo)
	}
	defer func() {
		for _, fifo := range fifos {
			os.Remove(fifo)
		}
	}()

	exe := req.Program
	if exe == "" {
		exe = "jq"
	}
	argv := make([]string, 0, 1+len(req.JQArgs)+len(fifos))
	argv = append(argv, exe)
	argv = append(argv, req.JQArgs...)
	argv = append(argv, fifos...)

	converting := !req.TargetFormat.IsJSON()
	var inherit io.Writer
	if !converting {
		inherit = req.stdout()
	}
	if debug.Pipeline() {
		debug.Logf("pipeline: spawn %q\n", argv)
	}
	proc, err := req.runner().Start(argv, inherit, stderr)
	if err != nil {
		return 1, fmt.Errorf(
			"%w: error starting %s: %v. Is %s installed and available on PATH?",
			ErrSpawn, exe, err, exe)
	}

	// reap in the background: a filter that exits without ever opening
	// its pipes (jq does this on a program compile error) must release
	// the feeder, and its exit status still has to come through
	dead := make(chan struct{})
	waitc := make(chan waitResult, 1)
	go func() {
		status, err := proc.Wait()
		close(dead)
		waitc <- waitResult{status, err}
	}()

	// the first failure wins; everything the kill provokes afterwards
	// is noise
	var (
		failMu  sync.Mutex
		failErr error
	)
	fail := func(err error) {
		failMu.Lock()
		if failErr == nil {
			failErr = err
			proc.Kill()
		}
		failMu.Unlock()
	}

	feedc := make(chan error, 1)
	go func() {
		err := feedInputs(req, feeds, proc.Stdin(), dead)
		if err != nil && !stoppedReading(err) {
			fail(err)
		}
		feedc <- err
	}()

	if converting {
		if err := demux(req, proc.Stdout()); err != nil {
			fail(err)
		}
	}
	<-feedc
	res := <-waitc

	switch {
	case failErr != nil:
		return 1, failErr
	case res.err != nil:
		return 1, fmt.Errorf("%w: error running %s: %v", ErrProcess, exe, res.err)
	}
	return res.status, nil
}

func feedInputs(req *Request, feeds []feed, stdin io.WriteCloser, dead <-chan struct{}) error {
	defer stdin.Close()
	annotated := req.TargetFormat.Annotated()
	for _, f := range feeds {
		w := io.Writer(stdin)
		var fifoFile *os.File
		if f.fifo != "" {
			var err error
			fifoFile, err = openFIFO(f.fifo, dead)
			if err != nil {
				return err
			}
			w = fifoFile
		}
		err := feedOne(req, f.in, w, annotated)
		if fifoFile != nil {
			fifoFile.Close()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// openFIFO opens the write end of one input pipe. A plain blocking
// open would wait for a reader that a dead filter will never become,
// so the open is non-blocking (ENXIO means no reader yet) and retried
// until the process is gone.
func openFIFO(path string, dead <-chan struct{}) (*os.File, error) {
	for {
		f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, 0)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, syscall.ENXIO) {
			return nil, fmt.Errorf("%w: %s: %v", ErrPipeCreate, path, err)
		}
		select {
		case <-dead:
			return nil, errStoppedReading
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func feedOne(req *Request, in Input, w io.Writer, annotated bool) error {
	dec := decode.NewDecoder(in.Reader,
		decode.DecodeFormat(req.SourceFormat),
		decode.Annotate(annotated),
		decode.Filename(in.displayName()))
	n := 0
	for {
		node, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		data, err := ir.ToJSON(node)
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("%w: error writing to the filter: %w", ErrProcess, err)
		}
		n++
	}
	if debug.Pipeline() {
		debug.Logf("pipeline: %s: %d documents in\n", in.displayName(), n)
	}
	return nil
}

// demux splits the filter's concatenated JSON output back into
// documents and re-encodes each one on the request's output.
func demux(req *Request, out io.Reader) error {
	dec := decode.NewDecoder(out,
		decode.DecodeFormat(format.JSONFormat),
		decode.Filename("filter output"))
	opts := []encode.EncodeOption{
		encode.EncodeFormat(req.TargetFormat),
		encode.Width(req.Width),
		encode.Indent(req.Indent),
		encode.Indentless(req.Indentless),
		encode.XMLRoot(req.XMLRoot),
		encode.XMLDTD(req.XMLDTD),
	}
	w := req.stdout()
	first := true
	for {
		node, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: error reading the filter's output: %v", ErrProcess, err)
		}
		if req.TargetFormat.Annotated() {
			if node, err = annotate.Unwrap(node); err != nil {
				return err
			}
		}
		if !first && req.TargetFormat.IsYAML() {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if err := encode.Encode(node, w, opts...); err != nil {
			return err
		}
		first = false
	}
}
