package pipeline

import (
	"io"
	"os"

	"github.com/vergenzt/yq/format"
)

// Input is one document source. An empty Path means standard input
// and is delivered over the filter's stdin; real files are delivered
// over named pipes passed as extra arguments.
type Input struct {
	Path   string
	Reader io.Reader
}

func (in Input) displayName() string {
	if in.Path == "" {
		return "<stdin>"
	}
	return in.Path
}

// Request describes one filter run. It is not modified by Run.
type Request struct {
	// Program is the filter executable, normally "jq".
	Program string

	SourceFormat format.Format
	TargetFormat format.Format

	Inputs []Input

	// JQArgs is everything forwarded to the filter verbatim, the
	// filter expression included. Input pipe paths are appended after
	// it.
	JQArgs []string

	InPlace bool

	Width      int
	Indent     int
	Indentless bool
	XMLRoot    string
	XMLDTD     bool

	Stdout io.Writer
	Stderr io.Writer

	// Runner spawns the filter process. Nil means the real exec
	// runner; tests substitute an in-memory fake.
	Runner Runner
}

func (req *Request) stdout() io.Writer {
	if req.Stdout != nil {
		return req.Stdout
	}
	return os.Stdout
}

func (req *Request) stderr() io.Writer {
	if req.Stderr != nil {
		return req.Stderr
	}
	return os.Stderr
}

func (req *Request) runner() Runner {
	if req.Runner != nil {
		return req.Runner
	}
	return ExecRunner{}
}
