package pipeline

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

// Runner spawns the filter process. The interface is deliberately
// narrow so tests can run the whole pipeline against an in-memory
// filter.
type Runner interface {
	// Start launches argv[0] with the given arguments. A non-nil
	// stdout means the process writes there directly (the passthrough
	// case); otherwise the process's output is read via
	// Process.Stdout.
	Start(argv []string, stdout, stderr io.Writer) (Process, error)
}

type Process interface {
	// Stdin is the process's input channel. The caller closes it when
	// all input has been delivered.
	Stdin() io.WriteCloser

	// Stdout streams the process's output, or nil when Start was
	// given a writer.
	Stdout() io.Reader

	// Wait collects the exit status. An error means the process could
	// not be waited on, not that it exited nonzero. It may be called
	// while Stdout is still being drained.
	Wait() (int, error)

	Kill()
}

// ExecRunner runs the filter as a real subprocess.
type ExecRunner struct{}

func (ExecRunner) Start(argv []string, stdout, stderr io.Writer) (Process, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	p := &execProcess{cmd: cmd, stdin: stdin}
	// not StdoutPipe: cmd.Wait would close that pipe on exit, and the
	// caller may still be draining it then
	var rd, wr *os.File
	if stdout != nil {
		cmd.Stdout = stdout
	} else {
		rd, wr, err = os.Pipe()
		if err != nil {
			return nil, err
		}
		cmd.Stdout = wr
	}
	if err := cmd.Start(); err != nil {
		if wr != nil {
			rd.Close()
			wr.Close()
		}
		return nil, err
	}
	if wr != nil {
		// the child holds its own copy; ours would keep the read end
		// from ever seeing EOF
		wr.Close()
		p.stdout = rd
	}
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
}

func (p *execProcess) Stdin() io.WriteCloser {
	return p.stdin
}

func (p *execProcess) Stdout() io.Reader {
	return p.stdout
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return 0, err
	}
}

func (p *execProcess) Kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}
