package pipeline

import (
	"os"
	"path/filepath"
)

// deferred is an output that opens its backing file only on first
// write and replaces the target only on Commit. A run that produces
// no output leaves the target untouched.
type deferred struct {
	path string
	tmp  *os.File
	err  error
}

func newDeferred(path string) *deferred {
	return &deferred{path: path}
}

func (d *deferred) Write(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if d.tmp == nil {
		tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".tmp_*")
		if err != nil {
			d.err = err
			return 0, err
		}
		d.tmp = tmp
	}
	return d.tmp.Write(p)
}

// Commit replaces the target with the written content. With nothing
// written it is a no-op.
func (d *deferred) Commit() error {
	if d.tmp == nil {
		return d.err
	}
	name := d.tmp.Name()
	err := d.tmp.Close()
	d.tmp = nil
	if err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, d.path)
}

// Abort discards anything written so far.
func (d *deferred) Abort() {
	if d.tmp == nil {
		return
	}
	name := d.tmp.Name()
	d.tmp.Close()
	os.Remove(name)
	d.tmp = nil
}
