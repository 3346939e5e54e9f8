package pipeline

import "fmt"

// RunInPlace runs the request once per input file, writing each
// result over its own input. One file's failure is reported and the
// remaining files still run; the returned status is the first failed
// one.
func RunInPlace(req *Request) (int, error) {
	if !req.TargetFormat.IsYAML() {
		return 1, fmt.Errorf("%w: -i/--in-place can only be used with -y/-Y", ErrConfig)
	}
	if len(req.Inputs) == 0 {
		return 1, fmt.Errorf("%w: -i/--in-place requires filename arguments", ErrConfig)
	}
	for _, in := range req.Inputs {
		if in.Path == "" {
			return 1, fmt.Errorf(
				"%w: -i/--in-place can only be used with filename arguments, not on standard input",
				ErrConfig)
		}
	}
	status := 0
	for _, in := range req.Inputs {
		sub := *req
		sub.Inputs = []Input{in}
		sub.InPlace = false
		out := newDeferred(in.Path)
		sub.Stdout = out
		st, err := Run(&sub)
		if err != nil || st != 0 {
			out.Abort()
			if err != nil {
				warnf(req.stderr(), "%v", err)
				st = 1
			}
			if status == 0 {
				status = st
			}
			continue
		}
		if err := out.Commit(); err != nil {
			warnf(req.stderr(), "error replacing %s: %v", in.Path, err)
			if status == 0 {
				status = 1
			}
		}
	}
	return status, nil
}
