package yq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/vergenzt/yq/format"
	"github.com/vergenzt/yq/pipeline"
)

// jqArgSpec lists the filter flags that consume values, so the
// scanner can tell those values apart from the filter expression and
// input files.
var jqArgSpec = map[string]int{
	"--arg":       2,
	"--argjson":   2,
	"--slurpfile": 2,
	"--rawfile":   2,
	"-f":          1,
	"--from-file": 1,
}

// BuildRequest turns raw command-line tokens into a pipeline request.
// It is a pure function: no files are opened (Input readers stay nil)
// and no global state is touched. Flags the tool does not own are
// forwarded to the filter, with format/in-place characters inferred
// from and stripped out of single-dash clusters the way the filter
// would otherwise swallow them.
func BuildRequest(program string, sourceFormat format.Format, argv []string) (*pipeline.Request, error) {
	req := &pipeline.Request{
		Program:      "jq",
		SourceFormat: sourceFormat,
		TargetFormat: format.JSONFormat,
	}
	var (
		jqArgs     []string
		clusters   []int
		positional []string
		tail       []string
		tailFlag   string
		fromFile   bool
	)
	i := 0
	next := func(flag string) (string, error) {
		i++
		if i >= len(argv) {
			return "", fmt.Errorf("%w: %s requires a value", cli.ErrUsage, flag)
		}
		return argv[i], nil
	}
	intValue := func(flag, inline string, has bool) (int, error) {
		v := inline
		if !has {
			var err error
			if v, err = next(flag); err != nil {
				return 0, err
			}
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %s wants a non-negative integer, got %q", cli.ErrUsage, flag, v)
		}
		return n, nil
	}
	for ; i < len(argv); i++ {
		arg := argv[i]
		if tailFlag != "" {
			tail = append(tail, arg)
			continue
		}
		name, inline, hasInline := strings.Cut(arg, "=")
		var err error
		switch name {
		case "-y", "--yaml-output":
			req.TargetFormat = format.YAMLFormat
		case "-Y", "--yaml-roundtrip":
			req.TargetFormat = format.AnnotatedYAMLFormat
		case "-x", "--xml-output":
			req.TargetFormat = format.XMLFormat
		case "-t", "--toml-output":
			req.TargetFormat = format.TOMLFormat
		case "-i", "--in-place":
			req.InPlace = true
		case "-w", "--width":
			if req.Width, err = intValue(name, inline, hasInline); err != nil {
				return nil, err
			}
		case "--indent":
			if req.Indent, err = intValue(name, inline, hasInline); err != nil {
				return nil, err
			}
		case "--indentless-lists":
			req.Indentless = true
		case "--xml-root":
			v := inline
			if !hasInline {
				if v, err = next(name); err != nil {
					return nil, err
				}
			}
			req.XMLRoot = v
		case "--xml-dtd":
			req.XMLDTD = true
		case "-h", "--help":
			return nil, ErrHelp
		case "-V", "--version":
			return nil, ErrVersion
		case "--args", "--jsonargs":
			tailFlag = name
		default:
			if n, ok := jqArgSpec[name]; ok {
				jqArgs = append(jqArgs, name)
				for range n {
					v, err := next(name)
					if err != nil {
						return nil, err
					}
					jqArgs = append(jqArgs, v)
				}
				if name == "-f" || name == "--from-file" {
					fromFile = true
				}
				continue
			}
			switch {
			case arg == "-" || !strings.HasPrefix(arg, "-"):
				positional = append(positional, arg)
			case strings.HasPrefix(arg, "--"):
				jqArgs = append(jqArgs, arg)
			default:
				jqArgs = append(jqArgs, arg)
				clusters = append(clusters, len(jqArgs)-1)
			}
		}
	}

	// inference pass: format and in-place characters hidden inside
	// clusters bound for the filter
	for _, ci := range clusters {
		arg := jqArgs[ci]
		if strings.Contains(arg, "i") {
			req.InPlace = true
		}
		switch {
		case strings.Contains(arg, "y"):
			req.TargetFormat = format.YAMLFormat
		case strings.Contains(arg, "Y"):
			req.TargetFormat = format.AnnotatedYAMLFormat
		case strings.Contains(arg, "x"):
			req.TargetFormat = format.XMLFormat
		case strings.Contains(arg, "t"):
			req.TargetFormat = format.TOMLFormat
		}
		jqArgs[ci] = strings.Map(func(r rune) rune {
			switch r {
			case 'i', 'x', 'y', 'Y', 't':
				return -1
			}
			return r
		}, arg)
	}
	if !req.TargetFormat.IsJSON() {
		// the filter never sees a terminal here, so color output
		// would only garble the re-encoded stream
		kept := jqArgs[:0]
		nc := 0
		for ai, arg := range jqArgs {
			if nc < len(clusters) && clusters[nc] == ai {
				nc++
				arg = strings.ReplaceAll(arg, "C", "")
				if arg == "-" {
					continue
				}
			}
			kept = append(kept, arg)
		}
		jqArgs = kept
	}

	var inputs []string
	if fromFile {
		// with -f the first bare token is not a filter but a data
		// file
		inputs = positional
	} else {
		if len(positional) == 0 {
			return nil, fmt.Errorf("%w: the filter argument is required", cli.ErrUsage)
		}
		filter := positional[0]
		inputs = positional[1:]
		if tailFlag == "" {
			jqArgs = append(jqArgs, filter)
		} else {
			jqArgs = append(jqArgs, tailFlag, filter)
		}
	}
	if fromFile && tailFlag != "" {
		jqArgs = append(jqArgs, tailFlag)
	}
	jqArgs = append(jqArgs, tail...)
	req.JQArgs = jqArgs

	for _, p := range inputs {
		in := pipeline.Input{Path: p}
		if p == "-" {
			in.Path = ""
		}
		req.Inputs = append(req.Inputs, in)
	}
	return req, nil
}
