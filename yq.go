package yq

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/vergenzt/yq/debug"
	"github.com/vergenzt/yq/format"
	"github.com/vergenzt/yq/pipeline"
)

// Config declares the tool-owned options. The fields exist for the
// usage listing only: parsing is manual (BuildRequest), because every
// flag the tool does not own must be forwarded to the filter process
// untouched instead of being rejected.
type Config struct {
	YAMLOutput    bool   `cli:"name=y aliases=yaml-output desc='transcode filter output back into YAML'"`
	YAMLRoundtrip bool   `cli:"name=Y aliases=yaml-roundtrip desc='like -y, but preserving tags, styles and comments'"`
	XMLOutput     bool   `cli:"name=x aliases=xml-output desc='transcode filter output into XML'"`
	TOMLOutput    bool   `cli:"name=t aliases=toml-output desc='transcode filter output into TOML'"`
	InPlace       bool   `cli:"name=i aliases=in-place desc='edit files in place (requires -y or -Y)'"`
	Width         int    `cli:"name=w aliases=width desc='output line width for YAML'"`
	Indent        int    `cli:"name=indent desc='output indent for YAML'"`
	Indentless    bool   `cli:"name=indentless-lists desc='emit block sequences at the indent of their key'"`
	XMLRoot       string `cli:"name=xml-root desc='wrap output documents in this root element'"`
	XMLDTD        bool   `cli:"name=xml-dtd desc='prepend the XML declaration'"`
	Version       bool   `cli:"name=V aliases=version desc='print version and exit'"`

	Program      string
	SourceFormat format.Format

	Cmd *cli.Command
}

// Command builds the command for one of the entry points: program is
// the name diagnostics carry ("yq", "xq", "tq") and sourceFormat is
// how its inputs are decoded.
func Command(program string, sourceFormat format.Format) *cli.Command {
	cfg := &Config{Program: program, SourceFormat: sourceFormat}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Cmd, program).
		WithSynopsis(program + " [options] <jq filter> [input file...]").
		WithDescription(description(program)).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return run(cfg, cc, args)
		})
}

func description(program string) string {
	switch program {
	case "xq":
		return "xq: Command-line XML processor - jq wrapper for XML documents"
	case "tq":
		return "tq: Command-line TOML processor - jq wrapper for TOML documents"
	default:
		return "yq: Command-line YAML processor - jq wrapper for YAML documents"
	}
}

func run(cfg *Config, cc *cli.Context, args []string) error {
	req, err := BuildRequest(cfg.Program, cfg.SourceFormat, args)
	switch {
	case errors.Is(err, ErrHelp):
		cfg.Cmd.Usage(cc, nil)
		return nil
	case errors.Is(err, ErrVersion):
		fmt.Fprintf(cc.Out, "%s %s\n", cfg.Program, Version)
		return nil
	case err != nil:
		return err
	}
	if debug.Args() {
		debug.Logf("%s: argv %q -> filter args %q\n", cfg.Program, args, req.JQArgs)
	}
	if len(req.Inputs) == 0 {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			cfg.Cmd.Usage(cc, nil)
			return nil
		}
		req.Inputs = []pipeline.Input{{}}
	}
	closeInputs, err := openInputs(req)
	if err != nil {
		fatalf("%s: %v", cfg.Program, err)
		os.Exit(1)
	}
	defer closeInputs()
	req.Stdout = cc.Out
	req.Stderr = os.Stderr

	var status int
	if req.InPlace {
		status, err = pipeline.RunInPlace(req)
	} else {
		status, err = pipeline.Run(req)
	}
	if err != nil {
		fatalf("%s: %v", cfg.Program, err)
		os.Exit(1)
	}
	if status != 0 {
		os.Exit(status)
	}
	return nil
}

func openInputs(req *pipeline.Request) (func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for i := range req.Inputs {
		in := &req.Inputs[i]
		if in.Path == "" {
			in.Reader = os.Stdin
			continue
		}
		f, err := os.Open(in.Path)
		if err != nil {
			closeAll()
			return nil, err
		}
		files = append(files, f)
		in.Reader = f
	}
	return closeAll, nil
}

func fatalf(msg string, args ...any) {
	s := fmt.Sprintf(msg, args...)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		s = color.RedString("%s", s)
	}
	fmt.Fprintln(os.Stderr, s)
}
