// Package debug holds process-wide debug switches, set from the
// environment at startup.
package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Decode   bool
	Annotate bool
	Pipeline bool
	Args     bool
}

var d *debug

func init() {
	d = &debug{}
	d.Decode = boolEnv("YQ_DEBUG_DECODE")
	d.Annotate = boolEnv("YQ_DEBUG_ANNOTATE")
	d.Pipeline = boolEnv("YQ_DEBUG_PIPELINE")
	d.Args = boolEnv("YQ_DEBUG_ARGS")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Decode() bool {
	return d.Decode
}
func Annotate() bool {
	return d.Annotate
}
func Pipeline() bool {
	return d.Pipeline
}
func Args() bool {
	return d.Args
}
