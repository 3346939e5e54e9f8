package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func warnf(w io.Writer, msg string, args ...any) {
	s := fmt.Sprintf(msg, args...)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		s = color.YellowString("%s", s)
	}
	fmt.Fprintln(w, s)
}
