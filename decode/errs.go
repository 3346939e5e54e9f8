package decode

import (
	"errors"
	"fmt"
)

var ErrDecode = errors.New("decode error")

func errf(filename, msg string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrDecode, filename, fmt.Sprintf(msg, args...))
}
