package ir

import "errors"

var errInternal = errors.New("internal error")
