package annotate

import "errors"

var ErrAnnotation = errors.New("annotation error")
