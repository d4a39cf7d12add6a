package scoring

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input image")
	ErrInvalidParams = errors.New("invalid scoring params")
)
