package upload

import "errors"

var (
	ErrNoDestination = errors.New("no upload destination configured")
	ErrInvalidTarget = errors.New("invalid upload target")
	ErrInvalidFile   = errors.New("invalid capture file")
)
