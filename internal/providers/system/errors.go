package system

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotAllowed      = errors.New("command not allowed")
	ErrCommandTimeout  = errors.New("command timed out")
	ErrUnavailable     = errors.New("command not available on this system")
)
