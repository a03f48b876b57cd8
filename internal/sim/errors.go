package sim

import "errors"

var (
	ErrInvalidConfig = errors.New("sim: invalid config")
	ErrNilSystem     = errors.New("sim: nil system")
	ErrUnstable      = errors.New("sim: non-finite state")
)
