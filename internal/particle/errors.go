package particle

import (
	"errors"

	"github.com/san-kum/pbdsim/internal/constraint"
)

var (
	ErrInvalidCount      = errors.New("particle: count must be positive")
	ErrBufferLength      = errors.New("particle: buffer length is not a multiple of 3")
	ErrInvalidConstraint = errors.New("particle: invalid constraint")
	ErrInvalidForce      = errors.New("particle: invalid force")
	ErrNilConstraint     = errors.New("particle: nil constraint")
	ErrNilForce          = errors.New("particle: nil force")

	// ErrIndexOutOfRange is reported, wrapped in ErrInvalidConstraint, when a
	// constraint references a particle the system does not have.
	ErrIndexOutOfRange = constraint.ErrIndexOutOfRange
)
