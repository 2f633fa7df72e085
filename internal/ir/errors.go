package ir

import (
	"tlog.app/go/errors"

	"ebbir/internal/entity"
)

// Fatal construction errors. They are always returned wrapped with context;
// test for them with errors.Is.
var (
	ErrTerminated      = errors.New("ebb already ends in a terminator")
	ErrInvalidEntity   = errors.New("invalid entity reference")
	ErrTooManyArgs     = errors.New("too many arguments")
	ErrOperandCount    = errors.New("wrong number of operands")
	ErrNotInLayout     = errors.New("not in layout")
	ErrAlreadyInLayout = errors.New("already in layout")
	ErrCapacity        = entity.ErrCapacity
)

// Limits are the capacity ceilings of one function.
type Limits struct {
	// Primary bounds instructions, EBBs and values.
	Primary uint64
	// Secondary bounds every preamble table.
	Secondary uint64
	// Args bounds EBB parameter, signature and argument lists.
	Args uint64
}

// DefaultLimits are the architectural ceilings.
var DefaultLimits = Limits{
	Primary:   entity.MaxPrimary,
	Secondary: entity.MaxSecondary,
	Args:      entity.MaxArgs,
}
