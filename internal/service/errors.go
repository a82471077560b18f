package service

import (
	"errors"
	"fmt"

	"hotelbook/internal/domain"
)

// Error kinds. Specific errors wrap one of these, so errors.Is(err, ErrConflict)
// holds for ErrRoomBusy and ErrDatesUnavailable alike.
var (
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = domain.ErrNotFound
	ErrTerminalState    = errors.New("booking is in a terminal state")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

var (
	ErrRoomBusy         = fmt.Errorf("%w: room is being booked by another request, please retry", ErrConflict)
	ErrDatesUnavailable = fmt.Errorf("%w: room is not available for the selected dates", ErrConflict)
	ErrInUse            = fmt.Errorf("%w: record is still referenced", ErrConflict)
)

const (
	KindConflict         = "conflict"
	KindValidation       = "validation"
	KindNotFound         = "not_found"
	KindTerminalState    = "terminal_state"
	KindAlreadyCancelled = "already_cancelled"
	KindInternal         = "internal"
)

// KindOf classifies err for transport mapping.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyCancelled):
		return KindAlreadyCancelled
	case errors.Is(err, ErrTerminalState):
		return KindTerminalState
	case errors.Is(err, ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return KindConflict
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
