package booking

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrTrainNotFound     = errors.New("train not found")
	ErrClassNotFound     = errors.New("class not found on this train")
	ErrInvalidDate       = errors.New("invalid journey date")
	ErrDateInPast        = errors.New("journey date is in the past")
	ErrNotRunning        = errors.New("train does not run on this date")
	ErrAlreadyCancelled  = errors.New("booking is already cancelled")
	ErrJourneyCompleted  = errors.New("journey already completed")
	ErrInvalidTransition = errors.New("status change not allowed")
	ErrNoSeats           = errors.New("not enough seats available")
	ErrForbidden         = errors.New("booking belongs to another user")
	ErrPassengerCount    = errors.New("a booking carries 1 to 6 passengers")
	ErrUserNotFound      = errors.New("user not found")
)
