package train

import "errors"

var (
	ErrTrainNotFound  = errors.New("train not found")
	ErrNumberTaken    = errors.New("train number already exists")
	ErrDuplicateClass = errors.New("class code repeated")
	ErrDateInPast     = errors.New("date cannot be in the past")
	ErrInvalidDate    = errors.New("invalid journey date")
)
