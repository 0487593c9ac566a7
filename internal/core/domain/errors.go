package domain

import "errors"

var (
	ErrMissingField  = errors.New("required field is missing")
	ErrInvalidConfig = errors.New("invalid availability configuration")
	ErrInvalidPollID = errors.New("invalid poll id")
	ErrPollNotFound  = errors.New("poll not found")
	ErrInvalidSlot   = errors.New("invalid slot for this poll")
	ErrPollNotOpen   = errors.New("poll is not open for voting")
	ErrInternal      = errors.New("internal server error")
)
