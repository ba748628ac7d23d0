package booking

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrUnknownReference        = errors.New("unknown museum or event")
	ErrSoldOut                 = errors.New("not enough seats left")
	ErrNotFound                = errors.New("booking not found")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidStatusTransition = errors.New("invalid booking status transition")
	ErrAlreadyCheckedIn        = errors.New("booking already checked in")
	ErrInvalidTicket           = errors.New("invalid ticket")
	ErrInvalidPromoCode        = errors.New("invalid promotion code")
)
