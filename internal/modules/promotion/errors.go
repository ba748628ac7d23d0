package promotion

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("promotion not found")
	ErrDuplicateCode = errors.New("promotion code already exists")
)
