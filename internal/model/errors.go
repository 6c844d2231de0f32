package model

import "github.com/pkg/errors"

// Error kinds. Callers classify with errors.Is.
var (
	ErrDataUnavailable  = errors.New("data unavailable")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDeliveryFailed   = errors.New("delivery failed")
	ErrPersistence      = errors.New("persistence error")
	ErrRunInProgress    = errors.New("run already in progress")
)
