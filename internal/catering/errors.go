package catering

import "errors"

var (
	ErrInvalidItem        = errors.New("catering: invalid menu item")
	ErrDuplicateReference = errors.New("catering: reference already exists")
	ErrInvalidQuote       = errors.New("catering: invalid quote request")
	ErrBelowMinimum       = errors.New("catering: quote total is below the minimum amount")
	ErrUnknownStatus      = errors.New("catering: unknown quote status")
	ErrInvalidTransition  = errors.New("catering: status change not allowed")
	ErrReasonRequired     = errors.New("catering: cancellation reason is required")
	ErrNotArchived        = errors.New("catering: only archived quotes can be deleted")
)
