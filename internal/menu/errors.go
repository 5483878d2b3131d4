package menu

import "errors"

var (
	ErrUnknownOutlet = errors.New("menu: unknown outlet")
	ErrInvalidEmail  = errors.New("menu: invalid email address")
	ErrDuplicate     = errors.New("menu: email already subscribed")
)
