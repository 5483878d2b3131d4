package handlers

import (
	"errors"
	"net/http"

	"github.com/lemamita/mamita/internal/catering"
	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/newsletter"
	"github.com/lemamita/mamita/internal/sendlock"
	"github.com/lemamita/mamita/internal/store"
	"github.com/lemamita/mamita/pkg/cache"
	"github.com/lemamita/mamita/pkg/storage"
)

var (
	ErrUnauthorized    = errors.New("handlers: missing or invalid admin token")
	ErrBadRequest      = errors.New("handlers: malformed request")
	ErrNoPreview       = errors.New("handlers: no preview for this outlet")
	ErrUploadsDisabled = errors.New("handlers: image storage is not configured")
	ErrNotSubscribed   = errors.New("handlers: email is not in the external list")
	ErrInvalidMenu     = errors.New("handlers: menu id does not match the outlet")
)

// HTTPError carries a status code and a message safe to show the caller.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

// Error returns the client-facing message.
func (e *HTTPError) Error() string { return e.Message }
func (e *HTTPError) Unwrap() error { return e.Err }

type statusRule struct {
	code    int
	targets []error
}

var statusRules = []statusRule{
	{http.StatusUnauthorized, []error{ErrUnauthorized}},
	{http.StatusBadRequest, []error{ErrBadRequest}},
	{http.StatusNotFound, []error{
		menu.ErrUnknownOutlet, newsletter.ErrSettingsNotFound, newsletter.ErrMenuNotFound,
		store.ErrNotFound, cache.ErrNotFound, ErrNoPreview, ErrNotSubscribed,
	}},
	{http.StatusServiceUnavailable, []error{newsletter.ErrConfigMissing, ErrUploadsDisabled}},
	{http.StatusBadGateway, []error{newsletter.ErrGenerationFailed, newsletter.ErrDeliveryFailed}},
	{http.StatusUnprocessableEntity, []error{
		menu.ErrInvalidEmail, ErrInvalidMenu,
		storage.ErrInvalidType, storage.ErrFileTooLarge, storage.ErrEmptyFile,
		catering.ErrInvalidItem, catering.ErrInvalidQuote, catering.ErrBelowMinimum,
		catering.ErrUnknownStatus, catering.ErrReasonRequired,
	}},
	{http.StatusConflict, []error{
		menu.ErrDuplicate, sendlock.ErrHeld,
		catering.ErrDuplicateReference, catering.ErrInvalidTransition, catering.ErrNotArchived,
	}},
}

// toHTTPError classifies err. Unknown errors become a 500 whose message
// hides the cause.
func toHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	for _, rule := range statusRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return &HTTPError{Code: rule.code, Message: err.Error(), Err: err}
			}
		}
	}
	return &HTTPError{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError), Err: err}
}
