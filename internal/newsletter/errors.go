package newsletter

import "errors"

var (
	ErrConfigMissing    = errors.New("newsletter: SMTP configuration is incomplete")
	ErrSettingsNotFound = errors.New("newsletter: homepage text settings not found")
	ErrMenuNotFound     = errors.New("newsletter: menu not found")
	ErrGenerationFailed = errors.New("newsletter: failed to generate email content")
	ErrDeliveryFailed   = errors.New("newsletter: error sending newsletter over SMTP")
)
