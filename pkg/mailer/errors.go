package mailer

import "errors"

var (
	ErrNoSender           = errors.New("mailer: email must have a sender address")
	ErrNoRecipient        = errors.New("mailer: email must have at least one recipient")
	ErrNoSubject          = errors.New("mailer: email must have a subject")
	ErrNoContent          = errors.New("mailer: email must have HTML content")
	ErrTemplateNotFound   = errors.New("mailer: template not found")
	ErrRenderFailed       = errors.New("mailer: failed to render template")
	ErrSendFailed         = errors.New("mailer: failed to send email")
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")
)
