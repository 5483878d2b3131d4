package mailer

import "net/mail"

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

// String formats the address per RFC 5322, quoting and encoding the name
// when needed.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Email is a fully prepared message.
type Email struct {
	From    Address
	ReplyTo string
	To      []string
	CC      []string
	BCC     []string
	Subject string
	HTML    string
	Text    string
	Headers map[string]string
}

// Recipients returns every envelope recipient.
func (e *Email) Recipients() int {
	return len(e.To) + len(e.CC) + len(e.BCC)
}

// Validate checks the fields every provider requires.
func (e *Email) Validate() error {
	switch {
	case e.From.Email == "":
		return ErrNoSender
	case e.Recipients() == 0:
		return ErrNoRecipient
	case e.Subject == "":
		return ErrNoSubject
	case e.HTML == "":
		return ErrNoContent
	}
	return nil
}
