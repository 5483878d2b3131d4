package catering

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const QuotesCollection = "quotes"

// Status is the lifecycle state of a quote request.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "inProgress"
	StatusConfirmed  Status = "confirmed"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusArchived   Status = "archived"
)

var statusLabels = map[Status]string{
	StatusNew:        "Nouveau",
	StatusInProgress: "En cours",
	StatusConfirmed:  "Confirmé",
	StatusCompleted:  "Terminé",
	StatusCancelled:  "Annulé",
	StatusArchived:   "Archivé",
}

var transitions = map[Status][]Status{
	StatusNew:        {StatusInProgress, StatusConfirmed, StatusCancelled},
	StatusInProgress: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusCompleted},
	StatusCompleted:  {StatusArchived},
	StatusCancelled:  {StatusArchived},
}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusLabels[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Label is the French name shown to staff and customers.
func (s Status) Label() string { return statusLabels[s] }

// CanTransition reports whether a quote in s may move to next.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// QuoteLine is one product of a quote with the price at request time.
type QuoteLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Quote is a catering quote request.
type Quote struct {
	ID                 string      `json:"id"`
	UserID             string      `json:"userId"`
	UserName           string      `json:"userName"`
	RequestDate        string      `json:"requestDate"`
	EventDate          string      `json:"eventDate"`
	EventTime          string      `json:"eventTime"`
	Guests             int         `json:"guests"`
	Details            []QuoteLine `json:"details"`
	Status             Status      `json:"status"`
	CancellationReason string      `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
}

// Total is the sum of every line.
func (q *Quote) Total() float64 {
	var total float64
	for _, l := range q.Details {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

// Transition moves q to next. Cancelling requires a reason, which is kept on
// the quote.
func (q *Quote) Transition(next Status, reason string) error {
	if !q.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, q.Status, next)
	}
	if next == StatusCancelled {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return ErrReasonRequired
		}
		q.CancellationReason = reason
	}
	q.Status = next
	return nil
}
