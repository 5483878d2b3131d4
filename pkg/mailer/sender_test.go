package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *Email) error {
	return m.Called(ctx, email).Error(0)
}

func validEmail() *Email {
	return &Email{
		From:    Address{Name: "La Boutique Café", Email: "news@lemamita.fr"},
		To:      []string{"news@lemamita.fr"},
		BCC:     []string{"a@x.com"},
		Subject: "Menu",
		HTML:    "<p>Menu</p>",
	}
}

func TestDeliver(t *testing.T) {
	t.Parallel()

	t.Run("sends valid email", func(t *testing.T) {
		t.Parallel()

		s := &MockSender{}
		email := validEmail()
		s.On("Send", mock.Anything, email).Return(nil).Once()

		require.NoError(t, Deliver(context.Background(), s, email))
		s.AssertExpectations(t)
	})

	t.Run("wraps provider error", func(t *testing.T) {
		t.Parallel()

		s := &MockSender{}
		boom := errors.New("connection refused")
		s.On("Send", mock.Anything, mock.Anything).Return(boom)

		err := Deliver(context.Background(), s, validEmail())
		require.ErrorIs(t, err, ErrSendFailed)
		require.ErrorIs(t, err, boom)
	})

	t.Run("rejects invalid email without sending", func(t *testing.T) {
		t.Parallel()

		s := &MockSender{}
		cases := map[error]func(*Email){
			ErrNoSender:    func(e *Email) { e.From = Address{} },
			ErrNoRecipient: func(e *Email) { e.To, e.BCC = nil, nil },
			ErrNoSubject:   func(e *Email) { e.Subject = "" },
			ErrNoContent:   func(e *Email) { e.HTML = "" },
		}
		for want, mutate := range cases {
			email := validEmail()
			mutate(email)
			require.ErrorIs(t, Deliver(context.Background(), s, email), want)
		}
		s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestAddress_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "news@lemamita.fr", Address{Email: "news@lemamita.fr"}.String())
	require.Equal(t, `"Le Mamita" <news@lemamita.fr>`, Address{Name: "Le Mamita", Email: "news@lemamita.fr"}.String())
	require.Equal(t, "=?utf-8?q?La_Boutique_Caf=C3=A9?= <news@lemamita.fr>", Address{Name: "La Boutique Café", Email: "news@lemamita.fr"}.String())
}
