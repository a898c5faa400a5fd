package email

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
)

type stubClient struct {
	id  string
	err error
}

func (s *stubClient) Close() error { return nil }

func (s *stubClient) Send(context.Context, mail.Message) (string, error) {
	return s.id, s.err
}

func TestMailSend(t *testing.T) {
	msg := mail.Message{To: []string{"user@example.com"}, Subject: "s", TextBody: "123456"}

	t.Run("returns provider id", func(t *testing.T) {
		// Arrange
		m := New(&stubClient{id: "re_1"}, instrument.NewNoop())

		// Act
		id, err := m.Send(context.Background(), msg)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "re_1", id)
	})

	t.Run("provider failure", func(t *testing.T) {
		// Arrange
		boom := errors.New("smtp down")
		m := New(&stubClient{id: "ignored", err: boom}, instrument.NewNoop())

		// Act
		id, err := m.Send(context.Background(), msg)

		// Assert
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, id)
	})
}
