package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	acked, nacked int
}

func (f *fakeMessage) Body() []byte         { return []byte("{}") }
func (f *fakeMessage) Key() []byte          { return nil }
func (f *fakeMessage) Headers() []Header    { return nil }
func (f *fakeMessage) Header(string) string { return "" }
func (f *fakeMessage) ID() string           { return "1" }
func (f *fakeMessage) Topic() string        { return "t" }
func (f *fakeMessage) Timestamp() time.Time { return time.Time{} }

func (f *fakeMessage) Ack(context.Context) error {
	f.acked++
	return nil
}

func (f *fakeMessage) Nack(context.Context) error {
	f.nacked++
	return nil
}

func TestDispatchAutoAck(t *testing.T) {
	tests := []struct {
		name       string
		handler    Handler
		autoAck    bool
		wantErr    bool
		wantAcked  int
		wantNacked int
	}{
		{name: "ack on success", handler: func(context.Context, Message) error { return nil }, autoAck: true, wantAcked: 1},
		{name: "nack on error", handler: func(context.Context, Message) error { return errors.New("x") }, autoAck: true, wantErr: true, wantNacked: 1},
		{name: "nack on panic", handler: func(context.Context, Message) error { panic("x") }, autoAck: true, wantErr: true, wantNacked: 1},
		{name: "manual ack", handler: func(context.Context, Message) error { return nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &fakeMessage{}

			err := dispatch(context.Background(), "test", tt.handler, msg, tt.autoAck)

			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.wantAcked, msg.acked)
			assert.Equal(t, tt.wantNacked, msg.nacked)
		})
	}
}

func TestNewConsumeOptions(t *testing.T) {
	co := newConsumeOptions(WithConcurrency(-1), WithGroup("notification"), WithAutoAck(true), nil)

	assert.Equal(t, 1, co.concurrency)
	assert.Equal(t, "notification", co.group)
	assert.True(t, co.autoAck)
}

func TestFirstHeader(t *testing.T) {
	headers := []Header{{Key: "a", Value: []byte("1")}, {Key: "a", Value: []byte("2")}}

	assert.Equal(t, "1", firstHeader(headers, "a"))
	assert.Empty(t, firstHeader(headers, "b"))
}

func TestNewFromConfig(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
messaging:
  driver: kafka
  kafka:
    brokers: "localhost:9092"
`))
	require.NoError(t, err)

	m, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Kafka{}, m)
	assert.NoError(t, m.Close())

	unknown, err := config.NewViperFromBytes("yaml", []byte("messaging: {driver: nsq}"))
	require.NoError(t, err)
	_, err = NewFromConfig(unknown)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestKafkaConsumeValidation(t *testing.T) {
	k, err := NewKafka(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	err = k.Consume(context.Background(), "topic", func(context.Context, Message) error { return nil })
	assert.ErrorIs(t, err, ErrKafkaGroupRequired)

	require.NoError(t, k.Close())
	_, err = k.Publish(context.Background(), "topic", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewNATSRequiresURL(t *testing.T) {
	_, err := NewNATS(NATSConfig{})

	assert.ErrorIs(t, err, ErrNATSURLRequired)
}
