package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	in  *ses.SendEmailInput
	out *ses.SendEmailOutput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.in = in
	return f.out, f.err
}

func TestSESSend(t *testing.T) {
	// Arrange
	api := &fakeSES{out: &ses.SendEmailOutput{MessageId: aws.String("ses-1")}}
	s := &SES{api: api, defaultFrom: "noreply@otpgate.dev"}

	// Act
	id, err := s.Send(context.Background(), Message{To: []string{"u@e.c"}, Subject: "Passkeys Revoke Request", HTMLBody: "<p>x</p>"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
	assert.Equal(t, "noreply@otpgate.dev", aws.ToString(api.in.Source))
	assert.Equal(t, []string{"u@e.c"}, api.in.Destination.ToAddresses)
	assert.Nil(t, api.in.Message.Body.Text)
	assert.Equal(t, "<p>x</p>", aws.ToString(api.in.Message.Body.Html.Data))
}

func TestSESSendError(t *testing.T) {
	boom := errors.New("throttled")
	s := &SES{api: &fakeSES{err: boom}, defaultFrom: "n@o.p"}

	_, err := s.Send(context.Background(), Message{To: []string{"u@e.c"}, TextBody: "x"})

	assert.ErrorIs(t, err, boom)
}

func TestNewSESRequiresRegion(t *testing.T) {
	_, err := NewSES(context.Background(), SESConfig{})

	assert.ErrorIs(t, err, ErrSESRegionRequired)
}
