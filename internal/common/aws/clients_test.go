// internal/common/aws/clients_test.go
package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-msg-1")}, nil
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}, nil
}

func TestSESClient_SendEmail(t *testing.T) {
	api := &fakeSES{}
	client := NewSESClientWithAPI(api)

	id, err := client.SendEmail(context.Background(), "noreply@example.com", "recruiter@example.com", "Nuevo candidato", "Puntaje 80")
	require.NoError(t, err)
	assert.Equal(t, "ses-msg-1", id)

	require.NotNil(t, api.input)
	assert.Equal(t, []string{"recruiter@example.com"}, api.input.Destination.ToAddresses)
	assert.Equal(t, "noreply@example.com", aws.ToString(api.input.Source))
	assert.Equal(t, "Nuevo candidato", aws.ToString(api.input.Message.Subject.Data))
	assert.Equal(t, "Puntaje 80", aws.ToString(api.input.Message.Body.Text.Data))

	api.err = errors.New("MessageRejected")
	_, err = client.SendEmail(context.Background(), "a@b.co", "c@d.co", "s", "b")
	assert.ErrorContains(t, err, "MessageRejected")
}

func TestSNSClient_SendSMS(t *testing.T) {
	api := &fakeSNS{}
	client := NewSNSClientWithAPI(api)

	id, err := client.SendSMS(context.Background(), "+5215512345678", "Puntaje 90")
	require.NoError(t, err)
	assert.Equal(t, "sns-msg-1", id)
	assert.Equal(t, "+5215512345678", aws.ToString(api.input.PhoneNumber))

	api.err = errors.New("throttled")
	_, err = client.SendSMS(context.Background(), "+5215512345678", "x")
	assert.ErrorContains(t, err, "throttled")
}
