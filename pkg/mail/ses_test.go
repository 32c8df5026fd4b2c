package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/require"
)

type sesStub struct {
	input      *sesv2.SendEmailInput
	sendErr    error
	accountErr error
}

func (s *sesStub) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.input = params
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-001")}, nil
}

func (s *sesStub) GetAccount(context.Context, *sesv2.GetAccountInput, ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error) {
	if s.accountErr != nil {
		return nil, s.accountErr
	}
	return &sesv2.GetAccountOutput{}, nil
}

func TestSESSenderBuildsSimpleContent(t *testing.T) {
	stub := &sesStub{}
	sender := &SESSender{api: stub}

	result, err := sender.Send(context.Background(), sampleMessage())
	require.NoError(t, err)
	require.Equal(t, "ses-001", result.MessageID)

	input := stub.input
	require.Equal(t, "Chef Luca <noreply@example.com>", aws.ToString(input.FromEmailAddress))
	require.Equal(t, []string{"contact@example.com"}, input.Destination.ToAddresses)
	require.Equal(t, []string{"john@example.com"}, input.ReplyToAddresses)

	simple := input.Content.Simple
	require.Equal(t, "Contact Form: Test Subject", aws.ToString(simple.Subject.Data))
	require.Equal(t, "UTF-8", aws.ToString(simple.Subject.Charset))
	require.Equal(t, "<p>Line 1<br>Line 2</p>", aws.ToString(simple.Body.Html.Data))
	require.Equal(t, "Line 1\nLine 2", aws.ToString(simple.Body.Text.Data))
	require.Equal(t, "UTF-8", aws.ToString(simple.Body.Text.Charset))
}

func TestSESSenderOmitsEmptyTextBody(t *testing.T) {
	stub := &sesStub{}
	sender := &SESSender{api: stub}

	msg := sampleMessage()
	msg.Text = ""
	msg.ReplyTo = ""
	_, err := sender.Send(context.Background(), msg)
	require.NoError(t, err)
	require.Nil(t, stub.input.Content.Simple.Body.Text)
	require.Empty(t, stub.input.ReplyToAddresses)
}

func TestSESSenderWrapsErrors(t *testing.T) {
	cause := errors.New("throttled")
	sender := &SESSender{api: &sesStub{sendErr: cause, accountErr: cause}}

	_, err := sender.Send(context.Background(), sampleMessage())
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, sender.Verify(context.Background()), cause)
	require.Equal(t, ProviderSES, sender.Provider())
}

func TestNewSESSenderRequiresRegion(t *testing.T) {
	_, err := NewSESSender(context.Background(), SESConfig{})
	require.Error(t, err)
}
