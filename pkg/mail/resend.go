package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender creates a sender for the given API key.
func NewResendSender(apiKey string) *ResendSender {
	return NewResendSenderWithClient(resend.NewClient(apiKey))
}

// NewResendSenderWithClient wraps a preconfigured client.
func NewResendSenderWithClient(client *resend.Client) *ResendSender {
	return &ResendSender{client: client}
}

// Send submits a single email to Resend.
func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	if err := msg.Validate(); err != nil {
		return Result{}, err
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("resend send failed: %w", err)
	}

	return Result{MessageID: sent.Id, SentAt: time.Now().UTC()}, nil
}

// Verify is a no-op: Resend exposes no credential check that does not send.
func (s *ResendSender) Verify(context.Context) error {
	return nil
}

// Provider returns ProviderResend.
func (s *ResendSender) Provider() string {
	return ProviderResend
}
