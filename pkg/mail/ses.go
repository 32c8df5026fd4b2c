package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const sesCharset = "UTF-8"

// SESConfig holds the settings for Amazon SES. Empty keys fall back to the
// default AWS credential chain.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	GetAccount(ctx context.Context, params *sesv2.GetAccountInput, optFns ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error)
}

// SESSender sends emails through the SES v2 API.
type SESSender struct {
	api sesAPI
}

// NewSESSender loads AWS configuration and builds an SES v2 client.
func NewSESSender(ctx context.Context, cfg SESConfig) (*SESSender, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("ses: region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ses: failed to load AWS config: %w", err)
	}

	return &SESSender{api: sesv2.NewFromConfig(awsCfg)}, nil
}

// Send issues a SendEmail call with simple content.
func (s *SESSender) Send(ctx context.Context, msg Message) (Result, error) {
	if err := msg.Validate(); err != nil {
		return Result{}, err
	}

	out, err := s.api.SendEmail(ctx, buildSESInput(msg))
	if err != nil {
		return Result{}, fmt.Errorf("ses send failed: %w", err)
	}

	return Result{MessageID: aws.ToString(out.MessageId), SentAt: time.Now().UTC()}, nil
}

// Verify fetches the account to confirm credentials and region.
func (s *SESSender) Verify(ctx context.Context) error {
	if _, err := s.api.GetAccount(ctx, &sesv2.GetAccountInput{}); err != nil {
		return fmt.Errorf("ses verify failed: %w", err)
	}
	return nil
}

// Provider returns ProviderSES.
func (s *SESSender) Provider() string {
	return ProviderSES
}

func buildSESInput(msg Message) *sesv2.SendEmailInput {
	body := &types.Body{}
	if msg.HTML != "" {
		body.Html = sesContent(msg.HTML)
	}
	if msg.Text != "" {
		body.Text = sesContent(msg.Text)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: append([]string(nil), msg.To...),
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: sesContent(msg.Subject),
				Body:    body,
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}
	return input
}

func sesContent(data string) *types.Content {
	return &types.Content{Data: aws.String(data), Charset: aws.String(sesCharset)}
}
