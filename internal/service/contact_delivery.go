package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/chef-site-api/internal/config"
	"github.com/noah-isme/chef-site-api/pkg/mail"
)

// NewContactDelivery selects the mail transport named by cfg.MailProvider.
func NewContactDelivery(ctx context.Context, cfg config.Config, logger zerolog.Logger) (mail.Sender, error) {
	logger = logger.With().Str("component", "contact_delivery").Logger()

	switch cfg.MailProvider {
	case mail.ProviderLog, "":
		logger.Warn().Msg("mail provider is log; contact email will not leave this process")
		return mail.NewLogSender(logger), nil
	case mail.ProviderResend:
		return mail.NewResendSender(cfg.ResendAPIKey), nil
	case mail.ProviderSES:
		sender, err := mail.NewSESSender(ctx, cfg.SES())
		if err != nil {
			return nil, fmt.Errorf("init ses sender: %w", err)
		}
		return sender, nil
	case mail.ProviderSMTP:
		signer, err := mail.NewDKIMSigner(cfg.DKIM())
		if err != nil {
			return nil, fmt.Errorf("init dkim signer: %w", err)
		}
		if signer == nil {
			logger.Info().Msg("dkim signing disabled")
		}
		sender, err := mail.NewSMTPSender(cfg.SMTP(), signer)
		if err != nil {
			return nil, fmt.Errorf("init smtp sender: %w", err)
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.MailProvider)
	}
}
