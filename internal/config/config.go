package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/chef-site-api/pkg/mail"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	CORSOrigins string

	MailProvider string
	MailFrom     string
	MailFromName string
	MailTo       []string
	MailTimeout  time.Duration

	ResendAPIKey string

	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	DKIMSelector   string
	DKIMDomain     string
	DKIMPrivateKey string
	DKIMKeyPath    string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// MailSender returns the formatted From header for contact email.
func (c Config) MailSender() string {
	return mail.FormatAddress(c.MailFromName, c.MailFrom)
}

// SES returns the SES transport settings.
func (c Config) SES() mail.SESConfig {
	return mail.SESConfig{
		Region:          c.SESRegion,
		AccessKeyID:     c.SESAccessKeyID,
		SecretAccessKey: c.SESSecretAccessKey,
	}
}

// SMTP returns the SMTP relay settings.
func (c Config) SMTP() mail.SMTPConfig {
	return mail.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		Timeout:  c.MailTimeout,
	}
}

// DKIM returns the signing settings used by the SMTP transport.
func (c Config) DKIM() mail.DKIMConfig {
	return mail.DKIMConfig{
		Selector:   c.DKIMSelector,
		Domain:     c.DKIMDomain,
		PrivateKey: c.DKIMPrivateKey,
		KeyPath:    c.DKIMKeyPath,
	}
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CHEF")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Chef Site API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("mail.provider", mail.ProviderLog)
	v.SetDefault("mail.timeout", "10s")
	v.SetDefault("smtp.port", 587)

	timeoutString := v.GetString("mail.timeout")
	if timeoutString == "" {
		timeoutString = "10s"
	}

	timeout, err := time.ParseDuration(timeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid mail timeout: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("mail timeout must be positive")
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		CORSOrigins:        v.GetString("cors.origins"),
		MailProvider:       strings.ToLower(strings.TrimSpace(v.GetString("mail.provider"))),
		MailFrom:           strings.TrimSpace(v.GetString("mail.from")),
		MailFromName:       strings.TrimSpace(v.GetString("mail.from_name")),
		MailTo:             splitList(v.GetString("mail.to")),
		MailTimeout:        timeout,
		ResendAPIKey:       v.GetString("resend.api_key"),
		SESRegion:          v.GetString("ses.region"),
		SESAccessKeyID:     v.GetString("ses.access_key_id"),
		SESSecretAccessKey: v.GetString("ses.secret_access_key"),
		SMTPHost:           v.GetString("smtp.host"),
		SMTPPort:           v.GetInt("smtp.port"),
		SMTPUsername:       v.GetString("smtp.username"),
		SMTPPassword:       v.GetString("smtp.password"),
		DKIMSelector:       v.GetString("dkim.selector"),
		DKIMDomain:         v.GetString("dkim.domain"),
		DKIMPrivateKey:     v.GetString("dkim.private_key"),
		DKIMKeyPath:        v.GetString("dkim.key_path"),
	}

	if cfg.MailFrom == "" {
		return Config{}, fmt.Errorf("mail sender address must be provided")
	}

	if len(cfg.MailTo) == 0 {
		return Config{}, fmt.Errorf("at least one mail recipient must be provided")
	}

	switch cfg.MailProvider {
	case mail.ProviderLog:
	case mail.ProviderResend:
		if cfg.ResendAPIKey == "" {
			return Config{}, fmt.Errorf("resend api key must be provided")
		}
	case mail.ProviderSES:
		if cfg.SESRegion == "" {
			return Config{}, fmt.Errorf("ses region must be provided")
		}
	case mail.ProviderSMTP:
		if cfg.SMTPHost == "" {
			return Config{}, fmt.Errorf("smtp host must be provided")
		}
	default:
		return Config{}, fmt.Errorf("unsupported mail provider %q", cfg.MailProvider)
	}

	if cfg.SMTPPort <= 0 {
		cfg.SMTPPort = 587
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
