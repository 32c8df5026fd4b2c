package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chef-site-api/pkg/mail"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CHEF_MAIL_FROM", "noreply@chef.test")
	t.Setenv("CHEF_MAIL_TO", "inbox@chef.test, , kitchen@chef.test")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "Chef Site API", cfg.AppName)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "*", cfg.CORSOrigins)
	require.Equal(t, mail.ProviderLog, cfg.MailProvider)
	require.Equal(t, 10*time.Second, cfg.MailTimeout)
	require.Equal(t, []string{"inbox@chef.test", "kitchen@chef.test"}, cfg.MailTo)
	require.Equal(t, 587, cfg.SMTPPort)
	require.Equal(t, "noreply@chef.test", cfg.MailSender())
}

func TestLoadSenderDisplayName(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CHEF_MAIL_FROM_NAME", "Chef Site")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Chef Site <noreply@chef.test>", cfg.MailSender())
}

func TestLoadRequiresEnvelope(t *testing.T) {
	t.Setenv("CHEF_MAIL_TO", "inbox@chef.test")
	t.Setenv("CHEF_MAIL_FROM", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CHEF_MAIL_FROM", "noreply@chef.test")
	t.Setenv("CHEF_MAIL_TO", " , ")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadProviderSettings(t *testing.T) {
	cases := []struct {
		name     string
		provider string
		env      map[string]string
		wantErr  bool
	}{
		{name: "unknown provider", provider: "fax", wantErr: true},
		{name: "resend without key", provider: "resend", wantErr: true},
		{name: "resend", provider: "resend", env: map[string]string{"CHEF_RESEND_API_KEY": "re_123"}},
		{name: "ses without region", provider: "ses", wantErr: true},
		{name: "ses", provider: "SES", env: map[string]string{"CHEF_SES_REGION": "eu-west-1"}},
		{name: "smtp without host", provider: "smtp", wantErr: true},
		{name: "smtp", provider: "smtp", env: map[string]string{"CHEF_SMTP_HOST": "smtp.chef.test", "CHEF_SMTP_PORT": "2525"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("CHEF_MAIL_PROVIDER", tc.provider)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotEqual(t, mail.ProviderLog, cfg.MailProvider)
		})
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CHEF_MAIL_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CHEF_MAIL_TIMEOUT", "0s")
	_, err = Load()
	require.Error(t, err)
}

func TestTransportSettings(t *testing.T) {
	cfg := Config{
		MailTimeout:        3 * time.Second,
		SESRegion:          "eu-west-1",
		SESAccessKeyID:     "AKIA",
		SESSecretAccessKey: "secret",
		SMTPHost:           "smtp.chef.test",
		SMTPPort:           2525,
		SMTPUsername:       "user",
		SMTPPassword:       "pass",
		DKIMSelector:       "mail",
		DKIMDomain:         "chef.test",
	}

	require.Equal(t, mail.SESConfig{Region: "eu-west-1", AccessKeyID: "AKIA", SecretAccessKey: "secret"}, cfg.SES())
	require.Equal(t, mail.SMTPConfig{Host: "smtp.chef.test", Port: 2525, Username: "user", Password: "pass", Timeout: 3 * time.Second}, cfg.SMTP())
	require.True(t, cfg.DKIM().Enabled())
}
