package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	netmail "net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const defaultSMTPTimeout = 30 * time.Second

// SMTPConfig describes an authenticated relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	HeloName string
	Timeout  time.Duration
}

// SMTPSender relays messages through an SMTP server, optionally DKIM-signed.
type SMTPSender struct {
	cfg    SMTPConfig
	signer *DKIMSigner
	now    func() time.Time
}

// NewSMTPSender constructs a relay sender. signer may be nil.
func NewSMTPSender(cfg SMTPConfig, signer *DKIMSigner) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp: host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.HeloName == "" {
		cfg.HeloName = "localhost"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMTPTimeout
	}
	return &SMTPSender{cfg: cfg, signer: signer, now: time.Now}, nil
}

// Send builds, signs and relays the message.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (Result, error) {
	if err := msg.Validate(); err != nil {
		return Result{}, err
	}

	from, err := netmail.ParseAddress(msg.From)
	if err != nil {
		return Result{}, fmt.Errorf("smtp: parse sender: %w", err)
	}
	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		addr, err := netmail.ParseAddress(to)
		if err != nil {
			return Result{}, fmt.Errorf("smtp: parse recipient: %w", err)
		}
		recipients = append(recipients, addr.Address)
	}

	sentAt := s.now().UTC()
	messageID := uuid.NewString() + "@" + domainOf(from.Address)
	raw, err := BuildMIME(msg, sentAt, messageID)
	if err != nil {
		return Result{}, err
	}
	raw, err = s.signer.Sign(raw, from.Address)
	if err != nil {
		return Result{}, err
	}

	client, closeConn, err := s.dial(ctx)
	if err != nil {
		return Result{}, err
	}
	defer closeConn()

	if err := client.Mail(from.Address); err != nil {
		return Result{}, fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return Result{}, fmt.Errorf("rcpt to: %w", err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return Result{}, fmt.Errorf("data start: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return Result{}, fmt.Errorf("data write: %w", err)
	}
	if err := w.Close(); err != nil {
		return Result{}, fmt.Errorf("data close: %w", err)
	}
	if err := client.Quit(); err != nil {
		return Result{}, fmt.Errorf("quit: %w", err)
	}

	return Result{MessageID: messageID, SentAt: sentAt}, nil
}

// Verify opens a session, authenticates and issues NOOP.
func (s *SMTPSender) Verify(ctx context.Context) error {
	client, closeConn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer closeConn()

	if err := client.Noop(); err != nil {
		return fmt.Errorf("noop: %w", err)
	}
	return client.Quit()
}

// Provider returns ProviderSMTP.
func (s *SMTPSender) Provider() string {
	return ProviderSMTP
}

func (s *SMTPSender) dial(ctx context.Context) (*smtp.Client, func(), error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}

	deadline := time.Now().Add(s.cfg.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("new client: %w", err)
	}
	closeConn := func() { _ = client.Close() }

	if err := client.Hello(s.cfg.HeloName); err != nil {
		closeConn()
		return nil, nil, fmt.Errorf("helo: %w", err)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConf := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
		if err := client.StartTLS(tlsConf); err != nil {
			closeConn()
			return nil, nil, fmt.Errorf("starttls: %w", err)
		}
	}

	if s.cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); !ok {
			closeConn()
			return nil, nil, fmt.Errorf("smtp: server does not support AUTH")
		}
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			closeConn()
			return nil, nil, fmt.Errorf("auth: %w", err)
		}
	}

	return client, closeConn, nil
}
