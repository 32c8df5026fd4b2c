// Package mail delivers transactional email through pluggable providers.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by configuration.
const (
	ProviderLog    = "log"
	ProviderResend = "resend"
	ProviderSES    = "ses"
	ProviderSMTP   = "smtp"
)

var (
	// ErrInvalidMessage indicates a message missing a sender, recipient or subject.
	ErrInvalidMessage = errors.New("mail: invalid message")
)

// Message is a fully rendered email. From may carry a display name
// ("Chef <noreply@example.com>").
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Validate checks the fields every provider requires.
func (m Message) Validate() error {
	switch {
	case strings.TrimSpace(m.From) == "":
		return fmt.Errorf("%w: missing sender", ErrInvalidMessage)
	case len(m.To) == 0:
		return fmt.Errorf("%w: missing recipient", ErrInvalidMessage)
	case strings.TrimSpace(m.Subject) == "":
		return fmt.Errorf("%w: missing subject", ErrInvalidMessage)
	case m.HTML == "" && m.Text == "":
		return fmt.Errorf("%w: missing body", ErrInvalidMessage)
	}
	return nil
}

// Result describes an accepted message.
type Result struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a message through one provider. Send returns an error for
// any delivery fault; callers treat all faults alike.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
	// Verify checks credentials and connectivity without sending mail.
	Verify(ctx context.Context) error
	// Provider returns the provider name used in logs and metrics.
	Provider() string
}

// FormatAddress renders "Name <address>", or the bare address without a name.
func FormatAddress(name, address string) string {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
