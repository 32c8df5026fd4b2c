package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/chef-site-api/internal/contactform"
	"github.com/noah-isme/chef-site-api/internal/dto"
	"github.com/noah-isme/chef-site-api/internal/observability"
	"github.com/noah-isme/chef-site-api/pkg/mail"
)

const defaultContactTimeout = 10 * time.Second

// ContactService exposes the contact submission workflow.
type ContactService interface {
	Submit(ctx context.Context, req dto.ContactRequest) dto.ContactResult
	Validate(req dto.ContactRequest) dto.ContactValidationResponse
}

// ContactConfig carries the envelope and delivery budget for contact email.
type ContactConfig struct {
	From    string
	To      []string
	Site    string
	Timeout time.Duration
}

type contactService struct {
	form     *contactform.Validator
	sender   mail.Sender
	composer *ContactComposer
	timeout  time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewContactService constructs a contact submission service.
func NewContactService(form *contactform.Validator, sender mail.Sender, cfg ContactConfig, logger zerolog.Logger) ContactService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultContactTimeout
	}
	return &contactService{
		form:     form,
		sender:   sender,
		composer: NewContactComposer(cfg.From, cfg.To, cfg.Site),
		timeout:  timeout,
		logger:   logger.With().Str("component", "contact_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/chef-site-api/internal/service/contact"),
	}
}

// Submit runs the honeypot gate, re-validates, and dispatches the email.
// It never returns an error: every failure maps onto a ContactResult.
func (s *contactService) Submit(ctx context.Context, req dto.ContactRequest) (result dto.ContactResult) {
	ctx, span := s.tracer.Start(ctx, "contact.submit")
	defer span.End()

	referenceID := uuid.NewString()
	logger := s.logger.With().Str("reference_id", referenceID).Logger()
	span.SetAttributes(attribute.String("contact.reference_id", referenceID))

	defer func() {
		if recovered := recover(); recovered != nil {
			err := fmt.Errorf("contact submission panicked: %v", recovered)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			logger.Error().Err(err).Msg("contact submission aborted")
			result = dto.ContactFailed()
		}
		span.SetAttributes(attribute.String("contact.outcome", string(result.Outcome)))
		observability.ContactSubmissions().WithLabelValues(string(result.Outcome)).Inc()
	}()

	if req.Honey != "" {
		span.SetStatus(codes.Error, "honeypot tripped")
		logger.Warn().Msg("honeypot triggered, discarding submission")
		return dto.ContactRejected()
	}

	submission, violations := s.form.Validate(req)
	if len(violations) > 0 {
		span.SetStatus(codes.Error, "validation failed")
		logger.Info().Int("violations", len(violations)).Msg("contact submission rejected by validation")
		return dto.ContactInvalid(violations.FieldErrors())
	}

	message, err := s.composer.Compose(submission)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compose failed")
		logger.Error().Err(err).Msg("contact email could not be composed")
		return dto.ContactFailed()
	}

	sent, err := s.dispatch(ctx, logger, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		logger.Warn().Err(err).
			Str("provider", s.sender.Provider()).
			Str("email", maskEmailAddress(submission.Email)).
			Msg("contact delivery failed")
		return dto.ContactFailed()
	}

	logger.Info().
		Str("provider", s.sender.Provider()).
		Str("message_id", sent.MessageID).
		Str("email", maskEmailAddress(submission.Email)).
		Msg("contact submission delivered")
	span.SetStatus(codes.Ok, "delivered")

	return dto.ContactSent()
}

type sendOutcome struct {
	result mail.Result
	err    error
}

func (s *contactService) dispatch(ctx context.Context, logger zerolog.Logger, message mail.Message) (mail.Result, error) {
	ctx, span := s.tracer.Start(ctx, "mail.send", trace.WithAttributes(
		attribute.String("mail.provider", s.sender.Provider()),
		attribute.Int("mail.recipients", len(message.To)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan sendOutcome, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- sendOutcome{err: fmt.Errorf("mail sender panicked: %v", recovered)}
			}
		}()
		sent, err := s.sender.Send(ctx, message)
		done <- sendOutcome{result: sent, err: err}
	}()

	var (
		sent mail.Result
		err  error
	)
	select {
	case outcome := <-done:
		sent, err = outcome.result, outcome.err
	case <-ctx.Done():
		err = fmt.Errorf("mail dispatch abandoned: %w", ctx.Err())
		go s.reportLateDispatch(done, logger, start)
	}

	resultLabel := "ok"
	if err != nil {
		resultLabel = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
	}
	observability.MailDispatch().WithLabelValues(s.sender.Provider(), resultLabel).Observe(time.Since(start).Seconds())

	return sent, err
}

// reportLateDispatch logs the outcome of a send abandoned at the deadline.
func (s *contactService) reportLateDispatch(done <-chan sendOutcome, logger zerolog.Logger, start time.Time) {
	outcome := <-done
	event := logger.Warn().
		Str("provider", s.sender.Provider()).
		Dur("elapsed", time.Since(start))
	if outcome.err != nil {
		event.Err(outcome.err).Msg("abandoned mail dispatch finished with an error")
		return
	}
	event.Str("message_id", outcome.result.MessageID).
		Msg("abandoned mail dispatch was delivered after the deadline")
}

// Validate is the advisory pre-submit check. It shares the rule table with
// Submit but never sends mail.
func (s *contactService) Validate(req dto.ContactRequest) dto.ContactValidationResponse {
	_, violations := s.form.Validate(req)
	if len(violations) == 0 {
		return dto.ContactValidationResponse{Valid: true}
	}

	response := dto.ContactValidationResponse{}
	if violations.Has(contactform.FieldHoney) {
		response.Error = dto.MessageInvalidSubmission
		return response
	}

	fields := violations.FieldErrors()
	response.Error = dto.MessageValidationFailed
	response.FieldErrors = &fields
	return response
}
