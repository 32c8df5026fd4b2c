// Package contactform holds the contact form schema. The same rules back the
// advisory pre-submit check, the published JSON Schema and the authoritative
// submission gate.
package contactform

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/chef-site-api/internal/dto"
)

// ValidatedSubmission is a submission that passed every rule. The honeypot
// value is intentionally absent.
type ValidatedSubmission struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Violation lists the messages of one invalid field.
type Violation struct {
	Field    Field
	Messages []string
}

// Violations is ordered like Rules.
type Violations []Violation

// Has reports whether the field is invalid.
func (v Violations) Has(field Field) bool {
	return len(v.Messages(field)) > 0
}

// Messages returns every message recorded for the field.
func (v Violations) Messages(field Field) []string {
	for _, violation := range v {
		if violation.Field == field {
			return violation.Messages
		}
	}
	return nil
}

// First returns the first message recorded for the field, or "".
func (v Violations) First(field Field) string {
	if messages := v.Messages(field); len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// FieldErrors flattens the violations to one message per user-facing field.
func (v Violations) FieldErrors() dto.FieldErrors {
	return dto.FieldErrors{
		Name:    v.First(FieldName),
		Email:   v.First(FieldEmail),
		Subject: v.First(FieldSubject),
		Message: v.First(FieldMessage),
	}
}

// Validator evaluates contact submissions against Rules. It holds no state
// besides the compiled rules and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	rules    []Rule
	schema   []byte
}

// New registers the contact tags on validate and compiles the JSON Schema.
// A nil validate gets a fresh instance.
func New(validate *validator.Validate) (*Validator, error) {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	err := validate.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
		return emailRegexp.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("register %s validation: %w", emailTag, err)
	}

	err = validate.RegisterValidation(utf8Tag, func(fl validator.FieldLevel) bool {
		return utf8.ValidString(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("register %s validation: %w", utf8Tag, err)
	}

	schema, err := SchemaJSON(Rules)
	if err != nil {
		return nil, err
	}

	return &Validator{validate: validate, rules: Rules, schema: schema}, nil
}

// Schema returns the JSON Schema document describing the rules.
func (v *Validator) Schema() []byte {
	out := make([]byte, len(v.schema))
	copy(out, v.schema)
	return out
}

// Validate checks every field independently and aggregates all violations.
// It never fails fast and has no side effects.
func (v *Validator) Validate(req dto.ContactRequest) (ValidatedSubmission, Violations) {
	var violations Violations
	for _, rule := range v.rules {
		messages := v.check(rule, fieldValue(req, rule.Field))
		if len(messages) > 0 {
			violations = append(violations, Violation{Field: rule.Field, Messages: messages})
		}
	}

	if len(violations) > 0 {
		return ValidatedSubmission{}, violations
	}

	return ValidatedSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}, nil
}

func (v *Validator) check(rule Rule, value string) []string {
	err := v.validate.Var(value, rule.tag())
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{rule.message("")}
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, rule.message(fe.Tag()))
	}
	return messages
}

func fieldValue(req dto.ContactRequest, field Field) string {
	switch field {
	case FieldName:
		return req.Name
	case FieldEmail:
		return req.Email
	case FieldSubject:
		return req.Subject
	case FieldMessage:
		return req.Message
	case FieldHoney:
		return req.Honey
	}
	return ""
}
