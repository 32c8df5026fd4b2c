package dto

import (
	"encoding/json"
	"fmt"
)

// ContactRequest is the raw, untrusted contact form payload. Constraints live
// in the contactform rule table, not in struct tags.
type ContactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
	Honey   string `json:"honey" form:"honey"`
}

// ContactOutcome identifies the terminal state of a submission.
type ContactOutcome string

const (
	ContactOutcomeSent     ContactOutcome = "sent"
	ContactOutcomeInvalid  ContactOutcome = "invalid"
	ContactOutcomeRejected ContactOutcome = "rejected"
	ContactOutcomeFailed   ContactOutcome = "failed"
)

// Messages returned to the form UI.
const (
	MessageValidationFailed  = "Validation failed"
	MessageInvalidSubmission = "Invalid form submission"
	MessageDeliveryFailed    = "Failed to send message. Please try again later."
)

// FieldErrors holds one message per invalid field. Valid fields are omitted.
type FieldErrors struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
}

// Empty reports whether no field carries an error.
func (f FieldErrors) Empty() bool {
	return f == FieldErrors{}
}

// ContactResult is the outcome of a submission. Build it with the
// constructors below so FieldErrors is set only for invalid input.
type ContactResult struct {
	Outcome     ContactOutcome
	FieldErrors *FieldErrors
}

// ContactSent reports a delivered submission.
func ContactSent() ContactResult {
	return ContactResult{Outcome: ContactOutcomeSent}
}

// ContactInvalid reports schema violations.
func ContactInvalid(fields FieldErrors) ContactResult {
	return ContactResult{Outcome: ContactOutcomeInvalid, FieldErrors: &fields}
}

// ContactRejected reports a submission flagged as automated or unreadable.
func ContactRejected() ContactResult {
	return ContactResult{Outcome: ContactOutcomeRejected}
}

// ContactFailed reports a delivery failure.
func ContactFailed() ContactResult {
	return ContactResult{Outcome: ContactOutcomeFailed}
}

// Success reports whether the submission was delivered.
func (r ContactResult) Success() bool {
	return r.Outcome == ContactOutcomeSent
}

// ErrorMessage returns the caller-facing error, or "" on success.
func (r ContactResult) ErrorMessage() string {
	switch r.Outcome {
	case ContactOutcomeSent:
		return ""
	case ContactOutcomeInvalid:
		return MessageValidationFailed
	case ContactOutcomeRejected:
		return MessageInvalidSubmission
	default:
		return MessageDeliveryFailed
	}
}

type contactSuccessPayload struct {
	Success bool `json:"success"`
}

type contactFailurePayload struct {
	Error       string       `json:"error"`
	FieldErrors *FieldErrors `json:"fieldErrors"`
}

// MarshalJSON emits either {"success":true} or {"error":...,"fieldErrors":...}.
func (r ContactResult) MarshalJSON() ([]byte, error) {
	if r.Success() {
		return json.Marshal(contactSuccessPayload{Success: true})
	}

	payload := contactFailurePayload{Error: r.ErrorMessage()}
	if r.Outcome == ContactOutcomeInvalid {
		fields := FieldErrors{}
		if r.FieldErrors != nil {
			fields = *r.FieldErrors
		}
		payload.FieldErrors = &fields
	}
	return json.Marshal(payload)
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON.
func (r *ContactResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Success     bool         `json:"success"`
		Error       string       `json:"error"`
		FieldErrors *FieldErrors `json:"fieldErrors"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	switch {
	case wire.Success:
		*r = ContactSent()
	case wire.Error == MessageValidationFailed:
		fields := FieldErrors{}
		if wire.FieldErrors != nil {
			fields = *wire.FieldErrors
		}
		*r = ContactInvalid(fields)
	case wire.Error == MessageInvalidSubmission:
		*r = ContactRejected()
	case wire.Error == MessageDeliveryFailed:
		*r = ContactFailed()
	default:
		return fmt.Errorf("unknown contact result %q", wire.Error)
	}
	return nil
}

// ContactValidationResponse answers the advisory pre-submit check.
type ContactValidationResponse struct {
	Valid       bool         `json:"valid"`
	Error       string       `json:"error,omitempty"`
	FieldErrors *FieldErrors `json:"fieldErrors,omitempty"`
}
