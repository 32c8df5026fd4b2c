package contactform

import (
	"fmt"
	"regexp"
	"strings"
)

// Field names a contact form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
	// FieldHoney is the honeypot input. It is valid only when empty.
	FieldHoney Field = "honey"
)

// FormatEmail marks a rule whose value must match EmailPattern.
const FormatEmail = "email"

// Unbounded disables the maximum length check of a rule.
const Unbounded = -1

const emailTag = "contact_email"

// utf8Tag rejects byte sequences that are not valid UTF-8.
const utf8Tag = "contact_utf8"

// EmailPattern is the address grammar shared by the server validator and the
// published JSON Schema. It must stay RE2 compatible.
const EmailPattern = `^[A-Za-z0-9_'+\-]+(?:\.[A-Za-z0-9_'+\-]+)*@(?:[A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`

var emailRegexp = regexp.MustCompile(EmailPattern)

// Rule describes the constraints of one field. Lengths are counted in runes
// and both bounds are inclusive.
type Rule struct {
	Field         Field
	MinLength     int
	MaxLength     int
	Format        string
	MinMessage    string
	MaxMessage    string
	FormatMessage string
}

// Rules is the single source of truth for the contact form. Order matters:
// field errors are reported in this order.
var Rules = []Rule{
	{
		Field:      FieldName,
		MinLength:  2,
		MaxLength:  100,
		MinMessage: "Name must be at least 2 characters",
		MaxMessage: "Name is too long",
	},
	{
		Field:         FieldEmail,
		MaxLength:     Unbounded,
		Format:        FormatEmail,
		FormatMessage: "Please enter a valid email address",
	},
	{
		Field:      FieldSubject,
		MinLength:  3,
		MaxLength:  200,
		MinMessage: "Subject must be at least 3 characters",
		MaxMessage: "Subject is too long",
	},
	{
		Field:      FieldMessage,
		MinLength:  10,
		MaxLength:  2000,
		MinMessage: "Message must be at least 10 characters",
		MaxMessage: "Message is too long",
	},
	{
		Field:      FieldHoney,
		MaxLength:  0,
		MaxMessage: "Invalid form submission",
	},
}

// tag renders the rule as a go-playground/validator tag.
func (r Rule) tag() string {
	parts := make([]string, 0, 4)
	parts = append(parts, utf8Tag)
	if r.MinLength > 0 {
		parts = append(parts, fmt.Sprintf("min=%d", r.MinLength))
	}
	if r.MaxLength != Unbounded {
		parts = append(parts, fmt.Sprintf("max=%d", r.MaxLength))
	}
	if r.Format == FormatEmail {
		parts = append(parts, emailTag)
	}
	return strings.Join(parts, ",")
}

func (r Rule) message(tag string) string {
	switch tag {
	case "min":
		return r.MinMessage
	case "max":
		return r.MaxMessage
	case emailTag:
		return r.FormatMessage
	case utf8Tag:
		if r.FormatMessage != "" {
			return r.FormatMessage
		}
		if r.MinMessage != "" {
			return r.MinMessage
		}
		return r.MaxMessage
	}
	if r.FormatMessage != "" {
		return r.FormatMessage
	}
	return r.MinMessage
}
