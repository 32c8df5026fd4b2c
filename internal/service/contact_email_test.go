package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chef-site-api/internal/contactform"
)

func TestContactComposerBuildsBothBodies(t *testing.T) {
	composer := NewContactComposer("Chef <noreply@chef.test>", []string{"a@chef.test", "b@chef.test"}, "chef.test")

	msg, err := composer.Compose(contactform.ValidatedSubmission{
		Name:    "Ana O'Neil",
		Email:   "ana+bookings@example.com",
		Subject: "Private dinner",
		Message: "Line 1\r\nLine 2",
	})
	require.NoError(t, err)
	require.NoError(t, msg.Validate())

	assert.Equal(t, "Contact Form: Private dinner", msg.Subject)
	assert.Equal(t, []string{"a@chef.test", "b@chef.test"}, msg.To)
	assert.Equal(t, "ana+bookings@example.com", msg.ReplyTo)

	assert.Contains(t, msg.HTML, "Ana O&#39;Neil")
	assert.Contains(t, msg.HTML, `href="mailto:ana+bookings@example.com"`)
	assert.Contains(t, msg.HTML, ">ana+bookings@example.com</a>")
	assert.Contains(t, msg.HTML, "Line 1<br>Line 2")
	assert.Contains(t, msg.HTML, "chef.test")
	assert.True(t, strings.HasPrefix(msg.HTML, "<!DOCTYPE html>"))

	assert.Contains(t, msg.Text, "Ana O'Neil")
	assert.Contains(t, msg.Text, "ana+bookings@example.com")
	assert.Contains(t, msg.Text, "Line 1\r\nLine 2")
}

func TestContactComposerCopiesRecipients(t *testing.T) {
	to := []string{"a@chef.test"}
	composer := NewContactComposer("noreply@chef.test", to, "")
	to[0] = "mutated@chef.test"

	msg, err := composer.Compose(contactform.ValidatedSubmission{Name: "Jo", Email: "jo@example.com", Subject: "Hey", Message: "0123456789"})
	require.NoError(t, err)
	require.Equal(t, []string{"a@chef.test"}, msg.To)

	msg.To[0] = "changed@chef.test"
	again, err := composer.Compose(contactform.ValidatedSubmission{Name: "Jo", Email: "jo@example.com", Subject: "Hey", Message: "0123456789"})
	require.NoError(t, err)
	require.Equal(t, []string{"a@chef.test"}, again.To)
	require.NotContains(t, again.Text, " on ")
}

func TestContactComposerKeepsLongMessageIntact(t *testing.T) {
	composer := NewContactComposer("noreply@chef.test", []string{"a@chef.test"}, "chef.test")
	body := strings.Repeat("A", 2000)

	msg, err := composer.Compose(contactform.ValidatedSubmission{Name: "Jo", Email: "jo@example.com", Subject: "Hey", Message: body})
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, body)
	assert.Contains(t, msg.Text, body)
}

func TestMailtoAttrKeepsPlusAndEscapesQuotes(t *testing.T) {
	assert.Equal(t, `href="mailto:ana+bookings@example.com"`, string(mailtoAttr("ana+bookings@example.com")))
	assert.Equal(t, `href="mailto:o&#39;neil@example.com"`, string(mailtoAttr("o'neil@example.com")))
	assert.Equal(t, `href="mailto:a&#34;b@example.com"`, string(mailtoAttr(`a"b@example.com`)))
}
