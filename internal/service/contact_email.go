package service

import (
	"bytes"
	"fmt"
	"html"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/noah-isme/chef-site-api/internal/contactform"
	"github.com/noah-isme/chef-site-api/pkg/mail"
)

// ContactSubjectPrefix is prepended to the submitter's subject line.
const ContactSubjectPrefix = "Contact Form: "

const contactHTMLLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Arial,sans-serif;background-color:#1a1a1a;">
<table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="background-color:#1a1a1a;">
<tr><td style="padding:40px 20px;">
<table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="max-width:600px;margin:0 auto;background-color:#0f0f0f;border:1px solid #fee9ce33;">
<tr><td style="padding:48px 40px 32px;border-bottom:2px solid #f84f3e;">
<h1 style="margin:0;font-size:42px;font-weight:900;color:#f84f3e;text-transform:uppercase;">New message</h1>
<p style="margin:12px 0 0;font-size:16px;color:#fee9ce99;">Received through the contact form</p>
</td></tr>
<tr><td style="padding:40px;">
<p style="margin:0 0 8px;font-size:13px;color:#fee9ce99;text-transform:uppercase;font-weight:700;">Name</p>
<p style="margin:0 0 28px;font-size:20px;color:#fee9ce;">{{.Name}}</p>
<p style="margin:0 0 8px;font-size:13px;color:#fee9ce99;text-transform:uppercase;font-weight:700;">Email</p>
<p style="margin:0 0 28px;font-size:20px;color:#fee9ce;"><a {{.MailTo}} style="color:#f84f3e;text-decoration:none;">{{.Email}}</a></p>
<p style="margin:0 0 8px;font-size:13px;color:#fee9ce99;text-transform:uppercase;font-weight:700;">Subject</p>
<p style="margin:0 0 28px;font-size:20px;color:#fee9ce;">{{.Subject}}</p>
<hr style="border:0;border-top:1px solid #fee9ce33;margin:32px 0;">
<p style="margin:0 0 12px;font-size:13px;color:#fee9ce99;text-transform:uppercase;font-weight:700;">Message</p>
<p style="margin:0;font-size:18px;color:#fee9ce;line-height:1.7;">{{.Message}}</p>
</td></tr>
<tr><td style="padding:32px 40px;background-color:#0a0a0a;border-top:1px solid #fee9ce33;">
<p style="margin:0;font-size:14px;color:#fee9ce66;text-align:center;">Sent through the contact form{{if .Site}} on <span style="color:#f84f3e;font-weight:700;">{{.Site}}</span>{{end}}</p>
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>
`

const contactTextLayout = `NEW MESSAGE - Contact Form
==========================

NAME
{{.Name}}

EMAIL
{{.Email}}

SUBJECT
{{.Subject}}

MESSAGE
{{.Message}}

---
Sent through the contact form{{if .Site}} on {{.Site}}{{end}}
`

var (
	contactHTMLTemplate = htmltemplate.Must(htmltemplate.New("contact_html").Parse(contactHTMLLayout))
	contactTextTemplate = texttemplate.Must(texttemplate.New("contact_text").Parse(contactTextLayout))
)

// User values are escaped up front and handed to html/template as trusted
// fragments so the <br> line breaks survive.
type contactHTMLView struct {
	Name    htmltemplate.HTML
	Email   htmltemplate.HTML
	MailTo  htmltemplate.HTMLAttr
	Subject htmltemplate.HTML
	Message htmltemplate.HTML
	Site    string
}

type contactTextView struct {
	Name    string
	Email   string
	Subject string
	Message string
	Site    string
}

// ContactComposer renders validated submissions into outgoing email.
type ContactComposer struct {
	from string
	to   []string
	site string
}

// NewContactComposer builds a composer for the configured envelope.
func NewContactComposer(from string, to []string, site string) *ContactComposer {
	recipients := make([]string, len(to))
	copy(recipients, to)
	return &ContactComposer{from: from, to: recipients, site: site}
}

// Compose builds the outgoing email. Every field value appears verbatim in
// the text body; the html body escapes markup and turns newlines into <br>.
func (c *ContactComposer) Compose(submission contactform.ValidatedSubmission) (mail.Message, error) {
	var htmlBody bytes.Buffer
	err := contactHTMLTemplate.Execute(&htmlBody, contactHTMLView{
		Name:    escapeHTML(submission.Name),
		Email:   escapeHTML(submission.Email),
		MailTo:  mailtoAttr(submission.Email),
		Subject: escapeHTML(submission.Subject),
		Message: htmlLineBreaks(submission.Message),
		Site:    c.site,
	})
	if err != nil {
		return mail.Message{}, fmt.Errorf("render html body: %w", err)
	}

	var textBody bytes.Buffer
	err = contactTextTemplate.Execute(&textBody, contactTextView{
		Name:    submission.Name,
		Email:   submission.Email,
		Subject: submission.Subject,
		Message: submission.Message,
		Site:    c.site,
	})
	if err != nil {
		return mail.Message{}, fmt.Errorf("render text body: %w", err)
	}

	to := make([]string, len(c.to))
	copy(to, c.to)

	return mail.Message{
		From:    c.from,
		To:      to,
		ReplyTo: submission.Email,
		Subject: ContactSubjectPrefix + submission.Subject,
		HTML:    htmlBody.String(),
		Text:    textBody.String(),
	}, nil
}

func escapeHTML(value string) htmltemplate.HTML {
	return htmltemplate.HTML(html.EscapeString(value))
}

// mailtoAttr renders the whole href attribute. html/template would otherwise
// entity-encode '+' inside the address.
func mailtoAttr(email string) htmltemplate.HTMLAttr {
	return htmltemplate.HTMLAttr(`href="mailto:` + html.EscapeString(email) + `"`)
}

func htmlLineBreaks(value string) htmltemplate.HTML {
	escaped := html.EscapeString(strings.ReplaceAll(value, "\r\n", "\n"))
	return htmltemplate.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
