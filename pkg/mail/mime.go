package mail

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

// BuildMIME renders msg as an RFC 5322 message with CRLF line endings. Both
// bodies are sent as a multipart/alternative; a message with only one body
// is still wrapped so clients pick the right part.
func BuildMIME(msg Message, date time.Time, messageID string) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if msg.Text != "" {
		if err := writePart(writer, "text/plain", msg.Text); err != nil {
			return nil, err
		}
	}
	if msg.HTML != "" {
		if err := writePart(writer, "text/html", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var out bytes.Buffer
	writeHeader(&out, "From", msg.From)
	writeHeader(&out, "To", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		writeHeader(&out, "Reply-To", msg.ReplyTo)
	}
	writeHeader(&out, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&out, "Date", date.Format(time.RFC1123Z))
	if messageID != "" {
		writeHeader(&out, "Message-ID", "<"+messageID+">")
	}
	writeHeader(&out, "MIME-Version", "1.0")
	writeHeader(&out, "Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", writer.Boundary()))
	out.WriteString("\r\n")
	out.Write(body.Bytes())

	return out.Bytes(), nil
}

func writePart(writer *multipart.Writer, contentType, content string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType+"; charset=utf-8")
	header.Set("Content-Transfer-Encoding", "quoted-printable")

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}

	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return fmt.Errorf("encode %s part: %w", contentType, err)
	}
	return qp.Close()
}

// writeHeader drops CR and LF from header values so user-influenced text
// cannot start a new header.
func writeHeader(out *bytes.Buffer, key, value string) {
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	out.WriteString(key)
	out.WriteString(": ")
	out.WriteString(value)
	out.WriteString("\r\n")
}
