package notify

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a mail with a plain text body, an optional HTML alternative and
// attachments.
type Message struct {
	From        mail.Address
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
	Date        time.Time
}

// Bytes renders the message as RFC 5322 with CRLF line endings.
func (m Message) Bytes() ([]byte, error) {
	if m.From.Address == "" {
		return nil, errors.New("message has no sender")
	}
	if len(m.To) == 0 {
		return nil, errors.New("message has no recipients")
	}
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}

	var buf bytes.Buffer
	writeHeader(&buf, "From", m.From.String())
	writeHeader(&buf, "To", strings.Join(m.To, ", "))
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	writeHeader(&buf, "Date", date.Format(time.RFC1123Z))
	writeHeader(&buf, "MIME-Version", "1.0")

	mixed := multipart.NewWriter(&buf)
	writeHeader(&buf, "Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mixed.Boundary()}))
	buf.WriteString("\r\n")

	if err := m.writeBody(mixed); err != nil {
		return nil, err
	}
	for _, a := range m.Attachments {
		if err := writeAttachment(mixed, a); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m Message) writeBody(mixed *multipart.Writer) error {
	if m.HTML == "" {
		return writeText(mixed, "text/plain", m.Text)
	}

	var alt bytes.Buffer
	altWriter := multipart.NewWriter(&alt)
	if err := writeText(altWriter, "text/plain", m.Text); err != nil {
		return err
	}
	if err := writeText(altWriter, "text/html", m.HTML); err != nil {
		return err
	}
	if err := altWriter.Close(); err != nil {
		return err
	}

	h := textproto.MIMEHeader{}
	h.Set("Content-Type", mime.FormatMediaType("multipart/alternative", map[string]string{"boundary": altWriter.Boundary()}))
	part, err := mixed.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(alt.Bytes())
	return err
}

func writeText(w *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+"; charset=utf-8")
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func writeAttachment(w *multipart.Writer, a Attachment) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", a.ContentType)
	h.Set("Content-Transfer-Encoding", "base64")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(a.Data)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = fmt.Fprintf(part, "%s\r\n", encoded)
	return err
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}
