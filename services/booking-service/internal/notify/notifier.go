package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"time"

	"github.com/cruiserex/site/services/booking-service/internal/model"
)

type Config struct {
	// Brand names the site in the subject and the sender display name.
	Brand string
	// From is the envelope sender address.
	From string
	// To receives every notification.
	To string
}

// EmailNotifier mails the site owner whenever an appointment is booked.
type EmailNotifier struct {
	sender Sender
	cfg    Config
	now    func() time.Time
}

func NewEmailNotifier(sender Sender, cfg Config) *EmailNotifier {
	cfg.Brand = strings.TrimSpace(cfg.Brand)
	if cfg.Brand == "" {
		cfg.Brand = "Cruiserex"
	}
	return &EmailNotifier{sender: sender, cfg: cfg, now: time.Now}
}

func (n *EmailNotifier) Notify(ctx context.Context, appt model.Appointment) error {
	if n.cfg.To == "" || n.cfg.From == "" {
		return errors.New("notification sender or recipient not configured")
	}
	msg, err := n.message(appt)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (n *EmailNotifier) message(appt model.Appointment) (Message, error) {
	now := n.now()
	invite, err := Invite(appt, n.cfg.Brand, now)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    mail.Address{Name: n.cfg.Brand + " Citas", Address: n.cfg.From},
		To:      []string{n.cfg.To},
		Subject: "Nueva cita agendada desde " + n.cfg.Brand,
		Text:    textBody(appt),
		HTML:    htmlBody(appt),
		Date:    now,
		Attachments: []Attachment{{
			Filename:    fmt.Sprintf("cita-%d.ics", appt.ID),
			ContentType: "text/calendar; charset=utf-8; method=PUBLISH",
			Data:        invite,
		}},
	}, nil
}

type line struct {
	label string
	value string
}

func lines(appt model.Appointment) []line {
	return []line{
		{"Fecha", appt.Date},
		{"Hora", appt.Time},
		{"Nombre del solicitante", appt.RequesterName},
		{"Empresa", appt.CompanyName},
		{"Ubicación", appt.CompanyLocation},
		{"Teléfono", appt.Phone},
		{"Correo", appt.Email},
		{"Motivo", appt.Reason},
	}
}

func textBody(appt model.Appointment) string {
	var b strings.Builder
	b.WriteString("Se ha creado una nueva cita:\n\n")
	for _, l := range lines(appt) {
		fmt.Fprintf(&b, "%s: %s\n", l.label, l.value)
	}
	return b.String()
}

func htmlBody(appt model.Appointment) string {
	var b strings.Builder
	b.WriteString("<h2>Nueva cita agendada</h2>\n")
	for _, l := range lines(appt) {
		fmt.Fprintf(&b, "<p><strong>%s:</strong> %s</p>\n", l.label, html.EscapeString(l.value))
	}
	return b.String()
}
