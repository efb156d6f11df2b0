package notify

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/cruiserex/site/services/booking-service/internal/model"
)

func sampleAppointment() model.Appointment {
	return model.Appointment{
		ID:              7,
		Date:            "2030-05-10",
		Time:            "10:30",
		RequesterName:   "Ana <Admin>",
		CompanyName:     "Acme",
		CompanyLocation: "Madrid",
		Phone:           "600123123",
		Email:           "ana@acme.es",
		Reason:          "Demo",
		Status:          model.StatusPending,
	}
}

type recordingSender struct {
	msgs []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestNotifierBuildsMessage(t *testing.T) {
	sender := &recordingSender{}
	n := NewEmailNotifier(sender, Config{Brand: "Cruiserex", From: "citas@cruiserex.es", To: "owner@cruiserex.es"})
	n.now = func() time.Time { return time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC) }

	if err := n.Notify(context.Background(), sampleAppointment()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.msgs))
	}
	msg := sender.msgs[0]
	if msg.To[0] != "owner@cruiserex.es" || msg.From.Name != "Cruiserex Citas" {
		t.Fatalf("unexpected addressing: %+v %v", msg.From, msg.To)
	}
	if msg.Subject != "Nueva cita agendada desde Cruiserex" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "Fecha: 2030-05-10") || !strings.Contains(msg.Text, "Motivo: Demo") {
		t.Fatalf("text body missing fields:\n%s", msg.Text)
	}
	if !strings.Contains(msg.HTML, "Ana &lt;Admin&gt;") {
		t.Fatalf("html body not escaped:\n%s", msg.HTML)
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].Filename != "cita-7.ics" {
		t.Fatalf("unexpected attachments: %+v", msg.Attachments)
	}
}

func TestNotifierRequiresRecipient(t *testing.T) {
	n := NewEmailNotifier(&recordingSender{}, Config{From: "a@b.co"})
	if err := n.Notify(context.Background(), sampleAppointment()); err == nil {
		t.Fatalf("expected error without recipient")
	}
}

func TestNotifierWrapsSendError(t *testing.T) {
	boom := errors.New("boom")
	n := NewEmailNotifier(&recordingSender{err: boom}, Config{From: "a@b.co", To: "c@d.co"})
	if err := n.Notify(context.Background(), sampleAppointment()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestInvite(t *testing.T) {
	data, err := Invite(sampleAppointment(), "Cruiserex", time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	ics := string(data)
	for _, want := range []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "UID:appointment-7@cruiserex.local", "LOCATION:Madrid"} {
		if !strings.Contains(ics, want) {
			t.Fatalf("invite missing %q:\n%s", want, ics)
		}
	}
	lines := strings.Split(ics, "\r\n")
	for _, want := range []string{"DTSTART:20300510T103000", "DTEND:20300510T113000"} {
		found := false
		for _, l := range lines {
			if strings.TrimSpace(l) == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("invite missing floating %q:\n%s", want, ics)
		}
	}
	if strings.Contains(ics, "TZID=") {
		t.Fatalf("floating times must not carry a TZID:\n%s", ics)
	}
}

func TestInviteRejectsBadDate(t *testing.T) {
	appt := sampleAppointment()
	appt.Date = "tomorrow"
	if _, err := Invite(appt, "x", time.Now()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMessageBytes(t *testing.T) {
	msg := Message{
		From:        mail.Address{Name: "Cruiserex Citas", Address: "citas@cruiserex.es"},
		To:          []string{"owner@cruiserex.es"},
		Subject:     "Nueva cita",
		Text:        "hola",
		HTML:        "<p>hola</p>",
		Attachments: []Attachment{{Filename: "cita.ics", ContentType: "text/calendar", Data: []byte("BEGIN:VCALENDAR")}},
	}
	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Header.Get("To") != "owner@cruiserex.es" {
		t.Fatalf("to = %q", parsed.Header.Get("To"))
	}
	if !strings.HasPrefix(parsed.Header.Get("Content-Type"), "multipart/mixed") {
		t.Fatalf("content type = %q", parsed.Header.Get("Content-Type"))
	}
	body := string(raw)
	for _, want := range []string{"multipart/alternative", "text/html", `filename=cita.ics`} {
		if !strings.Contains(body, want) {
			t.Fatalf("message missing %q", want)
		}
	}
}

func TestMessageRequiresAddresses(t *testing.T) {
	if _, err := (Message{To: []string{"a@b.co"}}).Bytes(); err == nil {
		t.Fatalf("expected error without sender")
	}
	if _, err := (Message{From: mail.Address{Address: "a@b.co"}}).Bytes(); err == nil {
		t.Fatalf("expected error without recipients")
	}
}

// fakeSMTP accepts one plaintext session without STARTTLS or AUTH and returns
// the DATA payload.
func fakeSMTP(t *testing.T) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		reply := func(s string) { conn.Write([]byte(s + "\r\n")) }
		reply("220 localhost ESMTP")
		var data strings.Builder
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				reply("250-localhost")
				reply("250 8BITMIME")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				reply("250 OK")
			case cmd == "DATA":
				reply("354 go ahead")
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					data.WriteString(l)
				}
				got <- data.String()
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				return
			default:
				reply("250 OK")
			}
		}
	}()
	return ln.Addr().String(), got
}

func TestSMTPSenderPlain(t *testing.T) {
	addr, got := fakeSMTP(t)
	host, port, _ := net.SplitHostPort(addr)
	sender := NewSMTPSender(SMTPConfig{Host: host, Port: port, User: "citas@cruiserex.es", Pass: "secret"})

	msg := Message{
		From:    mail.Address{Address: "citas@cruiserex.es"},
		To:      []string{"owner@cruiserex.es"},
		Subject: "Nueva cita",
		Text:    "hola",
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sender.Send(ctx, msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case data := <-got:
		if !strings.Contains(data, "Subject: Nueva cita") {
			t.Fatalf("unexpected data:\n%s", data)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not receive data")
	}
}

func TestSMTPSenderRequiresHost(t *testing.T) {
	err := NewSMTPSender(SMTPConfig{}).Send(context.Background(), Message{})
	if err == nil {
		t.Fatalf("expected error")
	}
}
