package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cruiserex/site/services/booking-service/internal/model"
)

func validBooking() Booking {
	return Booking{
		Date:            "2030-05-10",
		Time:            "10:30",
		RequesterName:   "Ana",
		CompanyName:     "Acme",
		CompanyLocation: "Madrid",
		Phone:           "600123123",
		Email:           "ana@acme.es",
		Reason:          "Demo",
	}
}

func TestBookingValidate(t *testing.T) {
	now := time.Date(2030, 5, 10, 10, 0, 0, 0, time.Local)

	if err := validBooking().Validate(now); err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}

	past := validBooking()
	past.Time = "09:59"
	if err := past.Validate(now); !errors.Is(err, ErrPastAppointment) {
		t.Fatalf("expected past error, got %v", err)
	}

	yesterday := validBooking()
	yesterday.Date = "2030-05-09"
	if err := yesterday.Validate(now); !errors.Is(err, ErrPastAppointment) {
		t.Fatalf("expected past error for earlier date, got %v", err)
	}

	phone := validBooking()
	phone.Phone = "+34 600"
	if err := phone.Validate(now); !errors.Is(err, ErrPhoneDigits) {
		t.Fatalf("expected phone error, got %v", err)
	}

	missing := validBooking()
	missing.Reason = " "
	if err := missing.Validate(now); err == nil {
		t.Fatalf("expected missing field error")
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatDate("2030-05-10"); got != "10/05/2030" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := FormatDate(""); got != "" {
		t.Fatalf("FormatDate(empty) = %q", got)
	}
	if got := FormatTime("10:30:00"); got != "10:30" {
		t.Fatalf("FormatTime = %q", got)
	}
	if got := FormatTime("10:30"); got != "10:30" {
		t.Fatalf("FormatTime = %q", got)
	}
	if got := DigitsOnly("+34 600-123"); got != "34600123" {
		t.Fatalf("DigitsOnly = %q", got)
	}
}

func TestTokenFile(t *testing.T) {
	f := TokenFile{Path: filepath.Join(t.TempDir(), "token")}
	if tok, err := f.Load(); err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q %v", tok, err)
	}
	if err := f.Save("abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v", info.Mode().Perm())
	}
	if tok, _ := f.Load(); tok != "abc" {
		t.Fatalf("loaded %q", tok)
	}
	if err := f.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := f.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func fakeService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/session", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req["secret"] != "s3cret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(Session{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/api/appointment-admin", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode([]model.Appointment{{ID: 1, Status: model.StatusPending}})
		case http.MethodPatch:
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if r.URL.Query().Get("id") != "1" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"appointment not found"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(model.Appointment{ID: 1, Status: model.Status(body["status"])})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/api/create-appointment", func(w http.ResponseWriter, r *http.Request) {
		var b Booking
		_ = json.NewDecoder(r.Body).Decode(&b)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(BookResult{Message: "Appointment created", Appointment: model.Appointment{ID: 9, Date: b.Date}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAdminFlow(t *testing.T) {
	srv := fakeService(t)
	c := New(srv.URL+"/", nil)
	ctx := context.Background()

	if _, err := c.List(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized without token, got %v", err)
	}
	if _, err := c.Login(ctx, "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong secret, got %v", err)
	}
	if _, err := c.Login(ctx, "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	list, err := c.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %v", list, err)
	}
	appt, err := c.Confirm(ctx, 1)
	if err != nil || appt.Status != model.StatusConfirmed {
		t.Fatalf("confirm: %+v %v", appt, err)
	}
	appt, err = c.Cancel(ctx, 1)
	if err != nil || appt.Status != model.StatusCancelled {
		t.Fatalf("cancel: %+v %v", appt, err)
	}

	_, err = c.Confirm(ctx, 2)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "appointment not found" {
		t.Fatalf("expected 404 api error, got %v", err)
	}

	if err := c.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := c.List(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected token cleared after logout, got %v", err)
	}
}

func TestBook(t *testing.T) {
	srv := fakeService(t)
	c := New(srv.URL, nil)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.Local)

	res, err := c.Book(context.Background(), validBooking(), now)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if res.Appointment.ID != 9 || res.Appointment.Date != "2030-05-10" {
		t.Fatalf("unexpected result %+v", res)
	}

	bad := validBooking()
	bad.Phone = "abc"
	if _, err := c.Book(context.Background(), bad, now); !errors.Is(err, ErrPhoneDigits) {
		t.Fatalf("expected local validation to fail, got %v", err)
	}
}
