// Package client talks to the booking service over HTTP. It backs the admin
// CLI and anything else that books or manages appointments remotely.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cruiserex/site/services/booking-service/internal/model"
)

var ErrUnauthorized = errors.New("unauthorized: check the admin secret or log in again")

// APIError carries the {"error": ...} message of a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("booking service returned %d", e.Status)
	}
	return fmt.Sprintf("booking service returned %d: %s", e.Status, e.Message)
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BookResult is the public intake response. Warning is set when the
// appointment was saved but the notification email failed.
type BookResult struct {
	Message     string            `json:"message"`
	Appointment model.Appointment `json:"appointment"`
	Warning     string            `json:"warning,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetToken sets the bearer credential for admin calls: a session token or the raw secret.
func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

func (c *Client) Login(ctx context.Context, secret string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/admin/session", nil, map[string]string{"secret": secret}, false, &s)
	if err != nil {
		return Session{}, err
	}
	c.token = s.Token
	return s, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodDelete, "/api/admin/session", nil, nil, true, nil)
	c.token = ""
	return err
}

func (c *Client) List(ctx context.Context) ([]model.Appointment, error) {
	var list []model.Appointment
	if err := c.do(ctx, http.MethodGet, "/api/appointment-admin", nil, nil, true, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) SetStatus(ctx context.Context, id int64, status model.Status) (model.Appointment, error) {
	var appt model.Appointment
	err := c.do(ctx, http.MethodPatch, "/api/appointment-admin", idQuery(id), map[string]string{"status": string(status)}, true, &appt)
	return appt, err
}

func (c *Client) Confirm(ctx context.Context, id int64) (model.Appointment, error) {
	return c.SetStatus(ctx, id, model.StatusConfirmed)
}

func (c *Client) Cancel(ctx context.Context, id int64) (model.Appointment, error) {
	return c.SetStatus(ctx, id, model.StatusCancelled)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/appointment-admin", idQuery(id), nil, true, nil)
}

// Book submits to the public intake endpoint after checking the booking locally.
func (c *Client) Book(ctx context.Context, b Booking, now time.Time) (BookResult, error) {
	if err := b.Validate(now); err != nil {
		return BookResult{}, err
	}
	var res BookResult
	err := c.do(ctx, http.MethodPost, "/api/create-appointment", nil, b, false, &res)
	return res, err
}

func idQuery(id int64) url.Values {
	return url.Values{"id": []string{strconv.FormatInt(id, 10)}}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, admin bool, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		if c.token == "" {
			return ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
