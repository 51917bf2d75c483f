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
	"time"

	"creator-platform/internal/billing"
	"creator-platform/internal/callrequest"
	"creator-platform/internal/session"
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// BootHint is a non-authoritative marker kept around purely for faster boot
// display (was a pair of browser-local flags). It must never be consulted
// for authorization decisions; the bearer token is the only credential.
type BootHint struct {
	Known     bool   `json:"known"`
	UserEmail string `json:"user_email,omitempty"`
}

// AuthSession is the explicit identity object handed to the client instead
// of ambient globals.
type AuthSession struct {
	AccessToken string
	Hint        BootHint
}

func (s *AuthSession) Token(ctx context.Context) (string, error) {
	if s == nil || s.AccessToken == "" {
		return "", errors.New("no access token")
	}
	return s.AccessToken, nil
}

// APIError is a non-2xx backend response. It is recoverable: callers surface
// it (toast) and keep their last-known-good state.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Client consumes the call-request REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, tokens TokenSource) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}, nil
}

// ListRequests fetches requests filtered by pending|accepted|all.
func (c *Client) ListRequests(ctx context.Context, filter callrequest.ListFilter) ([]callrequest.CallRequest, error) {
	if filter == "" {
		filter = callrequest.FilterAll
	}
	if !callrequest.ValidFilter(filter) {
		return nil, fmt.Errorf("invalid filter %q", filter)
	}
	var out struct {
		Requests []callrequest.CallRequest `json:"requests"`
	}
	q := url.Values{"status": {string(filter)}}
	if err := c.do(ctx, http.MethodGet, "/sessions/requests?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

type acceptBody struct {
	ScheduledDate string `json:"scheduled_date,omitempty"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
}

// Accept marks a request accepted and returns the created session.
func (c *Client) Accept(ctx context.Context, requestID, scheduledDate, scheduledTime string) (session.Session, error) {
	if requestID == "" {
		return session.Session{}, errors.New("request id is required")
	}
	var out struct {
		Session session.Session `json:"session"`
	}
	path := "/sessions/requests/" + url.PathEscape(requestID) + "/accept"
	if err := c.do(ctx, http.MethodPost, path, acceptBody{ScheduledDate: scheduledDate, ScheduledTime: scheduledTime}, &out); err != nil {
		return session.Session{}, err
	}
	return out.Session, nil
}

type reasonBody struct {
	Reason string `json:"reason"`
}

// Decline marks a request declined with a reason.
func (c *Client) Decline(ctx context.Context, requestID, reason string) error {
	if requestID == "" {
		return errors.New("request id is required")
	}
	if reason == "" {
		return errors.New("reason is required")
	}
	path := "/sessions/requests/" + url.PathEscape(requestID) + "/decline"
	return c.do(ctx, http.MethodPost, path, reasonBody{Reason: reason}, nil)
}

// Cancel cancels an accepted request with a reason.
func (c *Client) Cancel(ctx context.Context, requestID, reason string) error {
	if requestID == "" {
		return errors.New("request id is required")
	}
	if reason == "" {
		return errors.New("reason is required")
	}
	path := "/sessions/requests/" + url.PathEscape(requestID) + "/cancel"
	return c.do(ctx, http.MethodPost, path, reasonBody{Reason: reason}, nil)
}

// Billing fetches the billing session for an accepted call session.
func (c *Client) Billing(ctx context.Context, sessionID string) (billing.Details, error) {
	if sessionID == "" {
		return billing.Details{}, errors.New("session id is required")
	}
	var out struct {
		Billing billing.Details `json:"billing"`
	}
	path := "/users/session/" + url.PathEscape(sessionID) + "/billing"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return billing.Details{}, err
	}
	return out.Billing, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(raw, &apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// NotifierActions adapts the client to the ring notifier's action contract.
type NotifierActions struct {
	Client *Client
}

func (a NotifierActions) Accept(ctx context.Context, requestID string) error {
	_, err := a.Client.Accept(ctx, requestID, "", "")
	return err
}

func (a NotifierActions) Decline(ctx context.Context, requestID, reason string) error {
	return a.Client.Decline(ctx, requestID, reason)
}
