package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"creator-platform/internal/callrequest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, &AuthSession{AccessToken: "tok-1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestListRequests_SendsBearerAndFilter(t *testing.T) {
	var gotAuth, gotStatus string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotStatus = r.URL.Query().Get("status")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"requests": []callrequest.CallRequest{{ID: "req-1", Status: callrequest.StatusPending}},
		})
	})

	items, err := c.ListRequests(context.Background(), callrequest.FilterPending)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotStatus != "pending" {
		t.Fatalf("status query = %q", gotStatus)
	}
	if len(items) != 1 || items[0].ID != "req-1" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestAccept_PostsScheduleAndDecodesSession(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"session": map[string]any{"id": "sess-1", "request_id": "req-1"},
		})
	})

	sess, err := c.Accept(context.Background(), "req-1", "2026-03-20", "18:30")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if gotPath != "/sessions/requests/req-1/accept" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["scheduled_date"] != "2026-03-20" || gotBody["scheduled_time"] != "18:30" {
		t.Fatalf("body = %v", gotBody)
	}
	if sess.ID != "sess-1" {
		t.Fatalf("session = %+v", sess)
	}
}

func TestDecline_RequiresReason(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected")
	})
	if err := c.Decline(context.Background(), "req-1", ""); err == nil {
		t.Fatalf("expected error for empty reason")
	}
}

func TestBilling_DecodesWireShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/session/sess-1/billing" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"billing":{"ratePerMinute":8,"durationMinutes":10,"totalAmount":80,"clientSecret":"pi_1_secret_2"}}`))
	})

	d, err := c.Billing(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Billing: %v", err)
	}
	if d.RatePerMinute != 8 || d.DurationMinutes != 10 || d.TotalAmount != 80 || d.ClientSecret != "pi_1_secret_2" {
		t.Fatalf("unexpected details: %+v", d)
	}
}

func TestDo_ParsesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"request status changed concurrently"}`))
	})

	_, err := c.Accept(context.Background(), "req-1", "", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "request status changed concurrently" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestAuthSession_TokenRequired(t *testing.T) {
	var s *AuthSession
	if _, err := s.Token(context.Background()); err == nil {
		t.Fatalf("expected error for nil session")
	}
	if _, err := (&AuthSession{}).Token(context.Background()); err == nil {
		t.Fatalf("expected error for empty token")
	}

	// The boot hint is display-only; it must never substitute for a token.
	hinted := &AuthSession{Hint: BootHint{Known: true, UserEmail: "fan@example.com"}}
	if _, err := hinted.Token(context.Background()); err == nil {
		t.Fatalf("boot hint must not stand in for a credential")
	}
}
