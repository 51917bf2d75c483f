package billing

import (
	"context"
	"errors"
	"testing"
)

type scriptedGateway struct {
	events      []string
	tokenizeErr error
	confirmErr  error
}

func (g *scriptedGateway) Tokenize(_ context.Context, _ Card) (string, error) {
	g.events = append(g.events, "tokenize")
	if g.tokenizeErr != nil {
		return "", g.tokenizeErr
	}
	return "pm_1", nil
}

func (g *scriptedGateway) Confirm(_ context.Context, clientSecret, paymentMethodID string) error {
	g.events = append(g.events, "confirm:"+clientSecret+":"+paymentMethodID)
	return g.confirmErr
}

func validCard() Card {
	return Card{Number: "4242424242424242", ExpMonth: 12, ExpYear: 2030, CVC: "123"}
}

func sessionDetails() Details {
	return Details{RatePerMinute: 8, DurationMinutes: 10, TotalAmount: 80, ClientSecret: "pi_1_secret_2"}
}

func TestSubmit_TokenizeThenConfirm_SuccessFiresOnce(t *testing.T) {
	g := &scriptedGateway{}
	co := NewCheckout(g, g)

	fired := 0
	err := co.Submit(context.Background(), sessionDetails(), validCard(), func() { fired++ })
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected onSuccess exactly once, got %d", fired)
	}

	want := []string{"tokenize", "confirm:pi_1_secret_2:pm_1"}
	if len(g.events) != len(want) {
		t.Fatalf("events %v, want %v", g.events, want)
	}
	for i := range want {
		if g.events[i] != want[i] {
			t.Fatalf("events %v, want %v", g.events, want)
		}
	}
}

func TestSubmit_NoConfirmAfterTokenizeFailure(t *testing.T) {
	g := &scriptedGateway{tokenizeErr: errors.New("card declined at tokenization")}
	co := NewCheckout(g, g)

	fired := 0
	err := co.Submit(context.Background(), sessionDetails(), validCard(), func() { fired++ })
	if err == nil || err.Error() != "card declined at tokenization" {
		t.Fatalf("expected tokenize error verbatim, got %v", err)
	}
	if fired != 0 {
		t.Fatalf("onSuccess fired after failure")
	}
	for _, e := range g.events {
		if e != "tokenize" {
			t.Fatalf("confirm issued after tokenize failure: %v", g.events)
		}
	}
}

func TestSubmit_ConfirmFailureDoesNotFireSuccess(t *testing.T) {
	g := &scriptedGateway{confirmErr: errors.New("insufficient funds")}
	co := NewCheckout(g, g)

	fired := 0
	err := co.Submit(context.Background(), sessionDetails(), validCard(), func() { fired++ })
	if err == nil || err.Error() != "insufficient funds" {
		t.Fatalf("expected confirm error verbatim, got %v", err)
	}
	if fired != 0 {
		t.Fatalf("onSuccess fired despite confirm failure")
	}
}

func TestSubmit_RetryAfterFailureSucceeds(t *testing.T) {
	g := &scriptedGateway{confirmErr: errors.New("try again")}
	co := NewCheckout(g, g)

	if err := co.Submit(context.Background(), sessionDetails(), validCard(), nil); err == nil {
		t.Fatalf("expected first submit to fail")
	}

	g.confirmErr = nil
	fired := 0
	if err := co.Submit(context.Background(), sessionDetails(), validCard(), func() { fired++ }); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected onSuccess once on retry, got %d", fired)
	}
}

func TestSubmit_RejectsBadInput(t *testing.T) {
	co := NewCheckout(&scriptedGateway{}, &scriptedGateway{})

	cases := []Card{
		{},
		{Number: "4242424242424242", ExpMonth: 0, ExpYear: 2030, CVC: "123"},
		{Number: "4242424242424242", ExpMonth: 13, ExpYear: 2030, CVC: "123"},
		{Number: "4242424242424242", ExpMonth: 12, ExpYear: 99, CVC: "123"},
		{Number: "4242424242424242", ExpMonth: 12, ExpYear: 2030, CVC: "1"},
	}
	for i, card := range cases {
		if err := co.Submit(context.Background(), sessionDetails(), card, nil); !errors.Is(err, ErrInvalidCard) {
			t.Fatalf("case %d: expected ErrInvalidCard, got %v", i, err)
		}
	}

	d := sessionDetails()
	d.ClientSecret = ""
	if err := co.Submit(context.Background(), d, validCard(), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty client secret, got %v", err)
	}
}

func TestIntentIDFromSecret(t *testing.T) {
	id, err := intentIDFromSecret("pi_123_secret_456")
	if err != nil {
		t.Fatalf("intentIDFromSecret: %v", err)
	}
	if id != "pi_123" {
		t.Fatalf("expected pi_123, got %q", id)
	}

	for _, bad := range []string{"", "pi_123", "_secret_456"} {
		if _, err := intentIDFromSecret(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
