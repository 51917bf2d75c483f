package billing

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
)

// Card is the raw card input collected by the payment form. It is handed to
// the tokenizer and never stored or logged.
type Card struct {
	Number   string
	ExpMonth int64
	ExpYear  int64
	CVC      string
}

// Tokenizer exchanges raw card details for an opaque payment method id.
type Tokenizer interface {
	Tokenize(ctx context.Context, card Card) (paymentMethodID string, err error)
}

// Confirmer confirms a payment against a billing session's client secret.
type Confirmer interface {
	Confirm(ctx context.Context, clientSecret, paymentMethodID string) error
}

var (
	ErrCheckoutInFlight = errors.New("checkout already in flight")
	ErrInvalidCard      = errors.New("invalid card details")
)

// Checkout drives payment confirmation for a billing session: tokenize the
// card, then confirm with the session's client secret, strictly in that
// order. Confirm is never attempted if tokenization fails, and the call never
// proceeds before confirmation resolves.
type Checkout struct {
	tokenizer Tokenizer
	confirmer Confirmer
	busy      atomic.Bool
}

func NewCheckout(tokenizer Tokenizer, confirmer Confirmer) *Checkout {
	return &Checkout{tokenizer: tokenizer, confirmer: confirmer}
}

// Busy reports whether a submit is in flight. Callers disable the form while
// true.
func (c *Checkout) Busy() bool { return c.busy.Load() }

// Submit runs the tokenize-then-confirm sequence for one billing session.
// onSuccess fires exactly once, and only after confirmation succeeds.
// Provider errors are returned verbatim so the form can surface them; the
// user may retry by submitting again.
func (c *Checkout) Submit(ctx context.Context, d Details, card Card, onSuccess func()) error {
	if err := validateCard(card); err != nil {
		return err
	}
	if strings.TrimSpace(d.ClientSecret) == "" {
		return ErrInvalidArgument
	}

	if !c.busy.CompareAndSwap(false, true) {
		return ErrCheckoutInFlight
	}
	defer c.busy.Store(false)

	paymentMethodID, err := c.tokenizer.Tokenize(ctx, card)
	if err != nil {
		return err
	}

	if err := c.confirmer.Confirm(ctx, d.ClientSecret, paymentMethodID); err != nil {
		return err
	}

	if onSuccess != nil {
		onSuccess()
	}
	return nil
}

func validateCard(card Card) error {
	if strings.TrimSpace(card.Number) == "" {
		return ErrInvalidCard
	}
	if card.ExpMonth < 1 || card.ExpMonth > 12 {
		return ErrInvalidCard
	}
	if card.ExpYear < 2000 {
		return ErrInvalidCard
	}
	if len(strings.TrimSpace(card.CVC)) < 3 {
		return ErrInvalidCard
	}
	return nil
}
