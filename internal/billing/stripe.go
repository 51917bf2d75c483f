package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/paymentmethod"
)

// ConfigureStripe sets the account key for all stripe-go calls in this
// process.
func ConfigureStripe(secretKey string) {
	stripe.Key = strings.TrimSpace(secretKey)
}

// StripeProvider creates payment intents for billing sessions.
type StripeProvider struct{}

func NewStripeProvider() *StripeProvider { return &StripeProvider{} }

func (p *StripeProvider) CreateIntent(ctx context.Context, amountMinor int64, currency, sessionID string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountMinor),
		Currency:    stripe.String(currency),
		Description: stripe.String("creator call session"),
		Metadata:    map[string]string{"session_id": sessionID},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", "", err
	}
	return intent.ID, intent.ClientSecret, nil
}

// StripeTokenizer exchanges card details for a Stripe payment method.
type StripeTokenizer struct{}

func NewStripeTokenizer() *StripeTokenizer { return &StripeTokenizer{} }

func (t *StripeTokenizer) Tokenize(ctx context.Context, card Card) (string, error) {
	params := &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(card.ExpMonth),
			ExpYear:  stripe.Int64(card.ExpYear),
			CVC:      stripe.String(card.CVC),
		},
	}
	params.Context = ctx

	pm, err := paymentmethod.New(params)
	if err != nil {
		return "", err
	}
	return pm.ID, nil
}

// StripeConfirmer confirms a payment intent identified by its client secret.
type StripeConfirmer struct{}

func NewStripeConfirmer() *StripeConfirmer { return &StripeConfirmer{} }

func (c *StripeConfirmer) Confirm(ctx context.Context, clientSecret, paymentMethodID string) error {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return err
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	params.Context = ctx

	intent, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return err
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded &&
		intent.Status != stripe.PaymentIntentStatusProcessing {
		return fmt.Errorf("payment not confirmed: intent status %s", intent.Status)
	}
	return nil
}

// intentIDFromSecret extracts the intent id from a client secret of the form
// "pi_123_secret_456".
func intentIDFromSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || id == "" {
		return "", errors.New("malformed client secret")
	}
	return id, nil
}
