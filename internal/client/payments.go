// ABOUTME: Payment endpoints backed by the platform's Stripe integration
// ABOUTME: Creates, confirms, cancels, and inspects payment intents

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// PaymentRequest is the body of POST /stripe/create-payment-intent
type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" validate:"required,len=3"`
	Description string          `json:"description,omitempty" validate:"max=200"`
}

// PaymentIntent is returned when an intent is created
type PaymentIntent struct {
	ClientSecret    string `json:"client_secret" yaml:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id" yaml:"payment_intent_id"`
}

// PaymentStatus describes the current state of an intent.
// Amount is in the currency's minor unit, as reported by the processor.
type PaymentStatus struct {
	PaymentIntentID string `json:"payment_intent_id,omitempty" yaml:"payment_intent_id,omitempty"`
	Status          string `json:"status" yaml:"status"`
	Amount          int64  `json:"amount,omitempty" yaml:"amount,omitempty"`
	Currency        string `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// MinorUnits converts a decimal amount into the processor's minor unit (cents)
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// CreatePaymentIntent calls POST /stripe/create-payment-intent
func (c *Client) CreatePaymentIntent(ctx context.Context, req PaymentRequest) (*PaymentIntent, error) {
	if req.Currency == "" {
		req.Currency = "usd"
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, &ValidationError{Message: "amount must be greater than 0"}
	}

	var intent PaymentIntent
	if err := c.Do(ctx, http.MethodPost, "/stripe/create-payment-intent", req, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ConfirmPayment calls POST /stripe/confirm-payment
func (c *Client) ConfirmPayment(ctx context.Context, intentID string) (*PaymentStatus, error) {
	return c.paymentAction(ctx, http.MethodPost, "/stripe/confirm-payment", intentID)
}

// CancelPayment calls POST /stripe/cancel-payment
func (c *Client) CancelPayment(ctx context.Context, intentID string) (*PaymentStatus, error) {
	return c.paymentAction(ctx, http.MethodPost, "/stripe/cancel-payment", intentID)
}

// PaymentStatus calls GET /stripe/payment-status
func (c *Client) PaymentStatus(ctx context.Context, intentID string) (*PaymentStatus, error) {
	status, err := c.paymentAction(ctx, http.MethodGet, "/stripe/payment-status", intentID)
	if err != nil {
		return nil, err
	}
	if status.PaymentIntentID == "" {
		status.PaymentIntentID = intentID
	}
	return status, nil
}

func (c *Client) paymentAction(ctx context.Context, method, path, intentID string) (*PaymentStatus, error) {
	if intentID == "" {
		return nil, &ValidationError{Message: "paymentIntentId is required"}
	}
	q := url.Values{"paymentIntentId": {intentID}}

	var status PaymentStatus
	if err := c.Do(ctx, method, path+"?"+q.Encode(), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
