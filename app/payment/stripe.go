package payment

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Stripe creates Checkout Sessions through the Stripe REST API.
type Stripe struct {
	client  *http.Client
	apiKey  string
	baseURL string
	timeout time.Duration
}

// NewStripe builds the client from STRIPE_API_KEY / STRIPE_API_BASE.
func NewStripe(client *http.Client) *Stripe {
	return &Stripe{
		client:  client,
		apiKey:  config.StripeAPIKey(),
		baseURL: config.StripeAPIBase(),
		timeout: 15 * time.Second,
	}
}

// WithEndpoint points the client at another API base and key (tests, mocks).
func (s *Stripe) WithEndpoint(baseURL, apiKey string) *Stripe {
	s.baseURL, s.apiKey = baseURL, apiKey
	return s
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req Request) (Session, error) {
	if s.apiKey == "" {
		return Session{}, &ProviderError{Message: "stripe is not configured", Err: errors.New("STRIPE_API_KEY is empty")}
	}

	resp, err := s.client.Post(s.baseURL+"/v1/checkout/sessions").
		WithContext(ctx).
		Timeout(s.timeout).
		BasicAuth(s.apiKey, "").
		Form(sessionForm(req)).
		Send()
	if err != nil {
		return Session{}, &ProviderError{Message: "create checkout session", Err: err}
	}

	if !resp.OK() {
		var se stripeError
		msg := resp.Text()
		if resp.JSON(&se) == nil && se.Error.Message != "" {
			msg = se.Error.Message
		}
		logger.WithCtx(ctx).Warn("payment: stripe rejected session", "status", resp.StatusCode, "type", se.Error.Type)
		return Session{}, &ProviderError{Status: resp.StatusCode, Message: msg}
	}

	var out Session
	if err := resp.JSON(&out); err != nil || out.ID == "" {
		if err == nil {
			err = errors.New("missing session id")
		}
		return Session{}, &ProviderError{Message: "decode checkout session", Err: err}
	}
	return out, nil
}

func sessionForm(req Request) url.Values {
	v := url.Values{}
	v.Set("mode", "payment")
	v.Add("payment_method_types[]", "card")
	v.Set("success_url", req.SuccessURL)
	v.Set("cancel_url", req.CancelURL)
	if req.Reference != "" {
		v.Set("client_reference_id", req.Reference)
	}

	for i, line := range req.Lines {
		p := "line_items[" + strconv.Itoa(i) + "]"
		v.Set(p+"[quantity]", strconv.Itoa(line.Quantity))
		v.Set(p+"[price_data][currency]", line.Currency)
		v.Set(p+"[price_data][unit_amount]", strconv.FormatInt(line.UnitAmount, 10))
		v.Set(p+"[price_data][product_data][name]", line.Name)
		if line.Description != "" {
			v.Set(p+"[price_data][product_data][description]", line.Description)
		}
	}
	return v
}
