package payment_test

import (
	"context"
	"errors"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/payment"
	"github.com/shashiranjanraj/storefront/pkg/http"
)

func request() payment.Request {
	return payment.Request{
		Lines: []payment.Line{
			{Name: "Book", UnitAmount: 1000, Quantity: 2, Currency: "usd"},
			{Name: "Pen", Description: "blue", UnitAmount: 550, Quantity: 1, Currency: "usd"},
		},
		SuccessURL: "http://shop.test/checkout/success",
		CancelURL:  "http://shop.test/checkout/cancel",
		Reference:  "u-1",
	}
}

func TestStripe_CreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		key, _, _ := r.BasicAuth()
		assert.Equal(t, "sk_test_123", key)
		require.NoError(t, r.ParseForm())

		f := r.PostForm
		assert.Equal(t, "payment", f.Get("mode"))
		assert.Equal(t, "card", f.Get("payment_method_types[]"))
		assert.Equal(t, "u-1", f.Get("client_reference_id"))
		assert.Equal(t, "2", f.Get("line_items[0][quantity]"))
		assert.Equal(t, "1000", f.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "Book", f.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "550", f.Get("line_items[1][price_data][unit_amount]"))
		assert.Equal(t, "blue", f.Get("line_items[1][price_data][product_data][description]"))
		assert.Equal(t, "http://shop.test/checkout/success", f.Get("success_url"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	s := payment.NewStripe(http.New(srv.Client())).WithEndpoint(srv.URL, "sk_test_123")
	sess, err := s.CreateCheckoutSession(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", sess.URL)
}

func TestStripe_ErrorStatusIsProviderError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		hits.Add(1)
		w.WriteHeader(gohttp.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid currency","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	s := payment.NewStripe(http.New(srv.Client())).WithEndpoint(srv.URL, "sk_test_123")
	_, err := s.CreateCheckoutSession(context.Background(), request())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrPaymentProvider))
	var pe *payment.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, gohttp.StatusBadRequest, pe.Status)
	assert.Equal(t, "Invalid currency", pe.Message)
	assert.Equal(t, int32(1), hits.Load(), "no retries")
}

func TestStripe_TransportErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(gohttp.ResponseWriter, *gohttp.Request) {}))
	base := srv.URL
	srv.Close()

	s := payment.NewStripe(http.New(nil)).WithEndpoint(base, "sk_test_123")
	_, err := s.CreateCheckoutSession(context.Background(), request())
	assert.ErrorIs(t, err, apperr.ErrPaymentProvider)
}

func TestStripe_Unconfigured(t *testing.T) {
	s := payment.NewStripe(http.New(nil)).WithEndpoint("http://unused", "")
	_, err := s.CreateCheckoutSession(context.Background(), request())
	assert.ErrorIs(t, err, apperr.ErrPaymentProvider)
}
