package services

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/payment"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/money"
)

type CheckoutService struct {
	products repositories.ProductRepository
	provider payment.Provider
	currency string
}

func NewCheckoutService(products repositories.ProductRepository, provider payment.Provider, currency string) *CheckoutService {
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutService{products: products, provider: provider, currency: currency}
}

// Checkout is the payload of the checkout page.
type Checkout struct {
	Session payment.Session `json:"session"`
	Lines   []CartLine      `json:"products"`
	Total   string          `json:"totalSum"`
}

// Begin prices the cart and asks the provider for a hosted session. An empty
// cart is rejected before the provider is contacted.
func (s *CheckoutService) Begin(ctx context.Context, user *models.User, successURL, cancelURL string) (Checkout, error) {
	lines, total, err := resolveCart(ctx, s.products, user.Cart)
	if err != nil {
		return Checkout{}, err
	}
	if len(lines) == 0 {
		metrics.CheckoutSessions.WithLabelValues("empty_cart").Inc()
		return Checkout{}, apperr.ErrEmptyCart
	}

	req := payment.Request{
		Lines:      make([]payment.Line, 0, len(lines)),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Reference:  user.ID,
	}
	for _, l := range lines {
		req.Lines = append(req.Lines, payment.Line{
			Name:        l.Product.Title,
			Description: l.Product.Description,
			UnitAmount:  money.MinorUnits(money.MustParse(l.Product.Price)),
			Quantity:    l.Quantity,
			Currency:    s.currency,
		})
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, req)
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("provider_error").Inc()
		logger.WithCtx(ctx).Error("checkout session failed", "user_id", user.ID, "error", err)
		return Checkout{}, err
	}
	metrics.CheckoutSessions.WithLabelValues("created").Inc()

	return Checkout{Session: sess, Lines: lines, Total: money.Format(total)}, nil
}
