// Package payment hands a priced cart to an external checkout provider and
// returns the provider's hosted session.
package payment

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/apperr"
)

// Line is one purchasable line. UnitAmount is in minor units (cents).
type Line struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int
	Currency    string
}

// Request describes a checkout session to create.
type Request struct {
	Lines      []Line
	SuccessURL string
	CancelURL  string
	// Reference is echoed back by the provider (client_reference_id).
	Reference string
}

// Session is the provider's hosted checkout.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Provider creates checkout sessions. Implementations never retry.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req Request) (Session, error)
}

// ProviderError is any transport or non-2xx failure from the provider.
// It matches apperr.ErrPaymentProvider under errors.Is.
type ProviderError struct {
	Status  int // 0 when the request never got a response
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("payment: provider returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("payment: %s: %v", e.Message, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == apperr.ErrPaymentProvider }
