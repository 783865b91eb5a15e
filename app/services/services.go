// Package services holds the shop's business operations. Each service gets
// its repositories and collaborators injected; none reads globals.
package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/money"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

// EventOrderPlaced fires after an order is stored and the cart cleared.
const EventOrderPlaced = "order.placed"

// OrderPlaced is the EventOrderPlaced payload.
type OrderPlaced struct {
	Order models.Order
	Email string
}

// Events is the subset of the event bus the services fire on.
type Events interface {
	FireAsync(ctx context.Context, event string, payload interface{})
}

// Dispatcher pushes background jobs.
type Dispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

// CartLine is a cart entry resolved against the catalogue.
type CartLine struct {
	Product   models.Product `json:"product"`
	Quantity  int            `json:"quantity"`
	LineTotal string         `json:"lineTotal"`
}

// resolveCart looks up every product in cart, in cart order. Lines whose
// product no longer exists are dropped.
func resolveCart(ctx context.Context, products repositories.ProductRepository, cart models.Cart) ([]CartLine, decimal.Decimal, error) {
	if cart.IsEmpty() {
		return []CartLine{}, decimal.Zero, nil
	}

	found, err := products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, decimal.Zero, err
	}
	byID := make(map[string]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	lines := make([]CartLine, 0, len(cart.Items))
	total := decimal.Zero
	for _, item := range cart.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		line := money.Line(money.MustParse(p.Price), item.Quantity)
		total = total.Add(line)
		lines = append(lines, CartLine{Product: p, Quantity: item.Quantity, LineTotal: money.Format(line)})
	}
	return lines, total, nil
}
