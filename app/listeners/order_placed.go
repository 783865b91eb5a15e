// Package listeners reacts to domain events fired by the services.
package listeners

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/money"
)

// Feed receives live order notifications (the admin websocket hub).
type Feed interface {
	BroadcastJSON(v any) error
}

// OrderFeedItem is what admins see on the live order feed.
type OrderFeedItem struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"orderId"`
	Customer  string    `json:"customer"`
	Items     int       `json:"items"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// Register wires every listener onto bus. feed and q may be nil.
func Register(bus *event.Bus, feed Feed, q services.Dispatcher) {
	bus.Listen(services.EventOrderPlaced, OrderPlaced(feed, q))
}

// OrderPlaced broadcasts the order to the feed and queues the confirmation
// mail. Both are best effort.
func OrderPlaced(feed Feed, q services.Dispatcher) event.Handler {
	return func(ctx context.Context, payload interface{}) {
		e, ok := payload.(services.OrderPlaced)
		if !ok {
			return
		}
		log := logger.WithCtx(ctx).With("order_id", e.Order.ID)
		total := money.Format(e.Order.Total())

		if feed != nil {
			items := 0
			for _, l := range e.Order.Products {
				items += l.Quantity
			}
			err := feed.BroadcastJSON(OrderFeedItem{
				Type:      services.EventOrderPlaced,
				OrderID:   e.Order.ID,
				Customer:  e.Order.User.Name,
				Items:     items,
				Total:     total,
				CreatedAt: e.Order.CreatedAt,
			})
			if err != nil {
				log.Warn("order feed broadcast failed", "error", err)
			}
		}

		if q == nil || e.Email == "" {
			return
		}
		lines := make([]jobs.OrderLine, 0, len(e.Order.Products))
		for _, l := range e.Order.Products {
			lines = append(lines, jobs.OrderLine{Title: l.Product.Title, Quantity: l.Quantity})
		}
		job, err := jobs.OrderConfirmation(e.Email, e.Order.ID, lines, total)
		if err == nil {
			err = q.Dispatch(ctx, job)
		}
		if err != nil {
			log.Warn("order confirmation not queued", "error", err)
			return
		}
		log.Debug("order confirmation queued")
	}
}
