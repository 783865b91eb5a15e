package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/money"
)

type OrderService struct {
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	events   Events
	now      func() time.Time
}

// NewOrderService wires the order flow. events may be nil.
func NewOrderService(products repositories.ProductRepository, orders repositories.OrderRepository, events Events) *OrderService {
	return &OrderService{products: products, orders: orders, events: events, now: time.Now}
}

// PlaceOrder snapshots the user's cart into a new order and empties the cart
// in the same transaction. Products deleted since they were added are left
// out; if none remain the call fails with apperr.ErrEmptyCart.
func (s *OrderService) PlaceOrder(ctx context.Context, user *models.User) (models.Order, error) {
	lines, total, err := resolveCart(ctx, s.products, user.Cart)
	if err != nil {
		return models.Order{}, err
	}
	if len(lines) == 0 {
		return models.Order{}, apperr.ErrEmptyCart
	}

	order := models.Order{
		Products:  make([]models.OrderLine, 0, len(lines)),
		User:      models.OrderUser{Name: user.DisplayName(), UserID: user.ID},
		CreatedAt: s.now().UTC(),
	}
	for _, l := range lines {
		order.Products = append(order.Products, models.OrderLine{Product: l.Product.Snapshot(), Quantity: l.Quantity})
	}

	if err := s.orders.CreateAndClearCart(ctx, &order); err != nil {
		return models.Order{}, err
	}
	user.Cart.Clear()

	metrics.OrdersPlaced.Inc()
	metrics.OrderValue.Observe(float64(money.MinorUnits(total)))
	logger.WithCtx(ctx).Info("order placed", "order_id", order.ID, "user_id", user.ID, "total", money.Format(total))

	if s.events != nil {
		s.events.FireAsync(ctx, EventOrderPlaced, OrderPlaced{Order: order, Email: user.Email})
	}
	return order, nil
}

// ListOrders returns userID's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) FindOrder(ctx context.Context, id string) (models.Order, error) {
	return s.orders.FindByID(ctx, id)
}
