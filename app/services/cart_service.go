package services

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/money"
)

type CartService struct {
	products repositories.ProductRepository
	users    repositories.UserRepository
}

func NewCartService(products repositories.ProductRepository, users repositories.UserRepository) *CartService {
	return &CartService{products: products, users: users}
}

// CartView is the cart page payload.
type CartView struct {
	Lines []CartLine `json:"products"`
	Total string     `json:"totalSum"`
	Count int        `json:"count"`
}

// AddToCart bumps product's quantity or appends a new line, then persists
// the whole cart. user.Cart only changes when the write succeeds.
func (s *CartService) AddToCart(ctx context.Context, user *models.User, product models.Product) error {
	cart := copyCart(user.Cart)
	cart.Add(product.ID)
	if err := s.users.SaveCart(ctx, user.ID, cart); err != nil {
		return err
	}
	user.Cart = cart
	metrics.CartMutations.WithLabelValues("add").Inc()
	return nil
}

// RemoveFromCart drops productID's line. An id that is not in the cart is a
// no-op and nothing is written.
func (s *CartService) RemoveFromCart(ctx context.Context, user *models.User, productID string) error {
	cart := copyCart(user.Cart)
	if !cart.Remove(productID) {
		return nil
	}
	if err := s.users.SaveCart(ctx, user.ID, cart); err != nil {
		return err
	}
	user.Cart = cart
	metrics.CartMutations.WithLabelValues("remove").Inc()
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, user *models.User) error {
	var cart models.Cart
	cart.Clear()
	if err := s.users.SaveCart(ctx, user.ID, cart); err != nil {
		return err
	}
	user.Cart = cart
	metrics.CartMutations.WithLabelValues("clear").Inc()
	return nil
}

func (s *CartService) View(ctx context.Context, user *models.User) (CartView, error) {
	lines, total, err := resolveCart(ctx, s.products, user.Cart)
	if err != nil {
		return CartView{}, err
	}
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return CartView{Lines: lines, Total: money.Format(total), Count: count}, nil
}

func copyCart(c models.Cart) models.Cart {
	items := make([]models.CartItem, len(c.Items))
	copy(items, c.Items)
	return models.Cart{Items: items}
}
