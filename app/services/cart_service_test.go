package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
)

var (
	productA = models.Product{ID: "A", Title: "Alpha", Price: "10.00", Description: "first product", UserID: "admin"}
	productB = models.Product{ID: "B", Title: "Beta", Price: "5.50", Description: "second product", UserID: "admin"}
)

func shopper(items ...models.CartItem) models.User {
	return models.User{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: models.RoleUser, Cart: models.Cart{Items: items}}
}

func TestAddToCartTwiceIncrements(t *testing.T) {
	u := shopper()
	users := newFakeUsers(u)
	svc := NewCartService(newFakeProducts(productA), users)
	ctx := context.Background()

	require.NoError(t, svc.AddToCart(ctx, &u, productA))
	require.NoError(t, svc.AddToCart(ctx, &u, productA))

	want := []models.CartItem{{ProductID: "A", Quantity: 2}}
	assert.Equal(t, want, u.Cart.Items)
	assert.Equal(t, want, users.stored("u1").Cart.Items)
}

func TestAddToCartKeepsCartOnWriteFailure(t *testing.T) {
	u := shopper(models.CartItem{ProductID: "A", Quantity: 1})
	users := newFakeUsers(u)
	users.saveErr = errBoom
	svc := NewCartService(newFakeProducts(productA), users)

	err := svc.AddToCart(context.Background(), &u, productA)

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, u.Cart.Items[0].Quantity)
}

func TestRemoveAbsentProductIsNoop(t *testing.T) {
	u := shopper(models.CartItem{ProductID: "A", Quantity: 1})
	users := newFakeUsers(u)
	svc := NewCartService(newFakeProducts(productA), users)

	require.NoError(t, svc.RemoveFromCart(context.Background(), &u, "missing"))

	assert.Len(t, u.Cart.Items, 1)
	assert.Zero(t, users.saves)
}

func TestRemoveFromCart(t *testing.T) {
	u := shopper(models.CartItem{ProductID: "A", Quantity: 3}, models.CartItem{ProductID: "B", Quantity: 1})
	users := newFakeUsers(u)
	svc := NewCartService(newFakeProducts(productA, productB), users)

	require.NoError(t, svc.RemoveFromCart(context.Background(), &u, "A"))

	assert.Equal(t, []models.CartItem{{ProductID: "B", Quantity: 1}}, users.stored("u1").Cart.Items)
}

func TestClearCart(t *testing.T) {
	u := shopper(models.CartItem{ProductID: "A", Quantity: 3})
	users := newFakeUsers(u)
	svc := NewCartService(newFakeProducts(productA), users)

	require.NoError(t, svc.ClearCart(context.Background(), &u))

	assert.True(t, u.Cart.IsEmpty())
	assert.True(t, users.stored("u1").Cart.IsEmpty())
}

func TestViewResolvesLinesAndSkipsDeleted(t *testing.T) {
	u := shopper(
		models.CartItem{ProductID: "A", Quantity: 2},
		models.CartItem{ProductID: "gone", Quantity: 1},
		models.CartItem{ProductID: "B", Quantity: 1},
	)
	svc := NewCartService(newFakeProducts(productA, productB), newFakeUsers(u))

	view, err := svc.View(context.Background(), &u)
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Equal(t, "A", view.Lines[0].Product.ID)
	assert.Equal(t, "20.00", view.Lines[0].LineTotal)
	assert.Equal(t, "B", view.Lines[1].Product.ID)
	assert.Equal(t, "25.50", view.Total)
	assert.Equal(t, 3, view.Count)
}

func TestViewEmptyCart(t *testing.T) {
	u := shopper()
	svc := NewCartService(newFakeProducts(), newFakeUsers(u))

	view, err := svc.View(context.Background(), &u)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Equal(t, "0.00", view.Total)
}
