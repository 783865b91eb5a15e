package controllers

import (
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type CartInput struct {
	ProductID string `json:"productId" validate:"required"`
}

type CartController struct {
	carts   Carts
	catalog Catalog
	users   Users
}

func NewCartController(carts Carts, catalog Catalog, users Users) *CartController {
	return &CartController{carts: carts, catalog: catalog, users: users}
}

type cartPage struct {
	services.CartView
	Flash string `json:"flash,omitempty"`
}

// Show handles GET /cart.
func (h *CartController) Show(c *ctx.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	view, err := h.carts.View(c.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cartPage{CartView: view, Flash: flash(c, "info")})
}

// Add handles POST /cart {productId}.
func (h *CartController) Add(c *ctx.Context) {
	var in CartInput
	if !c.Bind(&in) {
		return
	}
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	product, err := h.catalog.Product(c.Context(), in.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.carts.AddToCart(c.Context(), user, product); err != nil {
		fail(c, err)
		return
	}
	h.respondCart(c, user, "Added to cart")
}

// Remove handles POST /cart-delete-item {productId}.
func (h *CartController) Remove(c *ctx.Context) {
	var in CartInput
	if !c.Bind(&in) {
		return
	}
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.carts.RemoveFromCart(c.Context(), user, in.ProductID); err != nil {
		fail(c, err)
		return
	}
	h.respondCart(c, user, "Removed from cart")
}

func (h *CartController) respondCart(c *ctx.Context, user *models.User, msg string) {
	view, err := h.carts.View(c.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(msg, view)
}
