package controllers

import (
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// CheckoutController hands the cart to the payment provider and turns a
// completed payment into an order.
type CheckoutController struct {
	checkouts Checkouts
	orders    Orders
	users     Users
	appURL    string
}

func NewCheckoutController(checkouts Checkouts, orders Orders, users Users, appURL string) *CheckoutController {
	return &CheckoutController{checkouts: checkouts, orders: orders, users: users, appURL: strings.TrimRight(appURL, "/")}
}

// Checkout handles GET /checkout.
func (h *CheckoutController) Checkout(c *ctx.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	co, err := h.checkouts.Begin(c.Context(), user, h.appURL+"/checkout/success", h.appURL+"/checkout/cancel")
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(co)
}

// Success handles GET /checkout/success, the provider's return URL. The
// provider session is not verified; the order is placed from the current cart.
func (h *CheckoutController) Success(c *ctx.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	order, err := h.orders.PlaceOrder(c.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(order)
}

// Cancel handles GET /checkout/cancel. The cart is left as it was.
func (h *CheckoutController) Cancel(c *ctx.Context) {
	setFlash(c, "info", "Checkout cancelled. Your cart is unchanged.")
	c.Message("Checkout cancelled", nil)
}
