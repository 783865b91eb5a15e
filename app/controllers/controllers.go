// Package controllers adapts HTTP requests to the services. Handlers bind and
// validate input, call one service operation and render the JSON envelope.
package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type Catalog interface {
	Page(ctx context.Context, page int) (services.ProductPage, error)
	AdminPage(ctx context.Context, userID string, page int) (services.ProductPage, error)
	Product(ctx context.Context, id string) (models.Product, error)
}

type Carts interface {
	AddToCart(ctx context.Context, user *models.User, product models.Product) error
	RemoveFromCart(ctx context.Context, user *models.User, productID string) error
	View(ctx context.Context, user *models.User) (services.CartView, error)
}

type Orders interface {
	PlaceOrder(ctx context.Context, user *models.User) (models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	FindOrder(ctx context.Context, id string) (models.Order, error)
}

type Checkouts interface {
	Begin(ctx context.Context, user *models.User, successURL, cancelURL string) (services.Checkout, error)
}

type Invoices interface {
	Generate(ctx context.Context, order models.Order, requesterID string, w io.Writer) error
}

type Products interface {
	Create(ctx context.Context, userID string, in services.ProductInput, img *services.Upload) (models.Product, error)
	ForEdit(ctx context.Context, userID, id string) (models.Product, error)
	Update(ctx context.Context, userID, id string, in services.ProductInput, img *services.Upload) (models.Product, error)
	Delete(ctx context.Context, userID, id string) error
}

type Accounts interface {
	Signup(ctx context.Context, in services.SignupInput) (models.User, error)
	Login(ctx context.Context, in services.LoginInput) (models.User, string, error)
	RequestReset(ctx context.Context, email string) error
	CheckResetToken(ctx context.Context, token string) (string, error)
	ResetPassword(ctx context.Context, in services.ResetPasswordInput) error
	User(ctx context.Context, id string) (models.User, error)
}

// Users loads the account behind the authenticated request.
type Users interface {
	User(ctx context.Context, id string) (models.User, error)
}

// fail maps a service error onto a status code. Unexpected errors are logged
// with the request id and answered with a generic message.
func fail(c *ctx.Context, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Fields)
	case errors.Is(err, apperr.ErrNotFound):
		c.NotFound()
	case errors.Is(err, apperr.ErrForbidden):
		c.Forbidden()
	case errors.Is(err, apperr.ErrEmptyCart):
		c.Error(http.StatusConflict, "Your cart is empty")
	case errors.Is(err, apperr.ErrConflict):
		c.Error(http.StatusConflict, "Already exists")
	case errors.Is(err, apperr.ErrInvalidCredentials):
		c.Unauthorized("Invalid email or password.")
	case errors.Is(err, apperr.ErrTokenExpired):
		c.Error(http.StatusGone, "Reset link is invalid or has expired.")
	case errors.Is(err, apperr.ErrPaymentProvider):
		c.Logger().Error("payment provider failed", "error", err)
		c.Error(http.StatusBadGateway, "Payment provider unavailable")
	default:
		c.Logger().Error("request failed", "error", err)
		c.Error(http.StatusInternalServerError, response.MsgInternal)
	}
}

// currentUser loads the authenticated account. A token for a deleted account
// is treated as anonymous.
func currentUser(c *ctx.Context, users Users) (*models.User, bool) {
	id := c.UserID()
	if id == "" {
		c.Unauthorized()
		return nil, false
	}
	u, err := users.User(c.Context(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		c.Unauthorized()
		return nil, false
	}
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return &u, true
}

// flash pops a one-shot message from the session, if there is one.
func flash(c *ctx.Context, key string) string {
	sess := c.Session()
	if sess == nil {
		return ""
	}
	v, ok := sess.GetFlash(key)
	if !ok {
		return ""
	}
	if err := sess.Save(c.Context(), c.W); err != nil {
		c.Logger().Warn("session save failed", "error", err)
	}
	s, _ := v.(string)
	return s
}

func setFlash(c *ctx.Context, key, msg string) {
	sess := c.Session()
	if sess == nil {
		return
	}
	sess.Flash(key, msg)
	if err := sess.Save(c.Context(), c.W); err != nil {
		c.Logger().Warn("session save failed", "error", err)
	}
}
