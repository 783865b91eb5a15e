// Package routes maps the storefront's HTTP surface onto its controllers.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Handlers carries every controller the routes dispatch to. A zero value is
// enough to list routes without booting any backend.
type Handlers struct {
	Shop     *controllers.ShopController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Orders   *controllers.OrderController
	Admin    *controllers.AdminController
	Auth     *controllers.AuthController
	Feed     *controllers.FeedController
	Assets   *controllers.AssetController
	Health   *controllers.HealthController
	GraphQL  http.HandlerFunc
}

// Register mounts the storefront routes on r.
func Register(r *router.Router, h Handlers) {
	r.Get("/", "shop.index", ctx.Wrap(h.Shop.Index))
	r.Get("/products", "shop.products", ctx.Wrap(h.Shop.Index))
	r.Get("/products/{productId}", "shop.product", ctx.Wrap(h.Shop.Product))
	r.Handle("/images/*", "images", ctx.Wrap(h.Assets.Image))
	r.Get("/healthz", "health", ctx.Wrap(h.Health.Check))
	r.Post("/graphql", "graphql", h.GraphQL)

	guest := r.Group("", rbac.Guest)
	guest.Post("/signup", "auth.signup", ctx.Wrap(h.Auth.Signup))
	guest.Post("/login", "auth.login", ctx.Wrap(h.Auth.Login))

	r.Post("/reset", "auth.reset", ctx.Wrap(h.Auth.Reset))
	r.Get("/reset/{token}", "auth.new_password", ctx.Wrap(h.Auth.NewPassword))
	r.Post("/reset-password", "auth.reset_password", ctx.Wrap(h.Auth.ResetPassword))

	user := r.Group("", middleware.RequireAuth)
	user.Post("/logout", "auth.logout", ctx.Wrap(h.Auth.Logout))

	user.Get("/cart", "cart.show", ctx.Wrap(h.Cart.Show))
	user.Post("/cart", "cart.add", ctx.Wrap(h.Cart.Add))
	user.Post("/cart-delete-item", "cart.remove", ctx.Wrap(h.Cart.Remove))

	user.Get("/checkout", "checkout.begin", ctx.Wrap(h.Checkout.Checkout))
	user.Get("/checkout/success", "checkout.success", ctx.Wrap(h.Checkout.Success))
	user.Get("/checkout/cancel", "checkout.cancel", ctx.Wrap(h.Checkout.Cancel))

	user.Get("/orders", "orders.index", ctx.Wrap(h.Orders.Index))
	user.Get("/orders/{orderId}", "orders.invoice", ctx.Wrap(h.Orders.Invoice))

	admin := r.Group("/admin", middleware.RequireAuth, rbac.HasRole(models.RoleAdmin))
	admin.Get("/products", "admin.products", ctx.Wrap(h.Admin.Products))
	admin.Post("/add-product", "admin.add", ctx.Wrap(h.Admin.Add))
	admin.Get("/edit-product/{productId}", "admin.edit", ctx.Wrap(h.Admin.Edit))
	admin.Post("/edit-product", "admin.update", ctx.Wrap(h.Admin.Update))
	admin.Delete("/products/{productId}", "admin.delete", ctx.Wrap(h.Admin.Delete))

	r.Get("/ws/orders", "feed.orders", ctx.Wrap(h.Feed.Orders), middleware.RequireAuth, rbac.HasRole(models.RoleAdmin))
}
