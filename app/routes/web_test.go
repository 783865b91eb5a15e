package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

func TestRegisterNamesEveryRoute(t *testing.T) {
	r := router.New()
	routes.Register(r, routes.Handlers{})

	named := map[string]string{}
	for _, ri := range r.Routes() {
		named[ri.Name] = ri.Method + " " + ri.Path
	}

	want := map[string]string{
		"shop.index":          "GET /",
		"shop.products":       "GET /products",
		"shop.product":        "GET /products/{productId}",
		"cart.add":            "POST /cart",
		"cart.remove":         "POST /cart-delete-item",
		"checkout.success":    "GET /checkout/success",
		"orders.invoice":      "GET /orders/{orderId}",
		"auth.new_password":   "GET /reset/{token}",
		"auth.reset_password": "POST /reset-password",
		"admin.add":           "POST /admin/add-product",
		"admin.edit":          "GET /admin/edit-product/{productId}",
		"admin.delete":        "DELETE /admin/products/{productId}",
		"feed.orders":         "GET /ws/orders",
		"graphql":             "POST /graphql",
		"images":              "* /images/*",
	}
	for name, route := range want {
		assert.Equal(t, route, named[name], name)
	}
}

func TestGuardsRejectBeforeHandlers(t *testing.T) {
	r := router.New()
	routes.Register(r, routes.Handlers{})
	h := r.Handler()

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		status int
	}{
		{"anonymous cart", http.MethodGet, "/cart", "", http.StatusUnauthorized},
		{"anonymous orders", http.MethodGet, "/orders", "", http.StatusUnauthorized},
		{"anonymous admin", http.MethodGet, "/admin/products", "", http.StatusUnauthorized},
		{"customer admin", http.MethodGet, "/admin/products", "user", http.StatusForbidden},
		{"customer feed", http.MethodGet, "/ws/orders", "user", http.StatusForbidden},
		{"logged in login", http.MethodPost, "/login", "user", http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.role != "" {
				req = req.WithContext(middleware.WithIdentity(req.Context(), "u1", tc.role))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
