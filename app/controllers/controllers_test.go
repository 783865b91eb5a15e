package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/payment"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/session"
)

var jane = models.User{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: models.RoleUser}

func TestFailMapsErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Invalid("title", "too short"), http.StatusUnprocessableEntity, response.MsgValidation},
		{fmt.Errorf("products.find: %w", apperr.ErrNotFound), http.StatusNotFound, response.MsgNotFound},
		{apperr.ErrForbidden, http.StatusForbidden, response.MsgForbidden},
		{apperr.ErrEmptyCart, http.StatusConflict, "Your cart is empty"},
		{apperr.ErrConflict, http.StatusConflict, "Already exists"},
		{apperr.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password."},
		{apperr.ErrTokenExpired, http.StatusGone, "Reset link is invalid or has expired."},
		{&payment.ProviderError{Status: 500, Message: "down"}, http.StatusBadGateway, "Payment provider unavailable"},
		{fmt.Errorf("users.update: dial tcp: %w", apperr.ErrStorage), http.StatusInternalServerError, response.MsgInternal},
		{errors.New("surprise"), http.StatusInternalServerError, response.MsgInternal},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := ctx.Wrap(func(c *ctx.Context) { fail(c, tc.err) })
			rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.status, rec.Code)
			env := decode(t, rec)
			assert.Equal(t, tc.msg, env.Message)
			assert.NotContains(t, rec.Body.String(), "dial tcp")
		})
	}
}

func TestShopIndexPassesPage(t *testing.T) {
	catalog := &stubCatalog{}
	h := ctx.Wrap(NewShopController(catalog).Index)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/products?page=3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, catalog.lastPage)
	assert.Contains(t, string(decode(t, rec).Data), `"currentPage":3`)
}

func TestShopProductNotFound(t *testing.T) {
	r := router.New()
	r.Get("/products/{productId}", "shop.product", ctx.Wrap(NewShopController(&stubCatalog{}).Product))

	rec := serve(r.Handler(), httptest.NewRequest(http.MethodGet, "/products/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartAdd(t *testing.T) {
	catalog := &stubCatalog{products: map[string]models.Product{"A": {ID: "A", Title: "Alpha", Price: "1.00"}}}
	carts := &stubCarts{}
	h := ctx.Wrap(NewCartController(carts, catalog, stubUsers{"u1": jane}).Add)

	t.Run("anonymous", func(t *testing.T) {
		rec := serve(h, jsonRequest(http.MethodPost, "/cart", map[string]string{"productId": "A"}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing product", func(t *testing.T) {
		rec := serve(h, as(jsonRequest(http.MethodPost, "/cart", map[string]string{"productId": "zzz"}), "u1", "user"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := serve(h, as(jsonRequest(http.MethodPost, "/cart", map[string]string{}), "u1", "user"))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode(t, rec).Errors, "productId")
	})

	t.Run("added", func(t *testing.T) {
		rec := serve(h, as(jsonRequest(http.MethodPost, "/cart", map[string]string{"productId": "A"}), "u1", "user"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"A"}, carts.added)
		env := decode(t, rec)
		assert.Equal(t, "Added to cart", env.Message)
		assert.Contains(t, string(env.Data), `"count":1`)
	})
}

func TestCartAddFromForm(t *testing.T) {
	catalog := &stubCatalog{products: map[string]models.Product{"A": {ID: "A"}}}
	carts := &stubCarts{}
	h := ctx.Wrap(NewCartController(carts, catalog, stubUsers{"u1": jane}).Add)

	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBufferString("productId=A"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(h, as(req, "u1", "user"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"A"}, carts.added)
}

func TestCheckout(t *testing.T) {
	users := stubUsers{"u1": jane}

	t.Run("empty cart", func(t *testing.T) {
		checkouts := &stubCheckouts{err: apperr.ErrEmptyCart}
		h := ctx.Wrap(NewCheckoutController(checkouts, &stubOrders{}, users, "http://shop.test/").Checkout)

		rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/checkout", nil), "u1", "user"))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "http://shop.test/checkout/success", checkouts.successURL)
	})

	t.Run("provider down", func(t *testing.T) {
		checkouts := &stubCheckouts{err: &payment.ProviderError{Message: "dial", Err: errors.New("refused")}}
		h := ctx.Wrap(NewCheckoutController(checkouts, &stubOrders{}, users, "http://shop.test").Checkout)

		rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/checkout", nil), "u1", "user"))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Payment provider unavailable", decode(t, rec).Message)
	})

	t.Run("success places order", func(t *testing.T) {
		orders := &stubOrders{}
		h := ctx.Wrap(NewCheckoutController(&stubCheckouts{}, orders, users, "http://shop.test").Success)

		rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/checkout/success", nil), "u1", "user"))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1, orders.placed)
	})

	t.Run("success does not consult the provider", func(t *testing.T) {
		checkouts := &stubCheckouts{err: &payment.ProviderError{Message: "dial", Err: errors.New("refused")}}
		orders := &stubOrders{}
		h := ctx.Wrap(NewCheckoutController(checkouts, orders, users, "http://shop.test").Success)

		rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/checkout/success?session_id=cs_unknown", nil), "u1", "user"))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1, orders.placed)
	})
}

func invoiceRouter(orders Orders, invoices Invoices) http.Handler {
	r := router.New()
	r.Get("/orders/{orderId}", "orders.invoice", ctx.Wrap(NewOrderController(orders, invoices).Invoice))
	return r.Handler()
}

func TestInvoice(t *testing.T) {
	orders := &stubOrders{orders: map[string]models.Order{
		"o-1": {ID: "o-1", User: models.OrderUser{Name: "Jane", UserID: "u1"}},
	}}

	t.Run("owner gets pdf", func(t *testing.T) {
		h := invoiceRouter(orders, &stubInvoices{body: []byte("%PDF-1.3 ...")})
		rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/orders/o-1", nil), "u1", "user"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `inline; filename="invoice-o-1.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.3 ...", rec.Body.String())
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		h := invoiceRouter(orders, &stubInvoices{body: []byte("%PDF")})
		rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/orders/o-1", nil), "u2", "user"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
		assert.NotContains(t, rec.Body.String(), "%PDF")
	})

	t.Run("unknown order", func(t *testing.T) {
		h := invoiceRouter(orders, &stubInvoices{})
		rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/orders/nope", nil), "u1", "user"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("failure before output", func(t *testing.T) {
		h := invoiceRouter(orders, &stubInvoices{err: errors.New("font missing")})
		rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/orders/o-1", nil), "u1", "user"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})

	t.Run("storage failure after output", func(t *testing.T) {
		h := invoiceRouter(orders, &stubInvoices{body: []byte("%PDF"), err: apperr.ErrStorage})
		rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/orders/o-1", nil), "u1", "user"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "%PDF", rec.Body.String())
	})
}

type stubAccounts struct {
	stubUsers
	loginErr error
	resetErr error
}

func (s stubAccounts) Signup(_ context.Context, in services.SignupInput) (models.User, error) {
	if in.Email == "taken@example.com" {
		return models.User{}, apperr.ErrConflict
	}
	return models.User{ID: "u-new", Email: in.Email, Role: models.RoleUser}, nil
}

func (s stubAccounts) Login(_ context.Context, in services.LoginInput) (models.User, string, error) {
	if s.loginErr != nil {
		return models.User{}, "", s.loginErr
	}
	return jane, "signed.jwt.token", nil
}

func (s stubAccounts) RequestReset(_ context.Context, email string) error { return s.resetErr }

func (s stubAccounts) CheckResetToken(_ context.Context, token string) (string, error) {
	if token != "good" {
		return "", apperr.ErrTokenExpired
	}
	return "u1", nil
}

func (s stubAccounts) ResetPassword(_ context.Context, in services.ResetPasswordInput) error {
	return nil
}

func withSession(h http.Handler) http.Handler {
	return session.NewManager(cache.NewMemory(), session.DefaultOptions()).Middleware()(h)
}

func TestLogin(t *testing.T) {
	creds := map[string]string{"email": "jane@example.com", "password": "secret1"}

	t.Run("ok", func(t *testing.T) {
		h := withSession(ctx.Wrap(NewAuthController(stubAccounts{}).Login))
		rec := serve(h, jsonRequest(http.MethodPost, "/login", creds))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(decode(t, rec).Data), "signed.jwt.token")

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "storefront_session", cookies[0].Name)
	})

	t.Run("bad credentials", func(t *testing.T) {
		h := withSession(ctx.Wrap(NewAuthController(stubAccounts{loginErr: apperr.ErrInvalidCredentials}).Login))
		rec := serve(h, jsonRequest(http.MethodPost, "/login", creds))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestSignupConflict(t *testing.T) {
	h := ctx.Wrap(NewAuthController(stubAccounts{}).Signup)
	rec := serve(h, jsonRequest(http.MethodPost, "/signup", map[string]string{
		"email": "taken@example.com", "password": "secret1", "confirmPassword": "secret1",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode(t, rec).Message, "E-Mail exists already")
}

func TestResetFlow(t *testing.T) {
	r := router.New()
	ac := NewAuthController(stubAccounts{resetErr: apperr.ErrNotFound})
	r.Post("/reset", "auth.reset", ctx.Wrap(ac.Reset))
	r.Get("/reset/{token}", "auth.new_password", ctx.Wrap(ac.NewPassword))

	rec := serve(r.Handler(), jsonRequest(http.MethodPost, "/reset", map[string]string{"email": "ghost@example.com"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(r.Handler(), httptest.NewRequest(http.MethodGet, "/reset/good", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"u1","token":"good"}`, string(decode(t, rec).Data))

	rec = serve(r.Handler(), httptest.NewRequest(http.MethodGet, "/reset/stale", nil))
	assert.Equal(t, http.StatusGone, rec.Code)
}

func multipartProduct(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "cover.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/add-product", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return as(req, "admin", models.RoleAdmin)
}

func TestAdminAddProduct(t *testing.T) {
	products := &stubProducts{}
	h := ctx.Wrap(NewAdminController(&stubCatalog{}, products).Add)

	rec := serve(h, multipartProduct(t, map[string]string{
		"title": "A Book", "price": "12.50", "description": "A fine book",
	}, []byte("\x89PNG\r\n\x1a\nrest")))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, products.gotUpload)
	assert.Equal(t, "cover.png", products.gotUpload.Filename)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nrest"), products.gotImage)
	assert.Equal(t, "A Book", products.gotInput.Title)
}

func TestAdminAddProductValidation(t *testing.T) {
	products := &stubProducts{}
	h := ctx.Wrap(NewAdminController(&stubCatalog{}, products).Add)

	rec := serve(h, multipartProduct(t, map[string]string{"title": "A", "price": "x", "description": "d"}, nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, products.gotUpload)
}

func TestAdminUpdateWithoutImage(t *testing.T) {
	products := &stubProducts{}
	h := ctx.Wrap(NewAdminController(&stubCatalog{}, products).Update)

	rec := serve(h, multipartProduct(t, map[string]string{
		"productId": "p1", "title": "A Book", "price": "3", "description": "A fine book",
	}, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "p1", products.gotID)
	assert.Nil(t, products.gotUpload)
}

func TestAdminDeleteForeignProduct(t *testing.T) {
	r := router.New()
	r.Delete("/admin/products/{productId}", "admin.delete", ctx.Wrap(NewAdminController(&stubCatalog{}, &stubProducts{}).Delete))

	req := as(httptest.NewRequest(http.MethodDelete, "/admin/products/p1", nil), "other-admin", models.RoleAdmin)
	rec := serve(r.Handler(), req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminProductsScopedToCaller(t *testing.T) {
	catalog := &stubCatalog{}
	h := ctx.Wrap(NewAdminController(catalog, &stubProducts{}).Products)

	rec := serve(h, as(httptest.NewRequest(http.MethodGet, "/admin/products?page=2", nil), "admin", models.RoleAdmin))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", catalog.owner)
	assert.Equal(t, 2, catalog.lastPage)
}

func TestCheckoutCancelFlashesCart(t *testing.T) {
	store := cache.NewMemory()
	mgr := session.NewManager(store, session.DefaultOptions())
	users := stubUsers{"u1": jane}

	cancel := mgr.Middleware()(ctx.Wrap(NewCheckoutController(&stubCheckouts{}, &stubOrders{}, users, "").Cancel))
	rec := serve(cancel, as(httptest.NewRequest(http.MethodGet, "/checkout/cancel", nil), "u1", "user"))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	show := mgr.Middleware()(ctx.Wrap(NewCartController(&stubCarts{}, &stubCatalog{}, users).Show))
	req := as(httptest.NewRequest(http.MethodGet, "/cart", nil), "u1", "user")
	req.AddCookie(cookies[0])
	rec = serve(show, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), "Checkout cancelled")
}
