package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
)

type stubCatalog struct {
	products map[string]models.Product
	lastPage int
	owner    string
}

func (s *stubCatalog) Page(_ context.Context, page int) (services.ProductPage, error) {
	s.lastPage = page
	return services.ProductPage{Products: []models.Product{}, Meta: services.PageMeta{CurrentPage: page}}, nil
}

func (s *stubCatalog) AdminPage(_ context.Context, userID string, page int) (services.ProductPage, error) {
	s.owner, s.lastPage = userID, page
	return services.ProductPage{Products: []models.Product{}, Meta: services.PageMeta{CurrentPage: page}}, nil
}

func (s *stubCatalog) Product(_ context.Context, id string) (models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, apperr.ErrNotFound
	}
	return p, nil
}

type stubUsers map[string]models.User

func (s stubUsers) User(_ context.Context, id string) (models.User, error) {
	u, ok := s[id]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	return u, nil
}

type stubCarts struct {
	added []string
}

func (s *stubCarts) AddToCart(_ context.Context, u *models.User, p models.Product) error {
	s.added = append(s.added, p.ID)
	u.Cart.Add(p.ID)
	return nil
}

func (s *stubCarts) RemoveFromCart(_ context.Context, u *models.User, id string) error {
	u.Cart.Remove(id)
	return nil
}

func (s *stubCarts) View(_ context.Context, u *models.User) (services.CartView, error) {
	return services.CartView{Lines: []services.CartLine{}, Total: "0.00", Count: u.Cart.Count()}, nil
}

type stubOrders struct {
	orders map[string]models.Order
	placed int
	err    error
}

func (s *stubOrders) PlaceOrder(_ context.Context, u *models.User) (models.Order, error) {
	if s.err != nil {
		return models.Order{}, s.err
	}
	s.placed++
	return models.Order{ID: "o-new", User: models.OrderUser{Name: u.Name, UserID: u.ID}}, nil
}

func (s *stubOrders) ListOrders(_ context.Context, userID string) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range s.orders {
		if o.User.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOrders) FindOrder(_ context.Context, id string) (models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, apperr.ErrNotFound
	}
	return o, nil
}

type stubCheckouts struct {
	err        error
	successURL string
}

func (s *stubCheckouts) Begin(_ context.Context, _ *models.User, successURL, _ string) (services.Checkout, error) {
	s.successURL = successURL
	if s.err != nil {
		return services.Checkout{}, s.err
	}
	return services.Checkout{Total: "10.00"}, nil
}

type stubInvoices struct {
	body []byte
	err  error
}

func (s *stubInvoices) Generate(_ context.Context, o models.Order, requester string, w io.Writer) error {
	if !o.OwnedBy(requester) {
		return apperr.ErrForbidden
	}
	if len(s.body) > 0 {
		if _, err := w.Write(s.body); err != nil {
			return err
		}
	}
	return s.err
}

type stubProducts struct {
	gotUpload *services.Upload
	gotImage  []byte
	gotInput  services.ProductInput
	gotID     string
	err       error
}

func (s *stubProducts) capture(in services.ProductInput, img *services.Upload) {
	s.gotInput, s.gotUpload = in, img
	if img != nil {
		s.gotImage, _ = io.ReadAll(img.Content)
	}
}

func (s *stubProducts) Create(_ context.Context, userID string, in services.ProductInput, img *services.Upload) (models.Product, error) {
	s.capture(in, img)
	if s.err != nil {
		return models.Product{}, s.err
	}
	return models.Product{ID: "p-new", Title: in.Title, UserID: userID}, nil
}

func (s *stubProducts) ForEdit(_ context.Context, userID, id string) (models.Product, error) {
	if userID != "admin" {
		return models.Product{}, apperr.ErrForbidden
	}
	return models.Product{ID: id, UserID: userID}, nil
}

func (s *stubProducts) Update(_ context.Context, userID, id string, in services.ProductInput, img *services.Upload) (models.Product, error) {
	s.capture(in, img)
	s.gotID = id
	return models.Product{ID: id, Title: in.Title, UserID: userID}, s.err
}

func (s *stubProducts) Delete(_ context.Context, userID, id string) error {
	s.gotID = id
	if userID != "admin" {
		return apperr.ErrForbidden
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func as(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), userID, role))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
