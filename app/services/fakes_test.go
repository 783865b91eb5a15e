package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/payment"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// ── products ─────────────────────────────────────────────────────────────────

type fakeProducts struct {
	mu        sync.Mutex
	rows      map[string]models.Product
	updateErr error
}

func newFakeProducts(ps ...models.Product) *fakeProducts {
	f := &fakeProducts{rows: map[string]models.Product{}}
	for _, p := range ps {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	f.rows[p.ID] = *p
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	f.rows[p.ID] = *p
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.Product{}, apperr.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := f.rows[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Page(_ context.Context, filter repositories.ProductFilter, page, perPage int) ([]models.Product, orm.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := []models.Product{}
	for _, p := range f.rows {
		if filter.UserID == "" || p.UserID == filter.UserID {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })

	pg := orm.NewPagination(int64(len(all)), page, perPage)
	start := (pg.Page - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], pg, nil
}

func (f *fakeProducts) DeleteOwned(_ context.Context, id, userID string) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.Product{}, apperr.ErrNotFound
	}
	if p.UserID != userID {
		return models.Product{}, apperr.ErrForbidden
	}
	delete(f.rows, id)
	return p, nil
}

// ── users ────────────────────────────────────────────────────────────────────

type fakeUsers struct {
	mu      sync.Mutex
	rows    map[string]models.User
	saves   int
	saveErr error
}

func newFakeUsers(us ...models.User) *fakeUsers {
	f := &fakeUsers{rows: map[string]models.User{}}
	for _, u := range us {
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.Email == u.Email {
			return apperr.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	f.rows[u.ID] = *u
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[u.ID]; !ok {
		return apperr.ErrNotFound
	}
	f.rows[u.ID] = *u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, apperr.ErrNotFound
}

func (f *fakeUsers) FindByResetToken(_ context.Context, token string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if token != "" && u.ResetToken == token {
			return u, nil
		}
	}
	return models.User{}, apperr.ErrNotFound
}

func (f *fakeUsers) SaveCart(_ context.Context, userID string, cart models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	u, ok := f.rows[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	u.Cart = cart
	f.rows[userID] = u
	f.saves++
	return nil
}

func (f *fakeUsers) stored(id string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

// ── orders ───────────────────────────────────────────────────────────────────

type fakeOrders struct {
	mu    sync.Mutex
	users *fakeUsers
	rows  []models.Order
}

func (f *fakeOrders) CreateAndClearCart(ctx context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	f.rows = append(f.rows, *o)
	return f.users.SaveCart(ctx, o.User.UserID, models.Cart{Items: []models.CartItem{}})
}

func (f *fakeOrders) FindByID(_ context.Context, id string) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.rows {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, apperr.ErrNotFound
}

func (f *fakeOrders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].User.UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

// ── collaborators ────────────────────────────────────────────────────────────

type fakeProvider struct {
	calls []payment.Request
	err   error
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req payment.Request) (payment.Session, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return payment.Session{}, f.err
	}
	return payment.Session{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

type fakeDisk struct {
	mu     sync.Mutex
	files  map[string][]byte
	putErr error
	delErr error
}

var _ storage.Disk = (*fakeDisk)(nil)

func newFakeDisk() *fakeDisk { return &fakeDisk{files: map[string][]byte{}} }

func (d *fakeDisk) Put(_ context.Context, p string, content []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.putErr != nil {
		return d.putErr
	}
	d.files[p] = append([]byte(nil), content...)
	return nil
}

func (d *fakeDisk) PutStream(ctx context.Context, p string, r io.Reader) error {
	if d.putErr != nil {
		return d.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return d.Put(ctx, p, b)
}

func (d *fakeDisk) Get(_ context.Context, p string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.files[p]
	if !ok {
		return nil, storage.ErrNotExist
	}
	return b, nil
}

func (d *fakeDisk) GetStream(ctx context.Context, p string) (io.ReadCloser, error) {
	b, err := d.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (d *fakeDisk) Exists(_ context.Context, p string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.files[p]
	return ok
}

func (d *fakeDisk) Delete(_ context.Context, p string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.delErr != nil {
		return d.delErr
	}
	delete(d.files, p)
	return nil
}

func (d *fakeDisk) URL(p string) string { return "/" + p }

func (d *fakeDisk) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files)
}

type fakeEvents struct {
	mu    sync.Mutex
	fired []OrderPlaced
}

func (f *fakeEvents) FireAsync(_ context.Context, event string, payload interface{}) {
	if event != EventOrderPlaced {
		return
	}
	f.mu.Lock()
	f.fired = append(f.fired, payload.(OrderPlaced))
	f.mu.Unlock()
}

type fakeDispatcher struct {
	jobs []queue.Job
	err  error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, job queue.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

var errBoom = errors.New("boom")
