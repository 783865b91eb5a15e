// Package bootstrap builds the storefront's object graph at process start:
// store clients, cache, sessions, disks, mailer, queue, event bus, the
// websocket hub and the services on top. Everything is closed by App.Close.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/storefront/app/controllers"
	appgraphql "github.com/shashiranjanraj/storefront/app/graphql"
	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/payment"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
	gqlhttp "github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/session"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

const (
	memoryQueueSize = 1024
	eventWorkers    = 4
	cachePrefix     = "storefront:"
)

// App is the booted process.
type App struct {
	Store    *Store
	Redis    *redis.Client
	Cache    cache.Store
	Sessions *session.Manager
	Disks    *storage.Manager
	Mailer   mail.Mailer
	Queue    *queue.Manager
	Events   *event.Bus
	Hub      *ws.Hub
	Payments payment.Provider

	Catalog   *services.CatalogService
	Carts     *services.CartService
	Orders    *services.OrderService
	Checkouts *services.CheckoutService
	Invoices  *services.InvoiceService
	Products  *services.ProductService
	Accounts  *services.AuthService

	pool   *workerpool.Pool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Boot loads config and connects every backend. On error, whatever was
// already opened is closed again.
func Boot(ctx context.Context) (_ *App, err error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.EnableMongo(config.LogMongoURI(), config.MongoDatabase()); err != nil {
		logger.Warn("logger: mongo sink disabled", "error", err)
	}

	a := &App{}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	a.Redis, a.Cache = connectCache(ctx)
	a.Sessions = session.NewManager(a.Cache, session.DefaultOptions())

	if a.Store, err = OpenStore(ctx, a.Cache); err != nil {
		return nil, err
	}
	if err = a.Store.Migrate(); err != nil {
		return nil, err
	}

	if a.Disks, err = storage.New(ctx, storage.FromConfig()); err != nil {
		return nil, err
	}
	disk := a.Disks.Default()

	a.Mailer = mail.New(mail.FromConfig())
	if a.Queue, err = newQueue(a.Redis, a.Store); err != nil {
		return nil, err
	}
	jobs.Register(a.Queue, a.Mailer)

	a.pool = workerpool.New(eventWorkers, workerpool.WithPanicHandler(func(v any) {
		logger.Error("event: listener panicked", "panic", v)
	}))
	a.Events = event.New(a.pool)
	a.Hub = ws.NewHub()
	listeners.Register(a.Events, a.Hub, a.Queue)

	a.Payments = payment.NewStripe(http.New(nil))

	repos := a.Store.Repos
	a.Catalog = services.NewCatalogService(repos.Products)
	a.Carts = services.NewCartService(repos.Products, repos.Users)
	a.Orders = services.NewOrderService(repos.Products, repos.Orders, a.Events)
	a.Checkouts = services.NewCheckoutService(repos.Products, a.Payments, config.StripeCurrency())
	a.Invoices = services.NewInvoiceService(disk)
	a.Products = services.NewProductService(repos.Products, disk)
	a.Accounts = services.NewAuthService(repos.Users, a.Queue, config.AppURL())

	logger.Info("storefront booted",
		"db", a.Store.Driver,
		"redis", a.Redis != nil,
		"queue", config.QueueDriver(),
		"disk", config.StorageDefault(),
	)
	return a, nil
}

// Handlers builds the controllers for the HTTP kernel.
func (a *App) Handlers() (routes.Handlers, error) {
	schema, err := appgraphql.NewSchema(a.Catalog)
	if err != nil {
		return routes.Handlers{}, fmt.Errorf("graphql schema: %w", err)
	}

	return routes.Handlers{
		Shop:     controllers.NewShopController(a.Catalog),
		Cart:     controllers.NewCartController(a.Carts, a.Catalog, a.Accounts),
		Checkout: controllers.NewCheckoutController(a.Checkouts, a.Orders, a.Accounts, config.AppURL()),
		Orders:   controllers.NewOrderController(a.Orders, a.Invoices),
		Admin:    controllers.NewAdminController(a.Catalog, a.Products),
		Auth:     controllers.NewAuthController(a.Accounts),
		Feed:     controllers.NewFeedController(a.Hub),
		Assets:   controllers.NewAssetController(a.Disks.Default()),
		Health:   controllers.NewHealthController(a.Store.Repos.Ping),
		GraphQL:  gqlhttp.Handler(schema),
	}, nil
}

// Start runs the websocket hub and, when workers > 0, queue workers in the
// background until Close.
func (a *App) Start(ctx context.Context, workers int) {
	ctx, a.cancel = context.WithCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Hub.Run(ctx)
	}()

	if workers > 0 {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.Queue.Work(ctx, workers)
		}()
	}
}

// Close stops background work and releases every client. Safe on a
// partially booted App.
func (a *App) Close(ctx context.Context) {
	if a.Events != nil {
		a.Events.Flush()
	}
	if a.pool != nil {
		a.pool.Shutdown()
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if a.Store != nil {
		if err := a.Store.Close(ctx); err != nil {
			logger.Warn("store: close failed", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("redis: close failed", "error", err)
		}
	}
	logger.Close()
}

// Workers is QUEUE_WORKERS, the in-process queue worker count for serve.
func Workers() int {
	n, err := strconv.Atoi(config.Get("QUEUE_WORKERS", "2"))
	if err != nil || n < 0 {
		return 2
	}
	return n
}

// connectCache prefers Redis and falls back to an in-process store.
func connectCache(ctx context.Context) (*redis.Client, cache.Store) {
	rdb, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("cache: redis unavailable, using memory store", "error", err)
		return nil, cache.NewMemory()
	}
	return rdb, cache.NewRedis(rdb, cachePrefix)
}

var errQueueNeedsRedis = errors.New("queue: QUEUE_DRIVER=redis but redis is unavailable")

func newQueue(rdb *redis.Client, store *Store) (*queue.Manager, error) {
	var driver queue.Driver
	switch config.QueueDriver() {
	case "redis":
		if rdb == nil {
			return nil, errQueueNeedsRedis
		}
		driver = queue.NewRedisDriver(rdb)
	default:
		driver = queue.NewMemoryDriver(memoryQueueSize)
	}
	return queue.New(driver, queue.WithFailedStore(store.FailedJobs())), nil
}
