package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tea-kart/internal/catalog"
	"tea-kart/internal/checkout"
	"tea-kart/internal/config"
	"tea-kart/internal/database"
	"tea-kart/internal/handler"
	"tea-kart/internal/model"
	"tea-kart/internal/payment"
	"tea-kart/internal/router"
	"tea-kart/internal/service"
	"tea-kart/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the cart schema migrated.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.Migrate(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SetupTestRedis starts an in-process Redis server.
func SetupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

// SampleProducts returns the catalogue served by FakeCatalog.
func SampleProducts() []model.Product {
	return []model.Product{
		{ID: "1", Title: "Earl Grey Premium", Category: model.CategoryBlackTea, Price: decimal.NewFromInt(450), WeightGrams: 100, OriginCountry: "Sri Lanka", IsAvailable: true},
		{ID: "2", Title: "Dragon Well Green Tea", Category: model.CategoryGreenTea, Price: decimal.NewFromInt(380), WeightGrams: 100, OriginCountry: "China", IsAvailable: true},
		{ID: "3", Title: "Himalayan Gold", Category: model.CategoryBlackTea, Price: decimal.NewFromInt(650), WeightGrams: 100, OriginCountry: "Nepal", IsAvailable: true},
		{ID: "4", Title: "Chamomile Dream", Category: model.CategoryHerbalTea, Price: decimal.NewFromInt(320), WeightGrams: 100, OriginCountry: "Egypt", IsAvailable: true},
	}
}

// FakeCatalog serves the catalogue API. Setting Down makes every request fail with 503.
type FakeCatalog struct {
	Server *httptest.Server
	Down   atomic.Bool
}

// NewFakeCatalog starts a catalogue server backed by products.
func NewFakeCatalog(t *testing.T, products []model.Product) *FakeCatalog {
	t.Helper()

	fc := &FakeCatalog{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fc.Down.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, products)
	})
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, p := range products {
			if p.ID == chi.URLParam(r, "id") {
				writeJSON(w, http.StatusOK, p)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Product not found"})
	})
	r.Get("/api/products/category/{category}", func(w http.ResponseWriter, r *http.Request) {
		out := make([]model.Product, 0)
		for _, p := range products {
			if string(p.Category) == chi.URLParam(r, "category") {
				out = append(out, p)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	fc.Server = httptest.NewServer(r)
	t.Cleanup(fc.Server.Close)
	return fc
}

// FakePayment serves the payment initiation API and records every order it receives.
type FakePayment struct {
	Server *httptest.Server

	mu     sync.Mutex
	orders []map[string]interface{}
	reply  func(order map[string]interface{}) (int, interface{})
}

// NewFakePayment starts a payment server that accepts every order.
func NewFakePayment(t *testing.T) *FakePayment {
	t.Helper()

	fp := &FakePayment{}
	fp.reply = func(map[string]interface{}) (int, interface{}) {
		return http.StatusOK, model.PaymentSession{
			Success:       true,
			GatewayURL:    "https://sandbox.gateway.example/pay/session-1",
			TransactionID: "txn-1",
			SessionKey:    "session-1",
		}
	}

	r := chi.NewRouter()
	r.Post("/api/payments/initiate", func(w http.ResponseWriter, r *http.Request) {
		var order map[string]interface{}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&order); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid order"})
			return
		}

		fp.mu.Lock()
		fp.orders = append(fp.orders, order)
		reply := fp.reply
		fp.mu.Unlock()

		status, body := reply(order)
		writeJSON(w, status, body)
	})
	r.Get("/api/payments/status/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "txn-1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Transaction not found"})
			return
		}
		writeJSON(w, http.StatusOK, model.PaymentStatus{
			TransactionID: "txn-1",
			Status:        "completed",
			Amount:        decimal.NewFromInt(950),
			Currency:      model.CurrencyCode,
		})
	})

	fp.Server = httptest.NewServer(r)
	t.Cleanup(fp.Server.Close)
	return fp
}

// Reply replaces the answer given to initiation requests.
func (fp *FakePayment) Reply(fn func(order map[string]interface{}) (int, interface{})) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.reply = fn
}

// Orders returns the orders received so far.
func (fp *FakePayment) Orders() []map[string]interface{} {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	out := make([]map[string]interface{}, len(fp.orders))
	copy(out, fp.orders)
	return out
}

// Storefront is a fully wired storefront under test.
type Storefront struct {
	Handler  http.Handler
	Sessions *session.Manager
}

// StorefrontOptions configures NewStorefront.
type StorefrontOptions struct {
	CatalogURL   string
	PaymentURL   string
	Persister    session.CartPersister
	SnapshotPath string
}

// NewStorefront wires the storefront the same way the server binary does.
func NewStorefront(t *testing.T, opts StorefrontOptions) *Storefront {
	t.Helper()
	logger := zerolog.Nop()

	live := catalog.NewHTTPCatalog(opts.CatalogURL, 2*time.Second, nil, logger)
	var loader catalog.SnapshotLoader
	if opts.SnapshotPath != "" {
		loader = catalog.NewFallbackLoader(nil, catalog.NewFileLoader(logger), "", false, logger)
	}
	productCatalog := catalog.NewFallbackCatalog(live, loader, opts.SnapshotPath, logger)

	gateway := payment.NewHTTPGateway(payment.DefaultGatewayConfig(opts.PaymentURL), nil, logger)
	initiator := payment.NewInitiator(gateway, 5*time.Second, logger)

	assembler := checkout.NewAssembler()
	productService := service.NewProductService(productCatalog, logger)
	cartService := service.NewCartService(productService, assembler.ShippingCost(), logger)
	checkoutService := service.NewCheckoutService(assembler, initiator, gateway, logger)

	var sessionOpts []session.Option
	if opts.Persister != nil {
		sessionOpts = append(sessionOpts, session.WithPersister(opts.Persister))
	}
	sessions := session.NewManager(logger, sessionOpts...)

	cfg := &config.Config{
		Server:  config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Session: config.SessionConfig{CookieName: "teakart_session", MaxIdle: 120, SweepInterval: 60},
	}

	return &Storefront{
		Handler: router.New(router.Handlers{
			Products: handler.NewProductHandler(productService, logger),
			Cart:     handler.NewCartHandler(cartService, logger),
			Checkout: handler.NewCheckoutHandler(checkoutService, logger),
			Payments: handler.NewPaymentHandler(checkoutService, logger),
		}, sessions, cfg, logger),
		Sessions: sessions,
	}
}

// Browser issues requests against a storefront and keeps its session cookie.
type Browser struct {
	t      *testing.T
	server http.Handler
	Cookie *http.Cookie
}

// NewBrowser creates a browser without a session.
func NewBrowser(t *testing.T, server http.Handler) *Browser {
	return &Browser{t: t, server: server}
}

// Do sends one request. body is marshalled to JSON when not nil.
func (b *Browser) Do(method, target string, body interface{}, accept string) *httptest.ResponseRecorder {
	b.t.Helper()

	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			b.t.Fatalf("failed to encode body: %v", err)
		}
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if b.Cookie != nil {
		req.AddCookie(b.Cookie)
	}

	w := httptest.NewRecorder()
	b.server.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == "teakart_session" {
			b.Cookie = c
		}
	}
	return w
}

// Decode reads a JSON response body into v.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
