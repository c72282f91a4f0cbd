package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"tea-kart/internal/middleware"
	"tea-kart/internal/model"
	"tea-kart/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) View(sess *session.Session) model.CheckoutView {
	args := m.Called(sess)
	return args.Get(0).(model.CheckoutView)
}

func (m *MockCheckoutService) UpdateField(sess *session.Session, req *model.UpdateFieldRequest) (model.CheckoutView, error) {
	args := m.Called(sess, req)
	return args.Get(0).(model.CheckoutView), args.Error(1)
}

func (m *MockCheckoutService) Submit(ctx context.Context, sess *session.Session) (*model.PaymentSession, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentSession), args.Error(1)
}

func (m *MockCheckoutService) Abandon(sess *session.Session) model.CheckoutView {
	args := m.Called(sess)
	return args.Get(0).(model.CheckoutView)
}

func (m *MockCheckoutService) Land(ctx context.Context, sess *session.Session, path string, query url.Values) (model.OutcomeResponse, bool) {
	args := m.Called(ctx, sess, path, query)
	return args.Get(0).(model.OutcomeResponse), args.Bool(1)
}

func (m *MockCheckoutService) PaymentStatus(ctx context.Context, transactionID string) (*model.PaymentStatus, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentStatus), args.Error(1)
}

func testProducts() []model.Product {
	return []model.Product{
		{ID: "1", Title: "Earl Grey Premium", Category: model.CategoryBlackTea, Price: decimal.NewFromInt(450), IsAvailable: true},
		{ID: "2", Title: "Dragon Well Green Tea", Category: model.CategoryGreenTea, Price: decimal.NewFromInt(380), IsAvailable: true},
	}
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	sess, _ := session.NewManager(zerolog.Nop()).Get(context.Background(), "")
	return sess
}

// withSession attaches sess to the request as the Session middleware would.
func withSession(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), sess))
}

// withURLParams sets chi route parameters on a request built outside a router.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
