package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"tea-kart/internal/checkout"
	"tea-kart/internal/model"
	"tea-kart/internal/payment"
	"tea-kart/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCheckoutService(gw *MockGateway) CheckoutService {
	logger := zerolog.Nop()
	return NewCheckoutService(
		checkout.NewAssembler(),
		payment.NewInitiator(gw, time.Second, logger),
		gw,
		logger,
	)
}

func fillForm(t *testing.T, sess *session.Session) {
	t.Helper()
	fields := map[string]string{
		checkout.FieldName:         "Rahim Uddin",
		checkout.FieldEmail:        "rahim@example.com",
		checkout.FieldPhone:        "01700000000",
		checkout.FieldAddressLine1: "12 Tea Garden Road",
		checkout.FieldCity:         "Sylhet",
		checkout.FieldPostalCode:   "3100",
	}
	for name, value := range fields {
		require.NoError(t, sess.Form.SetField(name, value))
	}
}

func readySession(t *testing.T) *session.Session {
	t.Helper()
	sess := newTestSession(t)
	sess.Cart.Add(testProducts()[0], 2)
	fillForm(t, sess)
	return sess
}

func TestCheckoutService_Submit_Success(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Initiate", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
		return o.TotalAmount.StringFixed(2) == "950.00" && o.Customer.Country == model.DefaultCountry
	})).Return(&model.PaymentSession{Success: true, GatewayURL: "https://gw/x", TransactionID: "TEA-1"}, nil)

	svc := newTestCheckoutService(gw)
	sess := readySession(t)

	result, err := svc.Submit(context.Background(), sess)

	require.NoError(t, err)
	assert.Equal(t, "https://gw/x", result.GatewayURL)
	assert.Equal(t, 0, sess.Cart.Len())
	assert.False(t, sess.Processing())
	assert.Equal(t, checkout.StateInitiating, sess.State())
	gw.AssertExpectations(t)
}

func TestCheckoutService_Submit_LocalFailures(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T) *session.Session
		expectedError error
		expectedState checkout.State
	}{
		{
			name:          "Empty cart",
			setup:         func(t *testing.T) *session.Session { s := newTestSession(t); fillForm(t, s); return s },
			expectedError: model.ErrEmptyCart,
			expectedState: checkout.StateBrowsing,
		},
		{
			name: "Incomplete customer info",
			setup: func(t *testing.T) *session.Session {
				s := newTestSession(t)
				s.Cart.Add(testProducts()[0], 1)
				return s
			},
			expectedError: model.ErrIncompleteCustomerInfo,
			expectedState: checkout.StateCheckoutFormEditing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			svc := newTestCheckoutService(gw)
			sess := tt.setup(t)
			before := sess.Cart.Lines()

			_, err := svc.Submit(context.Background(), sess)

			assert.ErrorIs(t, err, tt.expectedError)
			assert.Equal(t, before, sess.Cart.Lines())
			assert.False(t, sess.Processing())
			assert.Equal(t, tt.expectedState, sess.State())
			gw.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutService_Submit_IncompleteReportsFields(t *testing.T) {
	svc := newTestCheckoutService(new(MockGateway))
	sess := newTestSession(t)
	sess.Cart.Add(testProducts()[0], 1)
	require.NoError(t, sess.Form.SetField(checkout.FieldName, "Rahim"))

	_, err := svc.Submit(context.Background(), sess)

	var incomplete *model.IncompleteCustomerInfoError
	require.True(t, errors.As(err, &incomplete))
	assert.NotContains(t, incomplete.Fields, "name")
	assert.Contains(t, incomplete.Fields, "email")
	assert.NotContains(t, incomplete.Fields, "address_line2")
}

func TestCheckoutService_Submit_PaymentFailureKeepsCart(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Initiate", mock.Anything, mock.Anything).Return(&model.PaymentSession{Success: false}, nil)

	svc := newTestCheckoutService(gw)
	sess := readySession(t)

	_, err := svc.Submit(context.Background(), sess)

	assert.ErrorIs(t, err, model.ErrPaymentInitiation)
	assert.Equal(t, 1, sess.Cart.Len())
	assert.Equal(t, 2, sess.Cart.TotalItemCount())
	assert.False(t, sess.Processing())
	assert.Equal(t, checkout.StateCheckoutFormEditing, sess.State())

	// the form keeps its values for a retry
	valid, _ := sess.Form.Validate()
	assert.True(t, valid)
}

func TestCheckoutService_Submit_SurvivesClientCancellation(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Initiate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(&model.PaymentSession{Success: true, GatewayURL: "https://gw/x"}, nil)

	svc := newTestCheckoutService(gw)
	sess := readySession(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Submit(ctx, sess)

	require.NoError(t, err)
	assert.Equal(t, 0, sess.Cart.Len())
}

func TestCheckoutService_Submit_InProgress(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	gw := new(MockGateway)
	gw.On("Initiate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&model.PaymentSession{Success: true, GatewayURL: "https://gw/x"}, nil).
		Once()

	svc := newTestCheckoutService(gw)
	sess := readySession(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Submit(context.Background(), sess)
		assert.NoError(t, err)
	}()

	<-entered
	_, err := svc.Submit(context.Background(), sess)
	assert.ErrorIs(t, err, model.ErrCheckoutInProgress)

	close(release)
	wg.Wait()
	gw.AssertNumberOfCalls(t, "Initiate", 1)
}

func TestCheckoutService_Submit_AbandonedAttemptIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	gw := new(MockGateway)
	gw.On("Initiate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&model.PaymentSession{Success: true, GatewayURL: "https://gw/x"}, nil)

	svc := newTestCheckoutService(gw)
	sess := readySession(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), sess)
		errCh <- err
	}()

	<-entered
	view := svc.Abandon(sess)
	assert.False(t, view.Processing)
	close(release)

	assert.ErrorIs(t, <-errCh, model.ErrStaleCheckout)
	assert.Equal(t, 1, sess.Cart.Len())
	assert.Equal(t, checkout.StateCheckoutFormEditing, sess.State())
}

func TestCheckoutService_Land(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Initiate", mock.Anything, mock.Anything).
		Return(&model.PaymentSession{Success: true, GatewayURL: "https://gw/x", TransactionID: "TX123"}, nil)
	gw.On("Status", mock.Anything, "TX123").
		Return(&model.PaymentStatus{TransactionID: "TX123", Status: "completed", Currency: "BDT"}, nil)

	svc := newTestCheckoutService(gw)
	sess := readySession(t)
	_, err := svc.Submit(context.Background(), sess)
	require.NoError(t, err)

	resp, ok := svc.Land(context.Background(), sess, payment.SuccessPath, url.Values{"transaction_id": {"TX123"}})

	require.True(t, ok)
	assert.Equal(t, model.OutcomeSuccess, resp.Outcome.Kind)
	require.NotNil(t, resp.Outcome.TransactionID)
	assert.Equal(t, "TX123", *resp.Outcome.TransactionID)
	assert.Equal(t, []string{model.ActionBrowse}, resp.NextActions)
	require.NotNil(t, resp.Status)
	assert.Equal(t, "completed", resp.Status.Status)
	assert.Equal(t, checkout.StateSuccess, sess.State())
}

func TestCheckoutService_LandFailedOffersRetry(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Initiate", mock.Anything, mock.Anything).
		Return(&model.PaymentSession{Success: true, GatewayURL: "https://gw/x"}, nil)

	svc := newTestCheckoutService(gw)
	sess := readySession(t)
	_, err := svc.Submit(context.Background(), sess)
	require.NoError(t, err)

	resp, ok := svc.Land(context.Background(), sess, payment.FailedPath, url.Values{"transaction_id": {"TX9"}})

	require.True(t, ok)
	assert.Nil(t, resp.Outcome.TransactionID)
	assert.Nil(t, resp.Status)
	assert.Equal(t, []string{model.ActionRetryCheckout, model.ActionBrowse}, resp.NextActions)
	assert.Equal(t, checkout.StateFailed, sess.State())
	gw.AssertNotCalled(t, "Status", mock.Anything, mock.Anything)

	view := svc.View(sess)
	assert.Equal(t, string(checkout.StateBrowsing), view.State)
}

func TestCheckoutService_LandStatusErrorIsIgnored(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Status", mock.Anything, "TX404").Return(nil, payment.ErrTransactionNotFound)

	svc := newTestCheckoutService(gw)
	sess := newTestSession(t)

	resp, ok := svc.Land(context.Background(), sess, payment.SuccessPath, url.Values{"transaction_id": {"TX404"}})

	require.True(t, ok)
	assert.Nil(t, resp.Status)

	_, ok = svc.Land(context.Background(), sess, "/payment/unknown", nil)
	assert.False(t, ok)
}

func TestCheckoutService_UpdateField(t *testing.T) {
	svc := newTestCheckoutService(new(MockGateway))
	sess := newTestSession(t)

	view, err := svc.UpdateField(sess, &model.UpdateFieldRequest{Field: "city", Value: "Dhaka"})
	require.NoError(t, err)
	assert.Equal(t, "Dhaka", view.Customer.City)
	assert.False(t, view.Valid)

	_, err = svc.UpdateField(sess, &model.UpdateFieldRequest{Field: "favourite_tea", Value: "oolong"})
	assert.ErrorIs(t, err, model.ErrUnknownField)
}
