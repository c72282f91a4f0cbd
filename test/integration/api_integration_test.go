package integration

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"tea-kart/internal/catalog"
	"tea-kart/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillCheckoutForm(t *testing.T, b *Browser) {
	t.Helper()

	fields := map[string]string{
		"name":          "Rahim Uddin",
		"email":         "rahim@example.com",
		"phone":         "+8801700000000",
		"address_line1": "House 12, Road 5, Dhanmondi",
		"city":          "Dhaka",
		"postal_code":   "1205",
	}
	for field, value := range fields {
		w := b.Do(http.MethodPatch, "/api/checkout/form", model.UpdateFieldRequest{Field: field, Value: value}, "")
		require.Equal(t, http.StatusOK, w.Code, "field %s", field)
	}
}

func TestCheckoutFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	fc := NewFakeCatalog(t, SampleProducts())
	fp := NewFakePayment(t)
	sf := NewStorefront(t, StorefrontOptions{CatalogURL: fc.Server.URL, PaymentURL: fp.Server.URL})
	b := NewBrowser(t, sf.Handler)

	t.Run("browse catalogue", func(t *testing.T) {
		w := b.Do(http.MethodGet, "/api/products", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var products []model.Product
		Decode(t, w, &products)
		assert.Len(t, products, 4)

		w = b.Do(http.MethodGet, "/api/products/category/black_tea", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		Decode(t, w, &products)
		assert.Len(t, products, 2)
	})

	t.Run("fill cart", func(t *testing.T) {
		w := b.Do(http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "1"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, b.Cookie)

		two := 2
		w = b.Do(http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "1", Quantity: &two}, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = b.Do(http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "2"}, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = b.Do(http.MethodPut, "/api/cart/items/1", model.UpdateQuantityRequest{Quantity: 2}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var view model.CartView
		Decode(t, w, &view)
		require.Len(t, view.Lines, 2)
		assert.Equal(t, "1", view.Lines[0].Product.ID)
		assert.Equal(t, 3, view.TotalItemCount)
		assert.Equal(t, "৳1280.00", view.TotalAmount.Formatted)
		assert.Equal(t, "৳50.00", view.ShippingCost.Formatted)
		assert.Equal(t, "৳1330.00", view.CheckoutTotal.Formatted)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		w := b.Do(http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "999"}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("incomplete form blocks submission", func(t *testing.T) {
		w := b.Do(http.MethodPost, "/api/checkout", nil, "application/json")
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp model.ErrorResponse
		Decode(t, w, &resp)
		assert.Equal(t, model.ErrCodeIncompleteCustomerInfo, resp.Error)
		assert.Contains(t, resp.Fields, "email")
		assert.Empty(t, fp.Orders())
	})

	t.Run("submit hands off to the gateway", func(t *testing.T) {
		fillCheckoutForm(t, b)

		w := b.Do(http.MethodPost, "/api/checkout", nil, "application/json")
		require.Equal(t, http.StatusOK, w.Code)

		var redirect struct {
			GatewayURL string `json:"gateway_url"`
		}
		Decode(t, w, &redirect)
		assert.Equal(t, "https://sandbox.gateway.example/pay/session-1", redirect.GatewayURL)

		orders := fp.Orders()
		require.Len(t, orders, 1)
		assert.Equal(t, json.Number("1280"), orders[0]["subtotal"])
		assert.Equal(t, json.Number("50"), orders[0]["shipping_cost"])
		assert.Equal(t, json.Number("1330"), orders[0]["total_amount"])
		assert.Equal(t, "pending", orders[0]["status"])
		customer := orders[0]["customer"].(map[string]interface{})
		assert.Equal(t, model.DefaultCountry, customer["country"])

		w = b.Do(http.MethodGet, "/api/cart", nil, "")
		var view model.CartView
		Decode(t, w, &view)
		assert.Equal(t, 0, view.TotalItemCount)
	})

	t.Run("gateway returns to success page", func(t *testing.T) {
		w := b.Do(http.MethodGet, "/payment/success?transaction_id=txn-1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp model.OutcomeResponse
		Decode(t, w, &resp)
		assert.Equal(t, model.OutcomeSuccess, resp.Outcome.Kind)
		assert.Equal(t, []string{model.ActionBrowse}, resp.NextActions)
		require.NotNil(t, resp.Status)
		assert.Equal(t, "completed", resp.Status.Status)
		assert.Equal(t, 0, resp.CartItems)
	})
}

func TestPaymentDeclined_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	fc := NewFakeCatalog(t, SampleProducts())
	fp := NewFakePayment(t)
	fp.Reply(func(map[string]interface{}) (int, interface{}) {
		return http.StatusOK, model.PaymentSession{Success: false, Error: "Store credential error"}
	})
	sf := NewStorefront(t, StorefrontOptions{CatalogURL: fc.Server.URL, PaymentURL: fp.Server.URL})
	b := NewBrowser(t, sf.Handler)

	w := b.Do(http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "3"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	fillCheckoutForm(t, b)

	w = b.Do(http.MethodPost, "/api/checkout", nil, "application/json")
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp model.ErrorResponse
	Decode(t, w, &resp)
	assert.Equal(t, model.ErrCodePaymentInitiationFailed, resp.Error)
	assert.Equal(t, "Store credential error", resp.Message)

	w = b.Do(http.MethodGet, "/api/checkout", nil, "")
	var view model.CheckoutView
	Decode(t, w, &view)
	assert.Equal(t, 1, view.Cart.TotalItemCount)
	assert.Equal(t, "checkout_form_editing", view.State)
	assert.False(t, view.Processing)

	// Retry once the payment service recovers.
	fp.Reply(func(map[string]interface{}) (int, interface{}) {
		return http.StatusOK, model.PaymentSession{Success: true, GatewayURL: "https://sandbox.gateway.example/pay/2", TransactionID: "txn-2"}
	})

	w = b.Do(http.MethodPost, "/api/checkout", nil, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://sandbox.gateway.example/pay/2", w.Header().Get("Location"))
	assert.Len(t, fp.Orders(), 2)

	w = b.Do(http.MethodGet, "/payment/cancelled", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var outcome model.OutcomeResponse
	Decode(t, w, &outcome)
	assert.Equal(t, []string{model.ActionRetryCheckout, model.ActionBrowse}, outcome.NextActions)
}

func TestCatalogOutage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	snapshotPath := filepath.Join(t.TempDir(), "products.json.gz")
	file, err := os.Create(snapshotPath)
	require.NoError(t, err)
	require.NoError(t, catalog.WriteSnapshot(file, SampleProducts()[:2]))
	require.NoError(t, file.Close())

	tests := []struct {
		name           string
		snapshotPath   string
		expectedStatus int
		expectedCount  int
	}{
		{name: "Serves snapshot", snapshotPath: snapshotPath, expectedStatus: http.StatusOK, expectedCount: 2},
		{name: "No snapshot configured", snapshotPath: "", expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := NewFakeCatalog(t, SampleProducts())
			fp := NewFakePayment(t)
			sf := NewStorefront(t, StorefrontOptions{
				CatalogURL:   fc.Server.URL,
				PaymentURL:   fp.Server.URL,
				SnapshotPath: tt.snapshotPath,
			})
			b := NewBrowser(t, sf.Handler)

			fc.Down.Store(true)

			w := b.Do(http.MethodGet, "/api/products", nil, "")
			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var products []model.Product
				Decode(t, w, &products)
				assert.Len(t, products, tt.expectedCount)

				w = b.Do(http.MethodPost, "/api/cart/items", model.AddToCartRequest{ProductID: "2"}, "")
				assert.Equal(t, http.StatusOK, w.Code)
			} else {
				var resp model.ErrorResponse
				Decode(t, w, &resp)
				assert.Equal(t, model.ErrCodeCatalogUnavailable, resp.Error)
			}
		})
	}
}
