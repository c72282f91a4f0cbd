package checkout

import (
	"errors"
	"testing"
	"time"

	"tea-kart/internal/cart"
	"tea-kart/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []model.CartLine {
	return []model.CartLine{
		{Product: model.Product{ID: "P1", Title: "Earl Grey Premium", Price: decimal.NewFromInt(100)}, Quantity: 2},
		{Product: model.Product{ID: "P2", Title: "Royal Oolong", Price: decimal.NewFromInt(250)}, Quantity: 1},
	}
}

func TestAssembler_Assemble_Success(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	a := NewAssembler(WithClock(func() time.Time { return fixed }), WithIDGenerator(func() uuid.UUID { return id }))

	order, err := a.Assemble(sampleLines(), completeCustomer())

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, id, order.ID)
	assert.Equal(t, fixed, order.CreatedAt)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	assert.True(t, decimal.NewFromInt(450).Equal(order.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(order.ShippingCost))
	assert.True(t, decimal.NewFromInt(500).Equal(order.TotalAmount))

	require.Len(t, order.Items, 2)
	assert.Equal(t, "P1", order.Items[0].ProductID)
	assert.Equal(t, "Earl Grey Premium", order.Items[0].ProductTitle)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(100).Equal(order.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(200).Equal(order.Items[0].TotalPrice))
	assert.True(t, decimal.NewFromInt(250).Equal(order.Items[1].TotalPrice))
}

func TestAssembler_Assemble_EmptyCart(t *testing.T) {
	tests := []struct {
		name     string
		customer model.CustomerInfo
	}{
		{name: "Valid customer", customer: completeCustomer()},
		{name: "Blank customer", customer: model.CustomerInfo{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewAssembler().Assemble(nil, tt.customer)

			assert.ErrorIs(t, err, model.ErrEmptyCart)
			assert.Nil(t, order)
		})
	}
}

func TestAssembler_Assemble_IncompleteCustomer(t *testing.T) {
	c := completeCustomer()
	c.City = "   "

	order, err := NewAssembler().Assemble(sampleLines(), c)

	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, model.ErrIncompleteCustomerInfo)

	var incomplete *model.IncompleteCustomerInfoError
	require.True(t, errors.As(err, &incomplete))
	assert.Contains(t, incomplete.Fields, FieldCity)
}

func TestAssembler_Assemble_SucceedsWithoutAddressLine2(t *testing.T) {
	c := completeCustomer()
	c.AddressLine2 = ""

	order, err := NewAssembler().Assemble(sampleLines(), c)

	require.NoError(t, err)
	assert.Empty(t, order.Customer.AddressLine2)
}

func TestAssembler_Assemble_DefaultsCountry(t *testing.T) {
	c := completeCustomer()
	c.Country = ""

	order, err := NewAssembler().Assemble(sampleLines(), c)

	require.NoError(t, err)
	assert.Equal(t, model.DefaultCountry, order.Customer.Country)
}

func TestAssembler_Assemble_IsSnapshot(t *testing.T) {
	store := cart.NewStore()
	for _, line := range sampleLines() {
		store.Add(line.Product, line.Quantity)
	}

	order, err := NewAssembler().Assemble(store.Lines(), completeCustomer())
	require.NoError(t, err)

	store.UpdateQuantity("P1", 10)
	store.Remove("P2")

	require.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(500).Equal(order.TotalAmount))
}

func TestAssembler_WithShippingCost(t *testing.T) {
	a := NewAssembler(WithShippingCost(decimal.NewFromInt(80)))

	order, err := a.Assemble(sampleLines(), completeCustomer())

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(530).Equal(order.TotalAmount))
	assert.True(t, decimal.NewFromInt(80).Equal(a.ShippingCost()))
}
