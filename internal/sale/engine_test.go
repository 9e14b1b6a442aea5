package sale

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/match"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/store"
	"github.com/isahbella007/whatsapp-first-erp/internal/store/storetest"
)

func f(v float64) *float64 { return &v }

func newEngine(t *testing.T) (*Engine, *store.Store) {
	s := storetest.New(t)
	return NewEngine(s, match.NewLocal(s), match.DefaultThresholds()), s
}

func stock(t *testing.T, s *store.Store, id uint) float64 {
	p, err := s.FindProduct(context.Background(), "m1", id)
	require.NoError(t, err)
	return p.CurrentStockInBaseUnits
}

func TestSaleOfMoreShoesThanInStock(t *testing.T) {
	e, s := newEngine(t)
	shoes := storetest.Product(t, s, "m1", "Shoes", "piece", 3, storetest.Price(15000))

	out, err := e.Record(context.Background(), "m1", Request{Items: []Item{{ProductName: "shoes", Quantity: f(5)}}})
	require.NoError(t, err)
	assert.False(t, out.Committed)
	require.Len(t, out.Clarifications, 1)
	assert.Equal(t, clarify.InsufficientStock, out.Clarifications[0].Type)
	assert.Equal(t, 3.0, *out.Clarifications[0].DataNeeded.AvailableQuantity)
	assert.Equal(t, 3.0, stock(t, s, shoes.ID))
}

func TestIncompleteSale(t *testing.T) {
	e, s := newEngine(t)
	shoes := storetest.Product(t, s, "m1", "Shoes", "piece", 10, storetest.Price(15000))

	out, err := e.Record(context.Background(), "m1", Request{
		Items:       []Item{{ProductName: "Shoes", Quantity: f(2)}},
		TotalAmount: f(70000),
		AmountPaid:  f(25000),
	})
	require.NoError(t, err)
	require.True(t, out.Committed)
	assert.Equal(t, models.SaleStatusIncomplete, out.Sale.Status)
	assert.Equal(t, 70000.0, out.Sale.TotalAmount)
	assert.Equal(t, 8.0, stock(t, s, shoes.ID))

	receipt := Formatter{Currency: "₦"}.Receipt(out.Sale)
	assert.Contains(t, receipt, "Balance: ₦45,000 (incomplete)")
}

func TestSaleIsAllOrNothing(t *testing.T) {
	e, s := newEngine(t)
	ctx := context.Background()
	zobo := storetest.Product(t, s, "m1", "Zobo Delight", "bottle", 24, storetest.Price(1000))
	rice := storetest.Product(t, s, "m1", "Rice", "bag", 4, nil)

	out, err := e.Record(ctx, "m1", Request{Items: []Item{
		{ProductName: "zobo", Quantity: f(2)},
		{ProductName: "rice", Quantity: f(1)},
		{ProductName: "generator", Quantity: f(1)},
	}})
	require.NoError(t, err)
	assert.False(t, out.Committed)
	require.Len(t, out.Clarifications, 2)
	assert.Equal(t, clarify.SellingPriceRequired, out.Clarifications[0].Type)
	assert.Equal(t, clarify.ProductNotFound, out.Clarifications[1].Type)
	assert.Equal(t, 24.0, stock(t, s, zobo.ID))
	assert.Equal(t, 4.0, stock(t, s, rice.ID))

	out, err = e.Record(ctx, "m1", Request{Items: []Item{
		{ProductName: "zobo", Quantity: f(2)},
		{ProductName: "rice", Quantity: f(1), PricePerUnit: f(60000)},
	}})
	require.NoError(t, err)
	require.True(t, out.Committed)
	assert.Equal(t, 62000.0, out.Sale.TotalAmount)
	assert.Equal(t, models.SaleStatusComplete, out.Sale.Status)
	assert.Equal(t, 22.0, stock(t, s, zobo.ID))
	assert.Equal(t, 3.0, stock(t, s, rice.ID))
}

func TestRepeatedLinesShareStock(t *testing.T) {
	e, s := newEngine(t)
	shoes := storetest.Product(t, s, "m1", "Shoes", "piece", 3, storetest.Price(100))

	out, err := e.Record(context.Background(), "m1", Request{Items: []Item{
		{ProductName: "shoes", Quantity: f(2)},
		{ProductName: "shoe", Quantity: f(2)},
	}})
	require.NoError(t, err)
	assert.False(t, out.Committed)
	require.Len(t, out.Clarifications, 1)
	assert.Equal(t, 1.0, *out.Clarifications[0].DataNeeded.AvailableQuantity)
	assert.Equal(t, 3.0, stock(t, s, shoes.ID))
}

func TestSaleInAlternativeUnit(t *testing.T) {
	e, s := newEngine(t)
	ctx := context.Background()
	zobo := storetest.Product(t, s, "m1", "Zobo Delight", "bottle", 30, storetest.Price(1000))
	zobo.UpsertAlternativeUnit("crate", 12)
	require.NoError(t, s.SaveProduct(ctx, zobo))

	out, err := e.Record(ctx, "m1", Request{Items: []Item{{ProductName: "Zobo Delight", Quantity: f(2), Unit: "crates", PricePerUnit: f(11000)}}})
	require.NoError(t, err)
	require.True(t, out.Committed)
	assert.Equal(t, 24.0, out.Sale.Items[0].Quantity)
	assert.InDelta(t, 22000.0, out.Sale.TotalAmount, 0.01)
	assert.Equal(t, 6.0, stock(t, s, zobo.ID))

	out, err = e.Record(ctx, "m1", Request{Items: []Item{{ProductName: "Zobo Delight", Quantity: f(1), Unit: "carton"}}})
	require.NoError(t, err)
	require.Len(t, out.Clarifications, 1)
	assert.Equal(t, clarify.UnitConversionRequired, out.Clarifications[0].Type)
}

func TestUnknownCustomerBlocksSale(t *testing.T) {
	e, s := newEngine(t)
	ctx := context.Background()
	shoes := storetest.Product(t, s, "m1", "Shoes", "piece", 10, storetest.Price(15000))
	storetest.Customer(t, s, "m1", "Ada Obi")

	out, err := e.Record(ctx, "m1", Request{
		CustomerNames: []string{"ada obi", "Zainab Unknown"},
		Items:         []Item{{ProductName: "shoes", Quantity: f(2)}, {ProductName: "Gold Watch", Quantity: f(1)}},
	})
	require.NoError(t, err)
	assert.False(t, out.Committed)
	assert.Nil(t, out.Sale)
	require.Len(t, out.Clarifications, 2)
	assert.Equal(t, clarify.CustomerNotFound, out.Clarifications[0].Type)
	assert.Equal(t, "Zainab Unknown", out.Clarifications[0].CustomerName)
	assert.Equal(t, clarify.ProductNotFound, out.Clarifications[1].Type)
	assert.Equal(t, 10.0, stock(t, s, shoes.ID))

	sales, total, err := s.ListSales(ctx, "m1", store.Page{})
	require.NoError(t, err)
	assert.Empty(t, sales)
	assert.Zero(t, total)

	customers, err := s.ListCustomers(ctx, "m1")
	require.NoError(t, err)
	assert.Zero(t, customers[0].TotalSpent)
}

func TestKnownCustomerIsLinked(t *testing.T) {
	e, s := newEngine(t)
	ctx := context.Background()
	storetest.Product(t, s, "m1", "Shoes", "piece", 3, storetest.Price(15000))
	storetest.Customer(t, s, "m1", "Ada Obi")

	out, err := e.Record(ctx, "m1", Request{
		CustomerNames: []string{"ada obi"},
		Items:         []Item{{ProductName: "shoes", Quantity: f(1)}},
	})
	require.NoError(t, err)
	require.True(t, out.Committed)
	assert.Empty(t, out.Clarifications)
	require.Len(t, out.Sale.Customers, 1)
	assert.Equal(t, "Ada Obi", out.Sale.Customers[0].Name)

	customers, err := s.ListCustomers(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 15000.0, customers[0].TotalSpent)
}

func TestFractionalLinesSellExactRemainingStock(t *testing.T) {
	e, s := newEngine(t)
	oil := storetest.Product(t, s, "m1", "Palm Oil", "liter", 0.3, storetest.Price(2000))

	out, err := e.Record(context.Background(), "m1", Request{Items: []Item{
		{ProductName: "Palm Oil", Quantity: f(0.1)},
		{ProductName: "Palm Oil", Quantity: f(0.2)},
	}})
	require.NoError(t, err)
	require.True(t, out.Committed)
	assert.Empty(t, out.Clarifications)
	assert.InDelta(t, 0, stock(t, s, oil.ID), 1e-9)
}

func TestFractionalShortfallPromptIsRounded(t *testing.T) {
	e, s := newEngine(t)
	storetest.Product(t, s, "m1", "Palm Oil", "liter", 0.3, storetest.Price(2000))

	out, err := e.Record(context.Background(), "m1", Request{Items: []Item{
		{ProductName: "Palm Oil", Quantity: f(0.1)},
		{ProductName: "Palm Oil", Quantity: f(0.25)},
	}})
	require.NoError(t, err)
	assert.False(t, out.Committed)
	require.Len(t, out.Clarifications, 1)
	assert.Equal(t, clarify.InsufficientStock, out.Clarifications[0].Type)
	assert.Contains(t, out.Clarifications[0].Prompt, "you only have 0.2 liters in stock.")
	assert.Equal(t, 0.2, *out.Clarifications[0].DataNeeded.AvailableQuantity)
}

func TestZeroQuantityLineIsSkipped(t *testing.T) {
	e, s := newEngine(t)
	shoes := storetest.Product(t, s, "m1", "Shoes", "piece", 10, storetest.Price(15000))

	out, err := e.Record(context.Background(), "m1", Request{Items: []Item{
		{ProductName: "Shoes", Quantity: f(2)},
		{ProductName: "Shoes", Quantity: f(0)},
	}})
	require.NoError(t, err)
	require.True(t, out.Committed)
	require.Len(t, out.Sale.Items, 1)
	assert.Equal(t, 8.0, stock(t, s, shoes.ID))
}

func TestSaleValidation(t *testing.T) {
	e, s := newEngine(t)
	ctx := context.Background()
	storetest.Product(t, s, "m1", "Shoes", "piece", 3, storetest.Price(15000))

	_, err := e.Record(ctx, "m1", Request{Items: []Item{{ProductName: "shoes"}, {Quantity: f(1)}}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.Record(ctx, "m1", Request{Items: []Item{{ProductName: "shoes", Quantity: f(-1)}}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.Record(ctx, "m1", Request{Items: []Item{{ProductName: "shoes", Quantity: f(0)}}})
	assert.ErrorIs(t, err, apperr.ErrValidation, "a sale whose only line has no quantity records nothing")

	_, err = e.Record(ctx, "m1", Request{Items: []Item{{ProductName: "shoes", Quantity: f(1)}}, AmountPaid: f(-1)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

type failingStore struct {
	*store.Store
}

func (failingStore) CommitSale(context.Context, *models.Sale, []store.StockDecrement) error {
	return errors.New("connection reset")
}

func TestCommitFailureIsTransactionAbort(t *testing.T) {
	s := storetest.New(t)
	storetest.Product(t, s, "m1", "Shoes", "piece", 3, storetest.Price(15000))
	e := NewEngine(failingStore{s}, match.NewLocal(s), match.DefaultThresholds())

	_, err := e.Record(context.Background(), "m1", Request{Items: []Item{{ProductName: "shoes", Quantity: f(1)}}})
	assert.ErrorIs(t, err, apperr.ErrTransactionAbort)
	assert.NotContains(t, apperr.UserMessage(err), "connection reset")
}
