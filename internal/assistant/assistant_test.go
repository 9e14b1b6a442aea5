package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/command"
	"github.com/isahbella007/whatsapp-first-erp/internal/customer"
	"github.com/isahbella007/whatsapp-first-erp/internal/inventory"
	"github.com/isahbella007/whatsapp-first-erp/internal/match"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/parser"
	"github.com/isahbella007/whatsapp-first-erp/internal/sale"
	"github.com/isahbella007/whatsapp-first-erp/internal/store"
	"github.com/isahbella007/whatsapp-first-erp/internal/store/storetest"
)

type sent struct{ to, text string }

type fakeGateway struct{ sent []sent }

func (g *fakeGateway) SendText(_ context.Context, to, text string) error {
	g.sent = append(g.sent, sent{to, text})
	return nil
}

type counters struct {
	messages       map[string]int
	clarifications map[string]int
	sales          map[string]int
}

func newCounters() *counters {
	return &counters{messages: map[string]int{}, clarifications: map[string]int{}, sales: map[string]int{}}
}

func (c *counters) ObserveMessage(r string)       { c.messages[r]++ }
func (c *counters) ObserveClarification(k string) { c.clarifications[k]++ }
func (c *counters) ObserveSale(r string)          { c.sales[r]++ }

type fixture struct {
	a     *Assistant
	store *store.Store
	gw    *fakeGateway
	obs   *counters
}

func newFixture(t *testing.T) *fixture {
	s := storetest.New(t)
	m := match.NewLocal(s)
	th := match.DefaultThresholds()
	obs := newCounters()

	reg := command.NewRegistry()
	Register(reg, Services{
		Inventory:       inventory.NewService(s, m, th, 5),
		Customers:       customer.NewService(s, m, th),
		Sales:           sale.NewEngine(s, m, th),
		InventoryFormat: inventory.Formatter{Currency: "₦", LowStockMarker: "⚠️", LowStockLevel: 5},
		CustomerFormat:  customer.Formatter{Currency: "₦"},
		SaleFormat:      sale.Formatter{Currency: "₦"},
		Observer:        obs,
	})
	gw := &fakeGateway{}
	a := New(Options{
		Parser:         parser.Limited{Next: parser.Static{}},
		Router:         command.NewRouter(reg, nil),
		Clarifications: clarify.NewManager(s),
		Gateway:        gw,
		Aggregator:     command.Aggregator{Header: "Here's what I did:", ClarificationHeader: "I need a bit more information:"},
		Observer:       obs,
	})
	return &fixture{a: a, store: s, gw: gw, obs: obs}
}

func (f *fixture) stock(t *testing.T, id uint) float64 {
	p, err := f.store.FindProduct(context.Background(), "m1", id)
	require.NoError(t, err)
	return p.CurrentStockInBaseUnits
}

func (f *fixture) pending(t *testing.T) []models.Clarification {
	cs, err := f.a.PendingClarifications(context.Background(), "m1")
	require.NoError(t, err)
	return cs
}

func TestCheckStockSeesProductAddedInSameMessage(t *testing.T) {
	f := newFixture(t)
	r, err := f.a.HandleMessage(context.Background(), Message{
		MerchantID: "m1",
		From:       "2348030000000",
		Text: `[{"intent":"check_stock","params":{}},
			{"intent":"add_product","params":{"productName":"Zobo Delight","qty":10,"quantityUnit":"bottles","price":1000}}]`,
	})
	require.NoError(t, err)
	require.Len(t, r.Responses, 2)
	assert.Equal(t, command.AddProduct, r.Responses[0].Intent)
	assert.Equal(t, command.CheckStock, r.Responses[1].Intent)
	assert.True(t, strings.Index(r.Text, "Added") < strings.Index(r.Text, "Current Inventory"))
	assert.Contains(t, r.Text, "Zobo Delight")

	require.Len(t, f.gw.sent, 1)
	assert.Equal(t, "2348030000000", f.gw.sent[0].to)
	assert.Equal(t, r.Text, f.gw.sent[0].text)
	assert.Equal(t, 1, f.obs.messages["handled"])
}

func TestUnparseableAndOversizedMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.a.HandleMessage(ctx, Message{MerchantID: "m1", Text: strings.Repeat("x", 1001)})
	require.NoError(t, err)
	assert.Contains(t, r.Text, "too long")

	r, err = f.a.HandleMessage(ctx, Message{MerchantID: "m1", Text: `{"success":false,"intents":[],"error":"What would you like to do?"}`})
	require.NoError(t, err)
	assert.Equal(t, "What would you like to do?", r.Text)

	r, err = f.a.HandleMessage(ctx, Message{MerchantID: "m1", Text: "hello there"})
	require.NoError(t, err)
	assert.Equal(t, parserDown, r.Text)
	assert.Len(t, f.gw.sent, 3)
}

func TestResolveBaseUnitThenConversion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.a.HandleMessage(ctx, Message{MerchantID: "m1", Text: `[{"intent":"add_product","params":{
		"name":"Zobo Delight","quantity":2,"quantityUnit":"crates","price":12000,"priceUnit":"crate"}}]`})
	require.NoError(t, err)
	require.Len(t, r.Clarifications, 1)
	first := r.Clarifications[0]
	assert.Equal(t, string(clarify.BaseUnitDefinitionRequired), first.Type)
	assert.Equal(t, command.AddProduct, first.DataNeeded.Intent)
	assert.Contains(t, r.Text, "smallest unit")

	r, err = f.a.ResolveClarification(ctx, "m1", first.ID, Answer{Value: "bottle"})
	require.NoError(t, err)
	assert.True(t, r.Resolved)
	require.Len(t, r.Clarifications, 1)
	second := r.Clarifications[0]
	assert.Equal(t, string(clarify.UnitConversionRequired), second.Type)
	assert.Contains(t, second.Prompt, "How many bottle of Zobo Delight are in one crate?")

	r, err = f.a.ResolveClarification(ctx, "m1", second.ID, Answer{Value: "12"})
	require.NoError(t, err)
	assert.True(t, r.Resolved)
	assert.Empty(t, r.Clarifications)
	assert.Empty(t, f.pending(t))

	p, err := f.store.FindProductByName(ctx, "m1", "Zobo Delight")
	require.NoError(t, err)
	assert.Equal(t, "bottle", p.BaseUnit())
	assert.Equal(t, 24.0, p.CurrentStockInBaseUnits)
	require.NotNil(t, p.StandardSellingPricePerBaseUnit)
	assert.Equal(t, 1000.0, *p.StandardSellingPricePerBaseUnit)

	_, err = f.a.ResolveClarification(ctx, "m1", first.ID, Answer{Value: "bottle"})
	assert.ErrorIs(t, err, clarify.ErrNotPending)
}

func TestResolveInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shoes := storetest.Product(t, f.store, "m1", "Shoes", "piece", 3, storetest.Price(15000))

	r, err := f.a.HandleMessage(ctx, Message{MerchantID: "m1", Text: `[{"intent":"record_sale","params":{
		"products":[{"name":"shoes","qty":5}]}}]`})
	require.NoError(t, err)
	require.Len(t, r.Clarifications, 1)
	assert.Contains(t, r.Text, "only have 3 pieces in stock")
	assert.Equal(t, 1, f.obs.sales["blocked"])

	r, err = f.a.ResolveClarification(ctx, "m1", r.Clarifications[0].ID, Answer{Value: "3"})
	require.NoError(t, err)
	assert.True(t, r.Resolved)
	assert.Contains(t, r.Text, "Shoes")
	assert.Equal(t, 1, f.obs.sales["committed"])

	p, err := f.store.FindProduct(ctx, "m1", shoes.ID)
	require.NoError(t, err)
	assert.Zero(t, p.CurrentStockInBaseUnits)
}

func TestRetryFailureKeepsClarificationPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	storetest.Product(t, f.store, "m1", "Shoes", "piece", 3, storetest.Price(15000))

	r, err := f.a.HandleMessage(ctx, Message{MerchantID: "m1", Text: `[{"intent":"record_sale","params":{"items":[{"productName":"Shoes","quantity":5}]}}]`})
	require.NoError(t, err)
	id := r.Clarifications[0].ID

	_, err = f.a.ResolveClarification(ctx, "m1", id, Answer{Value: "lots"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	r, err = f.a.ResolveClarification(ctx, "m1", id, Answer{Value: "0"})
	require.NoError(t, err)
	assert.False(t, r.Resolved)
	assert.Len(t, f.pending(t), 1)

	require.NoError(t, f.a.CancelClarification(ctx, "m1", id))
	assert.Empty(t, f.pending(t))
}

func TestUnknownCustomerBlocksSaleUntilAdded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shoes := storetest.Product(t, f.store, "m1", "Shoes", "piece", 10, storetest.Price(15000))

	r, err := f.a.HandleMessage(ctx, Message{MerchantID: "m1", Text: `[{"intent":"record_sale","params":{
		"customerName":"Tunde","items":[{"productName":"Shoes","quantity":2}]}}]`})
	require.NoError(t, err)
	assert.True(t, r.Responses[0].NeedsClarification)
	assert.Equal(t, 1, f.obs.sales["blocked"])
	require.Len(t, r.Clarifications, 1)
	pending := r.Clarifications[0]
	assert.Equal(t, string(clarify.CustomerNotFound), pending.Type)
	assert.Equal(t, command.RecordSale, pending.DataNeeded.Intent)
	assert.Equal(t, 10.0, f.stock(t, shoes.ID))

	_, err = f.a.ResolveClarification(ctx, "m1", pending.ID, Answer{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	r, err = f.a.ResolveClarification(ctx, "m1", pending.ID, Answer{Value: "tunde"})
	require.NoError(t, err)
	assert.True(t, r.Resolved)
	assert.Equal(t, 1, f.obs.sales["committed"])
	assert.Equal(t, 8.0, f.stock(t, shoes.ID))

	customers, err := f.store.ListCustomers(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "tunde", customers[0].Name)
	assert.Equal(t, 30000.0, customers[0].TotalSpent)
}

func TestCustomerTypoCorrectedOnResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shoes := storetest.Product(t, f.store, "m1", "Shoes", "piece", 10, storetest.Price(15000))
	storetest.Customer(t, f.store, "m1", "Ada Obi")

	r, err := f.a.HandleMessage(ctx, Message{MerchantID: "m1", Text: `[{"intent":"record_sale","params":{
		"customerNames":["Zainab Unknown"],"items":[{"productName":"Shoes","quantity":2}]}}]`})
	require.NoError(t, err)
	require.Len(t, r.Clarifications, 1)
	assert.Equal(t, 10.0, f.stock(t, shoes.ID))

	r, err = f.a.ResolveClarification(ctx, "m1", r.Clarifications[0].ID, Answer{Value: "Ada Obi"})
	require.NoError(t, err)
	assert.True(t, r.Resolved)
	assert.Equal(t, 8.0, f.stock(t, shoes.ID))

	customers, err := f.store.ListCustomers(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, 30000.0, customers[0].TotalSpent)
}

func TestResume(t *testing.T) {
	c := models.Clarification{
		Type:        string(clarify.UnitConversionRequired),
		ProductName: "Zobo",
		DataNeeded: models.ClarificationData{
			UnitName:   "crate",
			TargetUnit: "bottle",
			Intent:     command.RecordSale,
			Params:     map[string]any{"items": []any{map[string]any{"name": "zobo", "qty": 2.0, "unitOfMeasure": "crate"}}},
		},
	}
	intents, err := resume(c, Answer{Value: "12"})
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, command.UpdateProduct, intents[0].Name)
	assert.Equal(t, "Zobo", intents[0].Params["name"])
	assert.Equal(t, 12.0, intents[0].Params["conversion"].(map[string]any)["unit2Quantity"])
	assert.Equal(t, command.RecordSale, intents[1].Name)

	// Stored params are left untouched.
	assert.Contains(t, c.DataNeeded.Params["items"].([]any)[0], "qty")

	c.Type = string(clarify.ProductNotFound)
	intents, err = resume(c, Answer{Value: "Zobo Delight"})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	item := intents[0].Params["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "Zobo Delight", item["productName"])
	assert.Equal(t, 2.0, item["quantity"])

	cust := models.Clarification{
		Type:         string(clarify.CustomerNotFound),
		CustomerName: "Zainab",
		DataNeeded: models.ClarificationData{
			Intent: command.RecordSale,
			Params: map[string]any{"customerName": "Zainab", "items": []any{map[string]any{"name": "zobo", "qty": 2.0}}},
		},
	}
	intents, err = resume(cust, Answer{Value: "Zainab Bello"})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, []any{"Zainab Bello"}, intents[0].Params["customerNames"])

	intents, err = resume(cust, Answer{Value: "zainab"})
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, command.AddCustomer, intents[0].Name)
	assert.Equal(t, "zainab", intents[0].Params["name"])
	assert.Equal(t, []any{"zainab"}, intents[1].Params["customerNames"])
}
