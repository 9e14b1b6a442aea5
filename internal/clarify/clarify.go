// Package clarify turns blocked operations into resumable questions for the
// merchant.
package clarify

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/reply"
)

type Type string

const (
	BaseUnitDefinitionRequired Type = "BASE_UNIT_DEFINITION_REQUIRED"
	UnitConversionRequired     Type = "UNIT_CONVERSION_REQUIRED"
	SellingPriceRequired       Type = "SELLING_PRICE_REQUIRED"
	PurchasePriceRequired      Type = "PURCHASE_PRICE_REQUIRED"
	StockUpdateDeferred        Type = "STOCK_UPDATE_DEFERRED"
	ProductNotFound            Type = "PRODUCT_NOT_FOUND"
	CustomerNotFound           Type = "CUSTOMER_NOT_FOUND"
	InsufficientStock          Type = "INSUFFICIENT_STOCK"
)

const (
	ValueQuantity = "quantity"
	ValuePrice    = "price"
	ValueUnit     = "unit"
	ValueEntity   = "entity"
)

// Request is a single question raised while handling one command.
type Request struct {
	Type         Type                     `json:"type"`
	ProductName  string                   `json:"productName,omitempty"`
	CustomerName string                   `json:"customerName,omitempty"`
	Prompt       string                   `json:"prompt"`
	DataNeeded   models.ClarificationData `json:"dataNeeded"`
}

// Subject is the product or customer name the request is about.
func (r Request) Subject() string {
	if r.ProductName != "" {
		return r.ProductName
	}
	return r.CustomerName
}

// Blocked is returned by operations that cannot continue until the merchant
// answers Request.
type Blocked struct {
	Request Request
}

func (b *Blocked) Error() string { return b.Request.Prompt }

func (b *Blocked) Unwrap() error {
	switch b.Request.Type {
	case ProductNotFound, CustomerNotFound:
		return apperr.ErrNotFound
	case InsufficientStock:
		return apperr.ErrInsufficientStock
	default:
		return apperr.ErrAmbiguousUnit
	}
}

func Block(r Request) error { return &Blocked{Request: r} }

// FromError extracts the request carried by a Blocked error.
func FromError(err error) (Request, bool) {
	var b *Blocked
	if errors.As(err, &b) {
		return b.Request, true
	}
	return Request{}, false
}

// Requests collects the requests of every Blocked error in err, including
// errors combined with errors.Join.
func Requests(err error) []Request {
	if err == nil {
		return nil
	}
	if b, ok := err.(*Blocked); ok {
		return []Request{b.Request}
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		var out []Request
		for _, e := range u.Unwrap() {
			out = append(out, Requests(e)...)
		}
		return out
	case interface{ Unwrap() error }:
		return Requests(u.Unwrap())
	}
	return nil
}

// IsBlocked reports whether err only asks for more information.
func IsBlocked(err error) bool {
	return len(Requests(err)) > 0
}

func BaseUnitRequired(product, seenUnit string) Request {
	prompt := fmt.Sprintf("What's the smallest unit you use to track and sell %s? (e.g. 'piece', 'bottle', 'kg', 'pack')", product)
	if seenUnit != "" {
		prompt = fmt.Sprintf("I see you're using %s as a unit. %s", seenUnit, prompt)
	}
	return Request{
		Type:        BaseUnitDefinitionRequired,
		ProductName: product,
		Prompt:      prompt,
		DataNeeded:  models.ClarificationData{ValueType: ValueUnit},
	}
}

func ConversionRequired(product, unit, baseUnit string, data models.ClarificationData) Request {
	data.UnitName = unit
	data.TargetUnit = baseUnit
	if data.ValueType == "" {
		data.ValueType = ValueQuantity
	}
	return Request{
		Type:        UnitConversionRequired,
		ProductName: product,
		Prompt:      fmt.Sprintf("How many %s of %s are in one %s?", baseUnit, product, unit),
		DataNeeded:  data,
	}
}

func StockDeferred(product string, qty float64, unit string) Request {
	return Request{
		Type:        StockUpdateDeferred,
		ProductName: product,
		Prompt: fmt.Sprintf("I received your request to add %s %s of %s, but I first need to know its smallest tracking unit.",
			Number(qty), unit, product),
		DataNeeded: models.ClarificationData{
			ValueType:        ValueQuantity,
			OriginalQuantity: &qty,
			OriginalUnit:     unit,
		},
	}
}

func SellingPriceDeferred(product string, price float64, unit string) Request {
	return Request{
		Type:        SellingPriceRequired,
		ProductName: product,
		Prompt: fmt.Sprintf("I received your price of %s per %s for %s, but I first need to know its smallest tracking unit.",
			Number(price), unit, product),
		DataNeeded: models.ClarificationData{
			ValueType:         ValuePrice,
			OriginalPrice:     &price,
			OriginalPriceUnit: unit,
		},
	}
}

func SellingPriceMissing(product string) Request {
	return Request{
		Type:        SellingPriceRequired,
		ProductName: product,
		Prompt:      fmt.Sprintf("The price for '%s' was not specified and no default price is set.", product),
		DataNeeded:  models.ClarificationData{ValueType: ValuePrice},
	}
}

func PurchasePriceDeferred(product string, price float64, unit string) Request {
	return Request{
		Type:        PurchasePriceRequired,
		ProductName: product,
		Prompt: fmt.Sprintf("I received a cost price of %s per %s for %s, but I first need to know its smallest tracking unit.",
			Number(price), unit, product),
		DataNeeded: models.ClarificationData{
			ValueType:         ValuePrice,
			OriginalPrice:     &price,
			OriginalPriceUnit: unit,
		},
	}
}

func ProductMissing(name string) Request {
	return Request{
		Type:        ProductNotFound,
		ProductName: name,
		Prompt:      fmt.Sprintf("I couldn't find the product '%s' in your inventory.", name),
		DataNeeded:  models.ClarificationData{ValueType: ValueEntity},
	}
}

func CustomerMissing(name string) Request {
	return Request{
		Type:         CustomerNotFound,
		CustomerName: name,
		Prompt:       fmt.Sprintf("I couldn't find a customer named '%s'. Please add them first or check the name for typos.", name),
		DataNeeded:   models.ClarificationData{ValueType: ValueEntity},
	}
}

func StockShort(product string, requested, available float64, unit string) Request {
	if unit == "" {
		unit = "unit"
	}
	return Request{
		Type:        InsufficientStock,
		ProductName: product,
		Prompt: fmt.Sprintf("You can't sell %s %s(s) of %s because you only have %s in stock.",
			Number(requested), unit, product, reply.Quantity(available, unit)),
		DataNeeded: models.ClarificationData{
			ValueType:         ValueQuantity,
			OriginalQuantity:  &requested,
			OriginalUnit:      unit,
			AvailableQuantity: &available,
		},
	}
}

// Number formats a quantity or amount without trailing zeros.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
