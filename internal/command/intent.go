package command

import (
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/sale"
	"github.com/isahbella007/whatsapp-first-erp/internal/units"
)

const (
	AddProduct     = "add_product"
	UpdateProduct  = "update_product"
	DeleteProduct  = "delete_product"
	AddCustomer    = "add_customer"
	DeleteCustomer = "delete_customer"
	RecordSale     = "record_sale"
	GetCustomer    = "get_customer"
	CheckStock     = "check_stock"
)

// Priority is the order intents of one message run in, whatever order the
// parser returned them in. Writes come before reads so a stock view reflects
// the products added in the same message.
var Priority = []string{
	AddProduct,
	UpdateProduct,
	DeleteProduct,
	AddCustomer,
	DeleteCustomer,
	RecordSale,
	GetCustomer,
	CheckStock,
}

// Intent is one classified sub-command as produced by the parser.
type Intent struct {
	Name   string         `json:"intent" mapstructure:"intent"`
	Params map[string]any `json:"params" mapstructure:"params"`
}

func rank(name string) int {
	for i, n := range Priority {
		if n == name {
			return i
		}
	}
	return len(Priority)
}

// Order sorts intents by Priority. Intents with the same name keep their
// relative order and unknown intents go last.
func Order(intents []Intent) []Intent {
	out := make([]Intent, len(intents))
	copy(out, intents)
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i].Name) < rank(out[j].Name) })
	return out
}

// Params is the typed form of an intent's parameters.
type Params interface {
	Intent() string
}

type AddProductParams struct {
	Name          string            `mapstructure:"name"`
	Category      string            `mapstructure:"category"`
	Quantity      *float64          `mapstructure:"quantity"`
	QuantityUnit  string            `mapstructure:"quantityUnit"`
	Price         *float64          `mapstructure:"price"`
	PriceUnit     string            `mapstructure:"priceUnit"`
	CostPrice     *float64          `mapstructure:"costPrice"`
	CostPriceUnit string            `mapstructure:"costPriceUnit"`
	BaseUnit      string            `mapstructure:"baseUnit"`
	Conversion    *units.Conversion `mapstructure:"conversion"`
	ReorderLevel  *float64          `mapstructure:"reorderLevel"`
}

func (*AddProductParams) Intent() string { return AddProduct }

type UpdateProductParams struct {
	AddProductParams `mapstructure:",squash"`
	// Mode is "set" to replace the stock quantity, anything else adds to it.
	Mode string `mapstructure:"updateType"`
}

func (*UpdateProductParams) Intent() string { return UpdateProduct }

type DeleteProductParams struct {
	Names []string `mapstructure:"names"`
}

func (*DeleteProductParams) Intent() string { return DeleteProduct }

type AddCustomerParams struct {
	Name    string   `mapstructure:"name"`
	Phone   string   `mapstructure:"phone"`
	Email   string   `mapstructure:"email"`
	Address string   `mapstructure:"address"`
	Tags    []string `mapstructure:"tags"`
}

func (*AddCustomerParams) Intent() string { return AddCustomer }

type DeleteCustomerParams struct {
	Name string `mapstructure:"name"`
}

func (*DeleteCustomerParams) Intent() string { return DeleteCustomer }

type RecordSaleParams struct {
	CustomerNames []string    `mapstructure:"customerNames"`
	Items         []sale.Item `mapstructure:"items"`
	TotalAmount   *float64    `mapstructure:"totalAmount"`
	AmountPaid    *float64    `mapstructure:"amountPaid"`
	Notes         string      `mapstructure:"notes"`
}

func (*RecordSaleParams) Intent() string { return RecordSale }

type GetCustomerParams struct {
	View  string   `mapstructure:"viewType"`
	Name  string   `mapstructure:"name"`
	Names []string `mapstructure:"searchNames"`
}

func (*GetCustomerParams) Intent() string { return GetCustomer }

type CheckStockParams struct {
	View     string `mapstructure:"type"`
	Query    string `mapstructure:"query"`
	Category string `mapstructure:"category"`
}

func (*CheckStockParams) Intent() string { return CheckStock }

func newParams(intent string) Params {
	switch intent {
	case AddProduct:
		return &AddProductParams{}
	case UpdateProduct:
		return &UpdateProductParams{}
	case DeleteProduct:
		return &DeleteProductParams{}
	case AddCustomer:
		return &AddCustomerParams{}
	case DeleteCustomer:
		return &DeleteCustomerParams{}
	case RecordSale:
		return &RecordSaleParams{}
	case GetCustomer:
		return &GetCustomerParams{}
	case CheckStock:
		return &CheckStockParams{}
	}
	return nil
}

var productAliases = map[string]string{
	"productName":                  "name",
	"qty":                          "quantity",
	"initialQuantity":              "quantity",
	"initialQuantityUnitOfMeasure": "quantityUnit",
	"quantityUnitOfMeasure":        "quantityUnit",
	"priceUnitOfMeasure":           "priceUnit",
	"costPriceUnitOfMeasure":       "costPriceUnit",
	"purchasePrice":                "costPrice",
	"conversionFactorProvided":     "conversion",
	"baseUnitOfMeasure":            "baseUnit",
}

// aliases maps the parameter names parsers are known to emit onto the
// canonical names above, per intent. "item" applies to each sale item.
var aliases = map[string]map[string]string{
	AddProduct:    productAliases,
	UpdateProduct: merge(productAliases, map[string]string{"mode": "updateType"}),
	DeleteProduct: {
		"name":         "names",
		"productName":  "names",
		"products":     "names",
		"productNames": "names",
	},
	AddCustomer:    {"customerName": "name"},
	DeleteCustomer: {"customerName": "name"},
	GetCustomer:    {"customerName": "name", "searchTerm": "searchNames"},
	CheckStock:     {"viewType": "type", "productName": "query", "name": "query"},
	RecordSale: {
		"customerName": "customerNames",
		"customers":    "customerNames",
		"products":     "items",
		"totalValue":   "totalAmount",
		"total":        "totalAmount",
		"paid":         "amountPaid",
	},
	"item": {
		"name":          "productName",
		"product":       "productName",
		"qty":           "quantity",
		"price":         "pricePerUnit",
		"unitOfMeasure": "unit",
	},
}

func merge(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Canonical rewrites aliased keys of params for intent. Canonical keys
// already present win over aliases.
func Canonical(intent string, params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	for from, to := range aliases[intent] {
		v, ok := out[from]
		if !ok {
			continue
		}
		delete(out, from)
		if _, taken := out[to]; !taken {
			out[to] = v
		}
	}
	if intent == RecordSale {
		if items, ok := out["items"].([]any); ok {
			canon := make([]any, len(items))
			for i, it := range items {
				if m, ok := it.(map[string]any); ok {
					canon[i] = Canonical("item", m)
				} else {
					canon[i] = it
				}
			}
			out["items"] = canon
		}
	}
	return out
}

// Decode converts the loose parameters of in into its typed variant.
func Decode(in Intent) (Params, error) {
	target := newParams(in.Name)
	if target == nil {
		return nil, apperr.UnknownIntent(in.Name)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		MatchName:        strings.EqualFold,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(Canonical(in.Name, in.Params)); err != nil {
		return nil, apperr.Validation("I couldn't understand the details of your %s request.", strings.ReplaceAll(in.Name, "_", " "))
	}
	return target, nil
}
