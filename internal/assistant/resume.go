package assistant

import (
	"strconv"
	"strings"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/command"
	"github.com/isahbella007/whatsapp-first-erp/internal/match"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
)

// Answer is the merchant's reply to a clarification. Value is read according
// to the clarification type; Params are merged over the stored parameters.
type Answer struct {
	Value  string         `json:"value"`
	Params map[string]any `json:"params"`
}

// answersBaseUnit reports whether c is settled by naming the product's base
// unit.
func answersBaseUnit(c models.Clarification) bool {
	switch clarify.Type(c.Type) {
	case clarify.BaseUnitDefinitionRequired, clarify.StockUpdateDeferred:
		return true
	case clarify.SellingPriceRequired, clarify.PurchasePriceRequired:
		return c.DataNeeded.OriginalPrice != nil
	}
	return false
}

// resume builds the intents that retry the operation behind c with the
// answer applied.
func resume(c models.Clarification, a Answer) ([]command.Intent, error) {
	value := strings.TrimSpace(a.Value)
	if value == "" && len(a.Params) == 0 {
		return nil, apperr.Validation("Please provide an answer to: %s", c.Prompt)
	}
	intent := c.DataNeeded.Intent
	if intent == "" {
		if clarify.Type(c.Type) == clarify.CustomerNotFound {
			name := c.CustomerName
			if value != "" {
				name = value
			}
			params := merge(map[string]any{"name": name}, a.Params)
			return []command.Intent{{Name: command.AddCustomer, Params: params}}, nil
		}
		return nil, apperr.Validation("This clarification can no longer be resumed.")
	}
	params := merge(command.Canonical(intent, copyParams(c.DataNeeded.Params)), command.Canonical(intent, a.Params))
	if value == "" {
		return []command.Intent{{Name: intent, Params: params}}, nil
	}

	var fix map[string]any
	switch {
	case answersBaseUnit(c):
		fix = map[string]any{"baseUnit": value}

	case clarify.Type(c.Type) == clarify.UnitConversionRequired:
		n, err := number(c, value)
		if err != nil {
			return nil, err
		}
		fix = map[string]any{"conversion": map[string]any{
			"unit1":         c.DataNeeded.UnitName,
			"unit1Quantity": 1.0,
			"unit2":         c.DataNeeded.TargetUnit,
			"unit2Quantity": n,
		}}

	case clarify.Type(c.Type) == clarify.SellingPriceRequired:
		n, err := number(c, value)
		if err != nil {
			return nil, err
		}
		fix = map[string]any{"price": n, "priceUnit": ""}

	case clarify.Type(c.Type) == clarify.PurchasePriceRequired:
		n, err := number(c, value)
		if err != nil {
			return nil, err
		}
		fix = map[string]any{"costPrice": n, "costPriceUnit": ""}

	case clarify.Type(c.Type) == clarify.CustomerNotFound && intent != command.RecordSale:
		params["name"] = value

	case clarify.Type(c.Type) == clarify.CustomerNotFound:
		if !renameCustomer(params, c.CustomerName, value) {
			return nil, apperr.Validation("I couldn't find '%s' in the original sale.", c.CustomerName)
		}
		if strings.EqualFold(value, strings.TrimSpace(c.CustomerName)) {
			// Repeating the name confirms a new customer.
			return []command.Intent{
				{Name: command.AddCustomer, Params: map[string]any{"name": value}},
				{Name: intent, Params: params},
			}, nil
		}

	case clarify.Type(c.Type) == clarify.ProductNotFound:
		if intent == command.RecordSale {
			item := saleItem(params, c.ProductName)
			if item == nil {
				return nil, apperr.Validation("I couldn't find '%s' in the original sale.", c.ProductName)
			}
			item["productName"] = value
		} else {
			params["name"] = value
		}

	case clarify.Type(c.Type) == clarify.InsufficientStock:
		n, err := number(c, value)
		if err != nil {
			return nil, err
		}
		item := saleItem(params, c.ProductName)
		if item == nil {
			return nil, apperr.Validation("I couldn't find '%s' in the original sale.", c.ProductName)
		}
		// The prompt quoted base units.
		item["quantity"] = n
		item["unit"] = ""
	}

	if fix == nil {
		return []command.Intent{{Name: intent, Params: params}}, nil
	}
	if intent == command.RecordSale {
		// Product details are fixed on the product itself before the sale is
		// retried.
		fix["name"] = c.ProductName
		return []command.Intent{
			{Name: command.UpdateProduct, Params: fix},
			{Name: intent, Params: params},
		}, nil
	}
	return []command.Intent{{Name: intent, Params: merge(params, fix)}}, nil
}

func number(c models.Clarification, value string) (float64, error) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil || n < 0 {
		return 0, apperr.Validation("Please answer with a number: %s", c.Prompt)
	}
	return n, nil
}

// saleItem returns the item of canonical sale params that best matches
// product.
func saleItem(params map[string]any, product string) map[string]any {
	items, _ := params["items"].([]any)
	var best map[string]any
	bestScore := 0.0
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["productName"].(string)
		if score := match.Score(name, product); name != "" && score > bestScore {
			best, bestScore = m, score
		}
	}
	return best
}

// renameCustomer replaces every customer name of canonical sale params equal
// to from with to.
func renameCustomer(params map[string]any, from, to string) bool {
	var names []any
	switch v := params["customerNames"].(type) {
	case string:
		names = []any{v}
	case []string:
		for _, n := range v {
			names = append(names, n)
		}
	case []any:
		names = v
	}
	found := false
	for i, n := range names {
		if s, ok := n.(string); ok && strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(from)) {
			names[i] = to
			found = true
		}
	}
	params["customerNames"] = names
	return found
}

// copyParams deep copies the stored parameters so sale items can be edited.
func copyParams(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch v := v.(type) {
		case map[string]any:
			out[k] = copyParams(v)
		case []any:
			s := make([]any, len(v))
			for i, e := range v {
				if m, ok := e.(map[string]any); ok {
					s[i] = copyParams(m)
				} else {
					s[i] = e
				}
			}
			out[k] = s
		default:
			out[k] = v
		}
	}
	return out
}

func merge(base, over map[string]any) map[string]any {
	if base == nil {
		base = map[string]any{}
	}
	for k, v := range over {
		base[k] = v
	}
	return base
}
