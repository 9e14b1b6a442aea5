package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/command"
	"github.com/isahbella007/whatsapp-first-erp/internal/customer"
	"github.com/isahbella007/whatsapp-first-erp/internal/inventory"
	"github.com/isahbella007/whatsapp-first-erp/internal/sale"
)

// SaleObserver is told how every recorded sale ended.
type SaleObserver interface {
	ObserveSale(result string)
}

// Services are the domain services the intent handlers delegate to.
type Services struct {
	Inventory *inventory.Service
	Customers *customer.Service
	Sales     *sale.Engine

	InventoryFormat inventory.Formatter
	CustomerFormat  customer.Formatter
	SaleFormat      sale.Formatter

	Observer SaleObserver
}

// Register binds a handler for every known intent.
func Register(reg *command.Registry, s Services) {
	reg.Register(command.AddProduct, command.HandlerFunc(s.addProduct))
	reg.Register(command.UpdateProduct, command.HandlerFunc(s.updateProduct))
	reg.Register(command.DeleteProduct, command.HandlerFunc(s.deleteProduct))
	reg.Register(command.AddCustomer, command.HandlerFunc(s.addCustomer))
	reg.Register(command.DeleteCustomer, command.HandlerFunc(s.deleteCustomer))
	reg.Register(command.RecordSale, command.HandlerFunc(s.recordSale))
	reg.Register(command.GetCustomer, command.HandlerFunc(s.getCustomer))
	reg.Register(command.CheckStock, command.HandlerFunc(s.checkStock))
}

func productInput(p *command.AddProductParams) inventory.ProductInput {
	return inventory.ProductInput{
		Name:          p.Name,
		Category:      p.Category,
		Quantity:      p.Quantity,
		QuantityUnit:  p.QuantityUnit,
		Price:         p.Price,
		PriceUnit:     p.PriceUnit,
		CostPrice:     p.CostPrice,
		CostPriceUnit: p.CostPriceUnit,
		BaseUnit:      p.BaseUnit,
		Conversion:    p.Conversion,
		ReorderLevel:  p.ReorderLevel,
	}
}

func (s Services) addProduct(ctx context.Context, req command.Request, params command.Params) (command.Result, error) {
	p := params.(*command.AddProductParams)
	out, err := s.Inventory.AddProduct(ctx, req.MerchantID, productInput(p))
	if err != nil {
		return command.Result{}, err
	}
	return command.Reply(command.AddProduct, s.InventoryFormat.Summary(out.Product, out.Created)), nil
}

func (s Services) updateProduct(ctx context.Context, req command.Request, params command.Params) (command.Result, error) {
	p := params.(*command.UpdateProductParams)
	mode := inventory.StockAdd
	if strings.EqualFold(p.Mode, string(inventory.StockSet)) {
		mode = inventory.StockSet
	}
	out, err := s.Inventory.UpdateProduct(ctx, req.MerchantID, productInput(&p.AddProductParams), mode)
	if err != nil {
		return command.Result{}, err
	}
	return command.Reply(command.UpdateProduct, s.InventoryFormat.Summary(out.Product, out.Created)), nil
}

func (s Services) deleteProduct(ctx context.Context, req command.Request, params command.Params) (command.Result, error) {
	p := params.(*command.DeleteProductParams)
	res, err := s.Inventory.DeleteProducts(ctx, req.MerchantID, p.Names)
	if err != nil {
		return command.Result{}, err
	}
	return command.Reply(command.DeleteProduct, s.InventoryFormat.Deleted(res)), nil
}

func (s Services) addCustomer(ctx context.Context, req command.Request, params command.Params) (command.Result, error) {
	p := params.(*command.AddCustomerParams)
	c, err := s.Customers.AddCustomer(ctx, req.MerchantID, customer.Input{
		Name:    p.Name,
		Phone:   p.Phone,
		Email:   p.Email,
		Address: p.Address,
		Tags:    p.Tags,
	})
	if err != nil {
		return command.Result{}, err
	}
	return command.Reply(command.AddCustomer, s.CustomerFormat.Added(c)), nil
}

func (s Services) deleteCustomer(ctx context.Context, req command.Request, params command.Params) (command.Result, error) {
	p := params.(*command.DeleteCustomerParams)
	c, err := s.Customers.DeleteCustomer(ctx, req.MerchantID, p.Name)
	if err != nil {
		return command.Result{}, err
	}
	return command.Reply(command.DeleteCustomer, s.CustomerFormat.Deleted(c)), nil
}

func (s Services) getCustomer(ctx context.Context, req command.Request, params command.Params) (command.Result, error) {
	p := params.(*command.GetCustomerParams)
	r, err := s.Customers.Lookup(ctx, req.MerchantID, customer.Query{
		View:  customer.View(strings.ToLower(p.View)),
		Name:  p.Name,
		Names: p.Names,
	})
	if err != nil {
		return command.Result{}, err
	}
	return command.Reply(command.GetCustomer, s.CustomerFormat.Report(r)), nil
}

func (s Services) checkStock(ctx context.Context, req command.Request, params command.Params) (command.Result, error) {
	p := params.(*command.CheckStockParams)
	r, err := s.Inventory.Stock(ctx, req.MerchantID, inventory.StockQuery{
		View:     inventory.StockView(strings.ToLower(p.View)),
		Query:    p.Query,
		Category: p.Category,
	})
	if err != nil {
		return command.Result{}, err
	}
	return command.Reply(command.CheckStock, s.InventoryFormat.Report(r)), nil
}

// recordSale returns the clarifications of an unrecorded sale as an error.
func (s Services) recordSale(ctx context.Context, req command.Request, params command.Params) (command.Result, error) {
	p := params.(*command.RecordSaleParams)
	out, err := s.Sales.Record(ctx, req.MerchantID, sale.Request{
		CustomerNames: p.CustomerNames,
		Items:         p.Items,
		TotalAmount:   p.TotalAmount,
		AmountPaid:    p.AmountPaid,
		Notes:         p.Notes,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindTransactionAbort {
			s.observe("aborted")
		}
		return command.Result{}, err
	}

	if !out.Committed {
		s.observe("blocked")
		blocks := make([]error, 0, len(out.Clarifications))
		for _, c := range out.Clarifications {
			blocks = append(blocks, clarify.Block(c))
		}
		return command.Result{}, errors.Join(blocks...)
	}
	s.observe("committed")
	return command.Reply(command.RecordSale, s.SaleFormat.Receipt(out.Sale)), nil
}

func (s Services) observe(result string) {
	if s.Observer != nil {
		s.Observer.ObserveSale(result)
	}
}
