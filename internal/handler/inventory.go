package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isahbella007/whatsapp-first-erp/internal/inventory"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/store"
)

type ProductLister interface {
	ListProducts(ctx context.Context, merchantID string, f store.ProductFilter) ([]models.Product, error)
}

type InventoryHandler struct {
	Products      ProductLister
	LowStockLevel float64
}

func (h *InventoryHandler) ListProducts(c *gin.Context) {
	products, err := h.Products.ListProducts(c.Request.Context(), c.Param("merchant"), store.ProductFilter{
		Category: c.Query("category"),
	})
	if err != nil {
		fail(c, err, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        products,
		"total_value": inventory.TotalValue(products),
	})
}

func (h *InventoryHandler) GetLowStockAlerts(c *gin.Context) {
	products, err := h.Products.ListProducts(c.Request.Context(), c.Param("merchant"), store.ProductFilter{})
	if err != nil {
		fail(c, err, "Failed to fetch alerts")
		return
	}
	low := []models.Product{}
	for _, p := range products {
		if p.IsLowStock(h.LowStockLevel) {
			low = append(low, p)
		}
	}
	c.JSON(http.StatusOK, low)
}
