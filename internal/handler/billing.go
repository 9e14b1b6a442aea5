package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/store"
)

type SaleReader interface {
	ListSales(ctx context.Context, merchantID string, page store.Page) ([]models.Sale, int64, error)
	FindSale(ctx context.Context, merchantID, reference string) (*models.Sale, error)
}

type BillingHandler struct {
	Sales SaleReader
}

func (h *BillingHandler) ListSales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	p := store.Page{Page: page, Limit: limit}.Normalized()

	sales, total, err := h.Sales.ListSales(c.Request.Context(), c.Param("merchant"), p)
	if err != nil {
		fail(c, err, "Failed to fetch sales")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  sales,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	})
}

func (h *BillingHandler) GetSale(c *gin.Context) {
	sale, err := h.Sales.FindSale(c.Request.Context(), c.Param("merchant"), c.Param("reference"))
	if err != nil {
		fail(c, err, "Sale not found")
		return
	}
	c.JSON(http.StatusOK, sale)
}
