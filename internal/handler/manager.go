package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isahbella007/whatsapp-first-erp/internal/assistant"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
)

type ClarificationLister interface {
	ListClarifications(ctx context.Context, merchantID, status string) ([]models.Clarification, error)
}

type CustomerLister interface {
	ListCustomers(ctx context.Context, merchantID string, ids ...uint) ([]models.Customer, error)
}

// ManagerHandler serves the merchant's open questions and customer book.
type ManagerHandler struct {
	Assistant      *assistant.Assistant
	Clarifications ClarificationLister
	Customers      CustomerLister
}

func (h *ManagerHandler) ListClarifications(c *gin.Context) {
	status := c.DefaultQuery("status", models.ClarificationPending)
	if status == "all" {
		status = ""
	}
	list, err := h.Clarifications.ListClarifications(c.Request.Context(), c.Param("merchant"), status)
	if err != nil {
		fail(c, err, "Failed to fetch clarifications")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ManagerHandler) ResolveClarification(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var ans assistant.Answer
	if err := c.ShouldBindJSON(&ans); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reply, err := h.Assistant.ResolveClarification(c.Request.Context(), c.Param("merchant"), id, ans)
	if err != nil {
		fail(c, err, "Failed to resolve clarification")
		return
	}
	status := http.StatusOK
	if !reply.Resolved {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, reply)
}

func (h *ManagerHandler) CancelClarification(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Assistant.CancelClarification(c.Request.Context(), c.Param("merchant"), id); err != nil {
		fail(c, err, "Failed to cancel clarification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Clarification cancelled"})
}

func (h *ManagerHandler) GetCustomers(c *gin.Context) {
	customers, err := h.Customers.ListCustomers(c.Request.Context(), c.Param("merchant"))
	if err != nil {
		fail(c, err, "Failed to fetch customers")
		return
	}
	c.JSON(http.StatusOK, customers)
}
