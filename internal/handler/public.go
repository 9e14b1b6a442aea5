package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isahbella007/whatsapp-first-erp/internal/assistant"
	"github.com/isahbella007/whatsapp-first-erp/internal/command"
)

// MessageHandler is the entry point of the chat channel driver.
type MessageHandler struct {
	Assistant *assistant.Assistant
}

type MessageRequest struct {
	From string `json:"from"`
	Text string `json:"text" binding:"required"`
}

func (h *MessageHandler) ReceiveMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.Assistant.HandleMessage(c.Request.Context(), assistant.Message{
		MerchantID: c.Param("merchant"),
		From:       req.From,
		Text:       req.Text,
	})
	if err != nil && reply == nil {
		fail(c, err, "Failed to process message")
		return
	}
	status := http.StatusOK
	if err != nil {
		// Handled, but the reply could not be delivered.
		status = http.StatusAccepted
	}
	c.JSON(status, reply)
}

type CommandRequest struct {
	Text    string           `json:"text"`
	Intents []command.Intent `json:"intents" binding:"required"`
}

// RunCommands runs intents that were parsed elsewhere. The reply is returned
// and not sent to the chat.
func (h *MessageHandler) RunCommands(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Assistant.HandleIntents(c.Request.Context(), c.Param("merchant"), req.Text, req.Intents))
}
