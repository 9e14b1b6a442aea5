package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
)

// fail replies with the status matching err. fallback is shown for errors
// that carry no user-facing text.
func fail(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindUnknownIntent:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInsufficientStock, apperr.KindAmbiguousUnit:
		status = http.StatusUnprocessableEntity
	}
	if errors.Is(err, clarify.ErrNotPending) {
		status = http.StatusConflict
	}

	msg := fallback
	var e *apperr.Error
	if errors.As(err, &e) && e.Message != "" {
		msg = e.Message
	} else if status == http.StatusConflict {
		msg = err.Error()
	} else if status == http.StatusNotFound {
		msg = "Record not found"
	}
	c.JSON(status, gin.H{"error": msg})
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
