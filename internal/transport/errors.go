package transport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainbid "github.com/omarsel/bidworks/internal/domain/bid"
	domaintask "github.com/omarsel/bidworks/internal/domain/task"
	portledger "github.com/omarsel/bidworks/internal/port/ledger"
)

// RespondError maps domain errors to stable HTTP responses. Validation
// failures carry a machine-readable code; infrastructure failures are logged
// and answered with a generic 500 so internals never leak.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaintask.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, portledger.ErrProviderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
	case errors.Is(err, domaintask.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to update this task"})
	case errors.Is(err, domaintask.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_transition"})
	case errors.Is(err, domainbid.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "bid amount must be positive", "code": "invalid_amount"})
	case errors.Is(err, domainbid.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "you have already bid on this task", "code": "duplicate_bid"})
	case errors.Is(err, portledger.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "not enough bid coins to place a bid", "code": "insufficient_balance"})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
