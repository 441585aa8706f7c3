package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	paymentsvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/payment"
	usersvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/user"
)

// writeError maps a service error onto the API status taxonomy. Every error
// body has the shape {"error": "..."}; unknown errors collapse to a plain 500
// so internals never leak to the client.
func writeError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	var stockErr *domain.StockError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrVerificationFailed),
		errors.Is(err, paymentsvc.ErrGatewayDisabled),
		errors.Is(err, paymentsvc.ErrPaymentFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usersvc.ErrInvalidCredentials),
		errors.Is(err, usersvc.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"error": stockErr.Error()})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCancellationNotAllowed),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, paymentsvc.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
