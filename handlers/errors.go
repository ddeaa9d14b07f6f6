package handlers

import (
	"errors"
	"net/http"

	"tienda-backend/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps engine failures onto transport responses. The
// typed errors must be matched before the sentinel checks because
// StaleCartItemError unwraps to the sentinel that caused it.
func respondServiceError(c *gin.Context, err error) {
	var stale *services.StaleCartItemError
	var transition *services.InvalidTransitionError
	var dependents *services.HasDependentsError

	switch {
	case errors.As(err, &stale):
		reason := "not_found"
		switch {
		case errors.Is(stale.Reason, services.ErrInactive):
			reason = "inactive"
		case errors.Is(stale.Reason, services.ErrInsufficientStock):
			reason = "insufficient_stock"
		}
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Cart item is no longer available",
			"product_id": stale.ProductID,
			"reason":     reason,
		})
	case errors.As(err, &transition):
		c.JSON(http.StatusBadRequest, gin.H{"error": transition.Error()})
	case errors.As(err, &dependents):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           dependents.Error(),
			"dependent_count": dependents.Count,
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product is not available"})
	case errors.Is(err, services.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock"})
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
	case errors.Is(err, services.ErrReferencedByOrders):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete a product referenced by existing orders"})
	case errors.Is(err, services.ErrUnsupportedOperation):
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Operation not supported"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
