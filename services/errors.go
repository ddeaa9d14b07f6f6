package services

import (
	"errors"
	"fmt"

	"tienda-backend/models"

	"github.com/google/uuid"
)

// Failure taxonomy shared by the catalog, cart and order engines. Every
// member is recoverable by the caller; handlers translate them into
// transport responses.
var (
	ErrNotFound             = errors.New("record not found")
	ErrInactive             = errors.New("product is not orderable because it or its subcategory or category is inactive")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrReferencedByOrders   = errors.New("product is referenced by existing orders")
	ErrUnsupportedOperation = errors.New("operation is not supported")
)

// StaleCartItemError aborts checkout when a cart line no longer matches
// catalog state: the product vanished, went inactive, or lost stock since
// the line was added. Reason is one of ErrNotFound, ErrInactive or
// ErrInsufficientStock.
type StaleCartItemError struct {
	ProductID uuid.UUID
	Reason    error
}

func (e *StaleCartItemError) Error() string {
	return fmt.Sprintf("cart item for product %s is stale: %v", e.ProductID, e.Reason)
}

func (e *StaleCartItemError) Unwrap() error {
	return e.Reason
}

// InvalidTransitionError is returned when an order status change is not in
// the allowed transition table.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from '%s' to '%s'", e.From, e.To)
}

// HasDependentsError blocks the hard deletion of a catalog node that still
// has children. Callers should deactivate the node instead.
type HasDependentsError struct {
	Entity string
	Count  int64
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("cannot delete %s with %d dependent records; deactivate it instead", e.Entity, e.Count)
}
