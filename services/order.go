package services

import (
	"errors"
	"time"

	"tienda-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService converts carts into immutable orders and drives the order
// status state machine. Checkout and every transition run inside a single
// database transaction; stock adjustments use conditional updates so that
// concurrent checkouts racing on the same product cannot drive stock
// negative.
type OrderService struct {
	DB *gorm.DB
}

// PlaceOrderInput carries the shipping details for a new order.
type PlaceOrderInput struct {
	ShippingAddress string
	ContactPhone    string
	Notes           string
}

// PlaceOrder converts the user's cart into an order. Every line is
// re-validated against live catalog state (existence, active chain,
// stock); any violation aborts the whole operation with StaleCartItemError
// and no order is created. Unit prices are re-snapshotted at order time,
// not taken from the cart's older snapshot. On success the stock of every
// ordered product is decremented and the cart is cleared, all in one
// transaction.
func (s *OrderService) PlaceOrder(userID uuid.UUID, in PlaceOrderInput) (*models.Order, error) {
	var orderID uuid.UUID
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("created_at").Find(&cartItems).Error; err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(cartItems))

		for _, line := range cartItems {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &StaleCartItemError{ProductID: line.ProductID, Reason: ErrNotFound}
				}
				return err
			}

			orderable, err := productOrderable(tx, &product)
			if err != nil {
				return err
			}
			if !orderable {
				return &StaleCartItemError{ProductID: line.ProductID, Reason: ErrInactive}
			}
			if !product.HasStock(line.Quantity) {
				return &StaleCartItemError{ProductID: line.ProductID, Reason: ErrInsufficientStock}
			}

			// Conditional decrement re-checks non-negativity at write time,
			// which closes the window against a concurrent order that drained
			// the stock after our read.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &StaleCartItemError{ProductID: line.ProductID, Reason: ErrInsufficientStock}
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			orderItems = append(orderItems, models.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Subtotal:  subtotal,
			})
		}

		order := models.Order{
			ID:              uuid.New(),
			UserID:          userID,
			Status:          models.OrderStatusPending,
			Total:           total,
			ShippingAddress: in.ShippingAddress,
			ContactPhone:    in.ContactPhone,
			Notes:           in.Notes,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := tx.Omit("Product", "Order").Create(&orderItems).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getWithItems(orderID)
}

// Cancel moves a pending or paid order to cancelled and returns the stock
// its lines consumed. Shipped and delivered orders are past the point of
// cancellation.
func (s *OrderService) Cancel(orderID uuid.UUID) (*models.Order, error) {
	return s.transition(orderID, models.OrderStatusCancelled)
}

// Advance moves an order to targetStatus if the transition table allows
// it; skipping states (e.g. pending straight to delivered) is rejected.
// Advancing into cancelled performs the same stock restitution as Cancel,
// so the restitution invariant holds no matter which entry point is used.
func (s *OrderService) Advance(orderID uuid.UUID, targetStatus models.OrderStatus) (*models.Order, error) {
	return s.transition(orderID, targetStatus)
}

// Delete always fails: orders are immutable history and cancellation is
// the only supported removal path.
func (s *OrderService) Delete(orderID uuid.UUID) error {
	return ErrUnsupportedOperation
}

func (s *OrderService) transition(orderID uuid.UUID, target models.OrderStatus) (*models.Order, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !models.IsValidTransition(order.Status, target) {
			return &InvalidTransitionError{From: order.Status, To: target}
		}

		if target == models.OrderStatusCancelled {
			// Stock restitution: every line returns its quantity before the
			// status flips, inside the same transaction, so partial
			// restitution is never observable.
			var items []models.OrderItem
			if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
				return err
			}
			for _, item := range items {
				if err := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
		}

		order.MarkStatus(target, time.Now())
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return s.getWithItems(orderID)
}

func (s *OrderService) getWithItems(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("Items").Preload("Items.Product").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}
