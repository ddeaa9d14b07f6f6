package services

import (
	"errors"

	"tienda-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService mutates per-user carts. Every mutation is checked against
// live catalog state (stock, active chain); reads are not, so a cart can
// hold lines that have gone stale — checkout re-validates and reports them.
type CartService struct {
	DB *gorm.DB
}

// CartSummary is the computed view of a cart returned alongside its lines.
type CartSummary struct {
	TotalItems    int             `json:"total_items"`
	TotalQuantity int             `json:"total_quantity"`
	CartTotal     decimal.Decimal `json:"cart_total"`
}

// AddItem puts quantity units of a product into the user's cart. If a line
// for the product already exists the quantities merge; the unit price
// snapshot from the first add is kept either way. The combined quantity
// must be covered by current stock.
func (s *CartService) AddItem(userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	var itemID uuid.UUID
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		orderable, err := productOrderable(tx, &product)
		if err != nil {
			return err
		}
		if !orderable {
			return ErrInactive
		}

		var item models.CartItem
		err = tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
		switch {
		case err == nil:
			merged := item.Quantity + quantity
			if !product.HasStock(merged) {
				return ErrInsufficientStock
			}
			if err := tx.Model(&item).Update("quantity", merged).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !product.HasStock(quantity) {
				return ErrInsufficientStock
			}
			item = models.CartItem{
				ID:        uuid.New(),
				UserID:    userID,
				ProductID: productID,
				Quantity:  quantity,
				UnitPrice: product.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}
		itemID = item.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	if err := s.DB.Preload("Product").Preload("Product.Category").Preload("Product.Subcategory").
		First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateQuantity replaces a cart line's quantity. The price snapshot is
// deliberately not refreshed: the cart keeps showing the price from the
// moment the item was added, until checkout re-snapshots it.
func (s *CartService) UpdateQuantity(userID, productID uuid.UUID, newQuantity int) (*models.CartItem, error) {
	var itemID uuid.UUID
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !product.HasStock(newQuantity) {
			return ErrInsufficientStock
		}

		itemID = item.ID
		return tx.Model(&item).Update("quantity", newQuantity).Error
	})
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	if err := s.DB.Preload("Product").First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes the user's line for the product. Removing a product
// that is not in the cart is a no-op.
func (s *CartService) RemoveItem(userID, productID uuid.UUID) error {
	return s.DB.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

// ClearCart deletes every line in the user's cart. Clearing an empty cart
// is a no-op.
func (s *CartService) ClearCart(userID uuid.UUID) error {
	return s.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// GetCart returns the user's lines and computed totals. Stock and active
// state are not re-validated here; checkout is the enforcement point for
// stale lines.
func (s *CartService) GetCart(userID uuid.UUID) ([]models.CartItem, CartSummary, error) {
	var items []models.CartItem
	if err := s.DB.Preload("Product").Preload("Product.Category").Preload("Product.Subcategory").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, CartSummary{}, err
	}

	summary := CartSummary{TotalItems: len(items), CartTotal: decimal.Zero}
	for i := range items {
		summary.TotalQuantity += items[i].Quantity
		summary.CartTotal = summary.CartTotal.Add(items[i].Subtotal())
	}
	return items, summary, nil
}
