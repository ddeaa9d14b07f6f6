package services

import (
	"errors"
	"log"

	"tienda-backend/firebase"
	"tienda-backend/models"
	"tienda-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService owns activation state for the category/subcategory/product
// hierarchy and guards hard deletes. Deactivating a node deactivates all of
// its descendants within one transaction; reactivating a node flips only
// that node, so products that were switched off for their own reasons are
// not silently re-exposed.
type CatalogService struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
}

// AffectedCounts reports how many descendant rows a cascade touched.
type AffectedCounts struct {
	Subcategories int64 `json:"subcategories"`
	Products      int64 `json:"products"`
}

// SetCategoryActive flips a category's active flag. Deactivation cascades
// to every subcategory and product under the category; the whole cascade
// commits or rolls back as one unit.
func (s *CatalogService) SetCategoryActive(id uuid.UUID, active bool) (AffectedCounts, error) {
	var counts AffectedCounts
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&category, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&category).Update("active", active).Error; err != nil {
			return err
		}

		if active {
			// Reactivation is manual per node; descendants stay as-is.
			return nil
		}

		res := tx.Model(&models.Subcategory{}).
			Where("category_id = ?", id).
			Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		counts.Subcategories = res.RowsAffected

		res = tx.Model(&models.Product{}).
			Where("category_id = ?", id).
			Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		counts.Products = res.RowsAffected
		return nil
	})
	if err != nil {
		return AffectedCounts{}, err
	}
	return counts, nil
}

// SetSubcategoryActive flips a subcategory's active flag. Deactivation
// cascades to the subcategory's direct products.
func (s *CatalogService) SetSubcategoryActive(id uuid.UUID, active bool) (AffectedCounts, error) {
	var counts AffectedCounts
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var subcategory models.Subcategory
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&subcategory, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&subcategory).Update("active", active).Error; err != nil {
			return err
		}

		if active {
			return nil
		}

		res := tx.Model(&models.Product{}).
			Where("subcategory_id = ?", id).
			Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		counts.Products = res.RowsAffected
		return nil
	})
	if err != nil {
		return AffectedCounts{}, err
	}
	return counts, nil
}

// SetProductActive flips a single product's active flag. Products have no
// descendants, so there is nothing to cascade either way.
func (s *CatalogService) SetProductActive(id uuid.UUID, active bool) error {
	res := s.DB.Model(&models.Product{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CanDeleteCategory reports whether the category has no dependent
// subcategories or products.
func (s *CatalogService) CanDeleteCategory(id uuid.UUID) (bool, int64, error) {
	count, err := s.categoryDependents(s.DB, id)
	if err != nil {
		return false, 0, err
	}
	return count == 0, count, nil
}

// CanDeleteSubcategory reports whether the subcategory has no dependent
// products.
func (s *CatalogService) CanDeleteSubcategory(id uuid.UUID) (bool, int64, error) {
	var count int64
	if err := s.DB.Model(&models.Product{}).Where("subcategory_id = ?", id).Count(&count).Error; err != nil {
		return false, 0, err
	}
	return count == 0, count, nil
}

// CanDeleteProduct reports whether no order line references the product.
func (s *CatalogService) CanDeleteProduct(id uuid.UUID) (bool, int64, error) {
	var count int64
	if err := s.DB.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&count).Error; err != nil {
		return false, 0, err
	}
	return count == 0, count, nil
}

func (s *CatalogService) categoryDependents(tx *gorm.DB, id uuid.UUID) (int64, error) {
	var subcategories, products int64
	if err := tx.Model(&models.Subcategory{}).Where("category_id = ?", id).Count(&subcategories).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
		return 0, err
	}
	return subcategories + products, nil
}

// DeleteCategory hard-deletes a category that has no children. With
// children present it fails with HasDependentsError and the caller should
// deactivate instead.
func (s *CatalogService) DeleteCategory(id uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		count, err := s.categoryDependents(tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &HasDependentsError{Entity: "category", Count: count}
		}

		return tx.Delete(&models.Category{}, "id = ?", id).Error
	})
}

// DeleteSubcategory hard-deletes a subcategory that has no products.
func (s *CatalogService) DeleteSubcategory(id uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var subcategory models.Subcategory
		if err := tx.First(&subcategory, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Product{}).Where("subcategory_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &HasDependentsError{Entity: "subcategory", Count: count}
		}

		return tx.Delete(&models.Subcategory{}, "id = ?", id).Error
	})
}

// DeleteProduct hard-deletes a product unless any order line references it
// (order history is RESTRICT, not CASCADE). Cart lines holding the product
// are removed with it. The stored image is released only after the row
// delete commits; a failed release is logged, never surfaced, because the
// row is already gone.
func (s *CatalogService) DeleteProduct(id uuid.UUID) error {
	var imageURL string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		imageURL = product.ImageURL

		var referencing int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&referencing).Error; err != nil {
			return err
		}
		if referencing > 0 {
			return ErrReferencedByOrders
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	if imageURL != "" && s.Storage != nil {
		objectPath, err := utils.ExtractObjectPath(imageURL)
		if err == nil {
			if err := s.Storage.DeleteFile(objectPath); err != nil {
				log.Printf("Warning: failed to delete image for product %s: %v", id, err)
			}
		}
	}
	return nil
}

// productOrderable checks the product's whole active chain. The product
// must be loaded; its subcategory and category flags are read fresh.
func productOrderable(tx *gorm.DB, product *models.Product) (bool, error) {
	if !product.Active {
		return false, nil
	}

	var subcategory models.Subcategory
	if err := tx.Select("active").First(&subcategory, "id = ?", product.SubcategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if !subcategory.Active {
		return false, nil
	}

	var category models.Category
	if err := tx.Select("active").First(&category, "id = ?", product.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return category.Active, nil
}
