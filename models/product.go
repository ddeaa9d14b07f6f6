package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product belongs to both a Category and one of that category's
// Subcategories. Invariant: Subcategory.CategoryID == Product.CategoryID.
//
// A product is orderable only when its whole active chain
// (product AND subcategory AND category) is true.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock         int             `gorm:"not null;default:0" json:"stock"`
	ImageURL      string          `json:"image_url"`
	Active        bool            `gorm:"not null;default:true" json:"active"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Category      *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SubcategoryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"subcategory_id"`
	Subcategory   *Subcategory    `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasStock reports whether the product can cover the requested quantity.
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}
