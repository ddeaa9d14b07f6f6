package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is the root of the catalog hierarchy. Categories are never
// hard-deleted while they have children; they are deactivated instead,
// which cascades to every subcategory and product underneath.
type Category struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name          string        `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description   string        `gorm:"type:text" json:"description"`
	Active        bool          `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID" json:"subcategories,omitempty"`
	Products      []Product     `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
