package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subcategory belongs to a Category. Its name is unique within the parent
// category only, so two categories may both have an "Imports" subcategory.
type Subcategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:idx_subcategories_name_category" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_subcategories_name_category" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Products    []Product `gorm:"foreignKey:SubcategoryID" json:"products,omitempty"`
}

func (s *Subcategory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
