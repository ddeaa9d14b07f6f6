package handlers

import (
	"net/http"

	"tienda-backend/models"
	"tienda-backend/services"
	"tienda-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubcategoryHandler struct {
	DB      *gorm.DB
	Catalog *services.CatalogService
}

// GetSubcategories lists subcategories, optionally filtered by parent
// category and by active state.
func (h *SubcategoryHandler) GetSubcategories(c *gin.Context) {
	var subcategories []models.Subcategory

	query := h.DB.Preload("Category").Order("name")
	if categoryID := c.Query("category_id"); categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		query = query.Where("category_id = ?", id)
	}
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	if err := query.Find(&subcategories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subcategories"})
		return
	}

	c.JSON(http.StatusOK, subcategories)
}

func (h *SubcategoryHandler) GetSubcategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory ID"})
		return
	}

	var subcategory models.Subcategory
	if err := h.DB.Preload("Category").Preload("Products").
		First(&subcategory, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
		return
	}

	c.JSON(http.StatusOK, subcategory)
}

func (h *SubcategoryHandler) CreateSubcategory(c *gin.Context) {
	var req struct {
		Name        string    `json:"name" binding:"required,min=2,max=100"`
		Description string    `json:"description"`
		CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var category models.Category
	if err := h.DB.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parent category does not exist"})
		return
	}

	var existing models.Subcategory
	if err := h.DB.Where("name = ? AND category_id = ?", req.Name, req.CategoryID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A subcategory with that name already exists in this category"})
		return
	}

	subcategory := models.Subcategory{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Active:      true,
	}

	if err := h.DB.Create(&subcategory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subcategory"})
		return
	}

	c.JSON(http.StatusCreated, subcategory)
}

func (h *SubcategoryHandler) UpdateSubcategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory ID"})
		return
	}

	var subcategory models.Subcategory
	if err := h.DB.First(&subcategory, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
		return
	}

	var req struct {
		Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
		Description *string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		var existing models.Subcategory
		if err := h.DB.Where("name = ? AND category_id = ? AND id <> ?",
			*req.Name, subcategory.CategoryID, id).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "A subcategory with that name already exists in this category"})
			return
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&subcategory).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subcategory"})
			return
		}
		h.DB.First(&subcategory, "id = ?", id)
	}

	c.JSON(http.StatusOK, subcategory)
}

// SetSubcategoryActive toggles a subcategory. Deactivating reports how
// many products were switched off with it.
func (h *SubcategoryHandler) SetSubcategoryActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory ID"})
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Field 'active' is required"})
		return
	}

	counts, err := h.Catalog.SetSubcategoryActive(id, *req.Active)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subcategory_id": id,
		"active":         *req.Active,
		"affected":       counts,
	})
}

func (h *SubcategoryHandler) DeleteSubcategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory ID"})
		return
	}

	if err := h.Catalog.DeleteSubcategory(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subcategory deleted successfully"})
}
