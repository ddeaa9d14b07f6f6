package handlers

import (
	"log"
	"net/http"
	"strconv"

	"tienda-backend/firebase"
	"tienda-backend/models"
	"tienda-backend/services"
	"tienda-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB      *gorm.DB
	Catalog *services.CatalogService
	Storage firebase.StorageClient
}

// GetProducts lists products with optional filters: category_id,
// subcategory_id and active=true.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var products []models.Product

	query := h.DB.Preload("Category").Preload("Subcategory").Order("name")

	if categoryID := c.Query("category_id"); categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		query = query.Where("category_id = ?", id)
	}
	if subcategoryID := c.Query("subcategory_id"); subcategoryID != "" {
		id, err := uuid.Parse(subcategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory_id"})
			return
		}
		query = query.Where("subcategory_id = ?", id)
	}
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var product models.Product
	if err := h.DB.Preload("Category").Preload("Subcategory").
		First(&product, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct accepts multipart form data so the product image can be
// uploaded in the same request. The subcategory must belong to the given
// category.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	name := c.PostForm("name")
	if len(name) < 2 || len(name) > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must be between 2 and 200 characters"})
		return
	}

	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative decimal"})
		return
	}

	stock, err := strconv.Atoi(c.PostForm("stock"))
	if err != nil || stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be a non-negative integer"})
		return
	}

	categoryID, err := uuid.Parse(c.PostForm("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
		return
	}
	subcategoryID, err := uuid.Parse(c.PostForm("subcategory_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory_id"})
		return
	}

	var subcategory models.Subcategory
	if err := h.DB.First(&subcategory, "id = ?", subcategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subcategory does not exist"})
		return
	}
	if subcategory.CategoryID != categoryID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subcategory does not belong to the given category"})
		return
	}

	imageURL := ""
	if fileHeader, err := c.FormFile("image"); err == nil {
		if err := utils.ValidateFileUpload(fileHeader); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		defer file.Close()

		imageURL, err = h.Storage.UploadProductImage(file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
			return
		}
	}

	product := models.Product{
		ID:            uuid.New(),
		Name:          name,
		Description:   c.PostForm("description"),
		Price:         price,
		Stock:         stock,
		ImageURL:      imageURL,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Active:        true,
	}

	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct accepts multipart form data; every field is optional.
// Replacing the image deletes the previous one after the row update, on a
// best effort basis.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var product models.Product
	if err := h.DB.First(&product, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	updates := map[string]interface{}{}

	if name := c.PostForm("name"); name != "" {
		if len(name) < 2 || len(name) > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must be between 2 and 200 characters"})
			return
		}
		updates["name"] = name
	}
	if description, ok := c.GetPostForm("description"); ok {
		updates["description"] = description
	}
	if priceStr := c.PostForm("price"); priceStr != "" {
		price, err := decimal.NewFromString(priceStr)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative decimal"})
			return
		}
		updates["price"] = price
	}
	if stockStr := c.PostForm("stock"); stockStr != "" {
		stock, err := strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be a non-negative integer"})
			return
		}
		updates["stock"] = stock
	}

	// Moving a product re-checks the category/subcategory pairing.
	newCategoryID := product.CategoryID
	newSubcategoryID := product.SubcategoryID
	if categoryStr := c.PostForm("category_id"); categoryStr != "" {
		newCategoryID, err = uuid.Parse(categoryStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
	}
	if subcategoryStr := c.PostForm("subcategory_id"); subcategoryStr != "" {
		newSubcategoryID, err = uuid.Parse(subcategoryStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory_id"})
			return
		}
	}
	if newCategoryID != product.CategoryID || newSubcategoryID != product.SubcategoryID {
		var subcategory models.Subcategory
		if err := h.DB.First(&subcategory, "id = ?", newSubcategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Subcategory does not exist"})
			return
		}
		if subcategory.CategoryID != newCategoryID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Subcategory does not belong to the given category"})
			return
		}
		updates["category_id"] = newCategoryID
		updates["subcategory_id"] = newSubcategoryID
	}

	oldImageURL := ""
	if fileHeader, err := c.FormFile("image"); err == nil {
		if err := utils.ValidateFileUpload(fileHeader); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		defer file.Close()

		imageURL, err := h.Storage.UploadProductImage(file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
			return
		}
		oldImageURL = product.ImageURL
		updates["image_url"] = imageURL
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&product).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		h.DB.First(&product, "id = ?", id)
	}

	if oldImageURL != "" {
		if objectPath, err := utils.ExtractObjectPath(oldImageURL); err == nil {
			if err := h.Storage.DeleteFile(objectPath); err != nil {
				log.Printf("Warning: failed to delete old image for product %s: %v", id, err)
			}
		}
	}

	c.JSON(http.StatusOK, product)
}

// SetProductActive toggles a single product on or off.
func (h *ProductHandler) SetProductActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Field 'active' is required"})
		return
	}

	if err := h.Catalog.SetProductActive(id, *req.Active); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": id,
		"active":     *req.Active,
	})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.Catalog.DeleteProduct(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
