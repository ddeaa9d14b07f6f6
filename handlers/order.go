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

type OrderHandler struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

// CreateOrder converts the caller's cart into an order.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ShippingAddress string `json:"shipping_address" binding:"required,min=5"`
		ContactPhone    string `json:"contact_phone" binding:"required,min=7,max=20"`
		Notes           string `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	order, err := h.Orders.PlaceOrder(userID, services.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		ContactPhone:    req.ContactPhone,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrders returns the caller's orders, or every order for admins.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := h.DB.Preload("Items").Preload("Items.Product").Order("created_at DESC")
	if role, _ := c.Get("user_role"); role != "admin" {
		query = query.Where("user_id = ?", userID)
	} else if filter := c.Query("status"); filter != "" {
		query = query.Where("status = ?", filter)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	query := h.DB.Preload("Items").Preload("Items.Product")
	if role, _ := c.Get("user_role"); role != "admin" {
		query = query.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus advances an order along the fulfillment chain. Admin
// only; skipping states is rejected by the transition table.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	target := models.OrderStatus(req.Status)
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	order, err := h.Orders.Advance(id, target)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelOrder cancels one of the caller's orders (admins can cancel any
// order). Cancelling returns the order's stock to the catalog.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	// Ownership check first so a non-admin probing foreign order IDs gets
	// the same 404 as a missing order.
	if role, _ := c.Get("user_role"); role != "admin" {
		var order models.Order
		if err := h.DB.Where("user_id = ?", userID).First(&order, "id = ?", id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
	}

	order, err := h.Orders.Cancel(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// DeleteOrder always refuses: orders are history, cancel instead.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	respondServiceError(c, h.Orders.Delete(id))
}
