package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tienda-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// addToCart is a shortcut used by the order tests to get a cart ready for
// checkout without going through the HTTP cart surface each time.
func addToCart(db *gorm.DB, userID, productID uuid.UUID, quantity int) {
	item := models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	db.First(&item.Product, "id = ?", productID)
	item.UnitPrice = item.Product.Price
	db.Create(&item)
}

func TestCreateOrderFromCart(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	user, token := seedTestUser(db, "buyer@test.com", "customer")
	_, _, prod := seedCatalog(db, "1.50", 10)
	addToCart(db, user.ID, prod.ID, 2)

	w := httptest.NewRecorder()
	req := authRequest("POST", "/api/orders", map[string]string{
		"shipping_address": "123 Main St",
		"contact_phone":    "5551234",
	}, token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["status"] != "pending" {
		t.Errorf("expected pending status, got %v", resp["status"])
	}
	if resp["total"] != "3" && resp["total"] != "3.00" {
		t.Errorf("unexpected total %v", resp["total"])
	}
	if resp["order_number"] == "" {
		t.Error("expected an order number")
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	_, token := seedTestUser(db, "buyer@test.com", "customer")

	w := httptest.NewRecorder()
	req := authRequest("POST", "/api/orders", map[string]string{
		"shipping_address": "123 Main St",
		"contact_phone":    "5551234",
	}, token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCreateOrderMissingShippingAddress(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	user, token := seedTestUser(db, "buyer@test.com", "customer")
	_, _, prod := seedCatalog(db, "1.50", 10)
	addToCart(db, user.ID, prod.ID, 1)

	w := httptest.NewRecorder()
	req := authRequest("POST", "/api/orders", map[string]string{
		"contact_phone": "5551234",
	}, token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCreateOrderStaleCartLineConflict(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	user, token := seedTestUser(db, "buyer@test.com", "customer")
	_, _, prod := seedCatalog(db, "1.50", 10)
	addToCart(db, user.ID, prod.ID, 2)

	// The line goes stale before checkout.
	db.Model(&models.Product{}).Where("id = ?", prod.ID).Update("active", false)

	w := httptest.NewRecorder()
	req := authRequest("POST", "/api/orders", map[string]string{
		"shipping_address": "123 Main St",
		"contact_phone":    "5551234",
	}, token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["reason"] != "inactive" {
		t.Errorf("expected reason inactive, got %v", resp["reason"])
	}
	if resp["product_id"] != prod.ID.String() {
		t.Errorf("expected offending product id, got %v", resp["product_id"])
	}
}

func TestGetOrdersUserSeesOnlyOwn(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	alice, aliceToken := seedTestUser(db, "alice@test.com", "customer")
	bob, bobToken := seedTestUser(db, "bob@test.com", "customer")
	_, adminToken := seedTestUser(db, "admin@test.com", "admin")
	_, _, prod := seedCatalog(db, "1.50", 10)

	for _, u := range []struct {
		id    uuid.UUID
		token string
	}{{alice.ID, aliceToken}, {bob.ID, bobToken}} {
		addToCart(db, u.id, prod.ID, 1)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authRequest("POST", "/api/orders", map[string]string{
			"shipping_address": "123 Main St",
			"contact_phone":    "5551234",
		}, u.token))
		if w.Code != http.StatusCreated {
			t.Fatalf("order failed: %d %s", w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/orders", nil, aliceToken))
	if got := len(parseResponseArray(w)); got != 1 {
		t.Errorf("alice should see 1 order, got %d", got)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/orders", nil, adminToken))
	if got := len(parseResponseArray(w)); got != 2 {
		t.Errorf("admin should see 2 orders, got %d", got)
	}
}

func TestGetOrderForeignOrderHidden(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	alice, aliceToken := seedTestUser(db, "alice@test.com", "customer")
	_, bobToken := seedTestUser(db, "bob@test.com", "customer")
	_, _, prod := seedCatalog(db, "1.50", 10)
	addToCart(db, alice.ID, prod.ID, 1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders", map[string]string{
		"shipping_address": "123 Main St",
		"contact_phone":    "5551234",
	}, aliceToken))
	orderID := parseResponse(w)["id"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/orders/"+orderID, nil, bobToken))
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign order must look like 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/orders/"+orderID, nil, aliceToken))
	if w.Code != http.StatusOK {
		t.Errorf("owner should see the order, got %d", w.Code)
	}
}

func TestUpdateOrderStatusAdvances(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	user, token := seedTestUser(db, "buyer@test.com", "customer")
	_, adminToken := seedTestUser(db, "admin@test.com", "admin")
	_, _, prod := seedCatalog(db, "1.50", 10)
	addToCart(db, user.ID, prod.ID, 1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders", map[string]string{
		"shipping_address": "123 Main St",
		"contact_phone":    "5551234",
	}, token))
	orderID := parseResponse(w)["id"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/orders/"+orderID+"/status",
		map[string]string{"status": "paid"}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["status"] != "paid" {
		t.Errorf("expected paid, got %v", resp["status"])
	}
	if resp["paid_at"] == nil {
		t.Error("expected paid_at stamped")
	}
}

func TestUpdateOrderStatusSkippingRejected(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	user, token := seedTestUser(db, "buyer@test.com", "customer")
	_, adminToken := seedTestUser(db, "admin@test.com", "admin")
	_, _, prod := seedCatalog(db, "1.50", 10)
	addToCart(db, user.ID, prod.ID, 1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders", map[string]string{
		"shipping_address": "123 Main St",
		"contact_phone":    "5551234",
	}, token))
	orderID := parseResponse(w)["id"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/orders/"+orderID+"/status",
		map[string]string{"status": "delivered"}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for skipped states, got %d", w.Code)
	}
}

func TestUpdateOrderStatusUnknownStatus(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	_, adminToken := seedTestUser(db, "admin@test.com", "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/orders/"+uuid.New().String()+"/status",
		map[string]string{"status": "returned"}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", w.Code)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	user, token := seedTestUser(db, "buyer@test.com", "customer")
	_, _, prod := seedCatalog(db, "1.50", 10)
	addToCart(db, user.ID, prod.ID, 4)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders", map[string]string{
		"shipping_address": "123 Main St",
		"contact_phone":    "5551234",
	}, token))
	orderID := parseResponse(w)["id"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+orderID+"/cancel", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["status"] != "cancelled" {
		t.Error("expected cancelled status")
	}

	var check models.Product
	db.First(&check, "id = ?", prod.ID)
	if check.Stock != 10 {
		t.Errorf("expected stock restored to 10, got %d", check.Stock)
	}
}

func TestCancelForeignOrderHidden(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	alice, aliceToken := seedTestUser(db, "alice@test.com", "customer")
	_, bobToken := seedTestUser(db, "bob@test.com", "customer")
	_, _, prod := seedCatalog(db, "1.50", 10)
	addToCart(db, alice.ID, prod.ID, 1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders", map[string]string{
		"shipping_address": "123 Main St",
		"contact_phone":    "5551234",
	}, aliceToken))
	orderID := parseResponse(w)["id"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders/"+orderID+"/cancel", nil, bobToken))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign order, got %d", w.Code)
	}
}

func TestDeleteOrderRefused(t *testing.T) {
	db := freshDB()
	router := setupOrderRouter(db)
	user, token := seedTestUser(db, "buyer@test.com", "customer")
	_, _, prod := seedCatalog(db, "1.50", 10)
	addToCart(db, user.ID, prod.ID, 1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/orders", map[string]string{
		"shipping_address": "123 Main St",
		"contact_phone":    "5551234",
	}, token))
	orderID := parseResponse(w)["id"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/orders/"+orderID, nil, token))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}

	var count int64
	db.Model(&models.Order{}).Count(&count)
	if count != 1 {
		t.Error("order must still exist")
	}
}
