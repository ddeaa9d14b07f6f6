package services

import (
	"errors"
	"testing"

	"tienda-backend/models"

	"github.com/google/uuid"
)

func TestSetCategoryActiveCascadesDeactivation(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	cat := seedCategory(db, "Beverages")
	sub1 := seedSubcategory(db, "Sodas", cat.ID)
	sub2 := seedSubcategory(db, "Juices", cat.ID)
	seedProduct(db, "Cola", cat.ID, sub1.ID, "1.50", 10)
	seedProduct(db, "Orange Juice", cat.ID, sub2.ID, "2.75", 5)

	counts, err := svc.SetCategoryActive(cat.ID, false)
	if err != nil {
		t.Fatalf("SetCategoryActive failed: %v", err)
	}

	if counts.Subcategories != 2 {
		t.Errorf("expected 2 deactivated subcategories, got %d", counts.Subcategories)
	}
	if counts.Products != 2 {
		t.Errorf("expected 2 deactivated products, got %d", counts.Products)
	}

	var activeSubs, activeProds int64
	db.Model(&models.Subcategory{}).Where("category_id = ? AND active = ?", cat.ID, true).Count(&activeSubs)
	db.Model(&models.Product{}).Where("category_id = ? AND active = ?", cat.ID, true).Count(&activeProds)
	if activeSubs != 0 || activeProds != 0 {
		t.Errorf("expected no active descendants, got %d subcategories and %d products", activeSubs, activeProds)
	}
}

func TestSetCategoryActiveDoesNotTouchOtherCategories(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	cat := seedCategory(db, "Beverages")
	sub := seedSubcategory(db, "Sodas", cat.ID)
	seedProduct(db, "Cola", cat.ID, sub.ID, "1.50", 10)

	other := seedCategory(db, "Snacks")
	otherSub := seedSubcategory(db, "Chips", other.ID)
	otherProd := seedProduct(db, "Crisps", other.ID, otherSub.ID, "0.99", 20)

	if _, err := svc.SetCategoryActive(cat.ID, false); err != nil {
		t.Fatalf("SetCategoryActive failed: %v", err)
	}

	var checkSub models.Subcategory
	db.First(&checkSub, "id = ?", otherSub.ID)
	if !checkSub.Active {
		t.Error("subcategory in another category was deactivated")
	}
	var checkProd models.Product
	db.First(&checkProd, "id = ?", otherProd.ID)
	if !checkProd.Active {
		t.Error("product in another category was deactivated")
	}
}

func TestReactivateCategoryLeavesDescendantsOff(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	cat, sub, prod := seedCatalog(db, "1.50", 10)

	if _, err := svc.SetCategoryActive(cat.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	counts, err := svc.SetCategoryActive(cat.ID, true)
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if counts.Subcategories != 0 || counts.Products != 0 {
		t.Errorf("reactivation should not cascade, got counts %+v", counts)
	}

	var checkCat models.Category
	db.First(&checkCat, "id = ?", cat.ID)
	if !checkCat.Active {
		t.Error("category should be active again")
	}

	var checkSub models.Subcategory
	db.First(&checkSub, "id = ?", sub.ID)
	if checkSub.Active {
		t.Error("subcategory should stay inactive after parent reactivation")
	}

	var checkProd models.Product
	db.First(&checkProd, "id = ?", prod.ID)
	if checkProd.Active {
		t.Error("product should stay inactive after parent reactivation")
	}
}

func TestSetSubcategoryActiveCascadesToProducts(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	cat := seedCategory(db, "Beverages")
	sub := seedSubcategory(db, "Sodas", cat.ID)
	seedProduct(db, "Cola", cat.ID, sub.ID, "1.50", 10)
	seedProduct(db, "Lemonade", cat.ID, sub.ID, "1.25", 8)

	otherSub := seedSubcategory(db, "Juices", cat.ID)
	otherProd := seedProduct(db, "Orange Juice", cat.ID, otherSub.ID, "2.75", 5)

	counts, err := svc.SetSubcategoryActive(sub.ID, false)
	if err != nil {
		t.Fatalf("SetSubcategoryActive failed: %v", err)
	}
	if counts.Products != 2 {
		t.Errorf("expected 2 deactivated products, got %d", counts.Products)
	}

	var check models.Product
	db.First(&check, "id = ?", otherProd.ID)
	if !check.Active {
		t.Error("product in sibling subcategory was deactivated")
	}

	var checkCat models.Category
	db.First(&checkCat, "id = ?", cat.ID)
	if !checkCat.Active {
		t.Error("parent category must not be affected by subcategory deactivation")
	}
}

func TestSetProductActiveNotFound(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	err := svc.SetProductActive(uuid.New(), false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetCategoryActiveNotFound(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	_, err := svc.SetCategoryActive(uuid.New(), false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCategoryWithChildrenFails(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	cat, _, _ := seedCatalog(db, "1.50", 10)

	err := svc.DeleteCategory(cat.ID)
	var depErr *HasDependentsError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected HasDependentsError, got %v", err)
	}
	if depErr.Count != 2 {
		t.Errorf("expected 2 dependents (1 subcategory + 1 product), got %d", depErr.Count)
	}

	var count int64
	db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count)
	if count != 1 {
		t.Error("category must survive a refused delete")
	}
}

func TestDeleteEmptyCategorySucceeds(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	cat := seedCategory(db, "Empty")
	if err := svc.DeleteCategory(cat.ID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	var count int64
	db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count)
	if count != 0 {
		t.Error("category should be gone")
	}
}

func TestDeleteSubcategoryWithProductsFails(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	_, sub, _ := seedCatalog(db, "1.50", 10)

	err := svc.DeleteSubcategory(sub.ID)
	var depErr *HasDependentsError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected HasDependentsError, got %v", err)
	}
}

func TestCanDeleteReportsDependentCounts(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}

	cat, sub, _ := seedCatalog(db, "1.50", 10)

	ok, count, err := svc.CanDeleteCategory(cat.ID)
	if err != nil {
		t.Fatalf("CanDeleteCategory failed: %v", err)
	}
	if ok || count != 2 {
		t.Errorf("expected (false, 2), got (%v, %d)", ok, count)
	}

	ok, count, err = svc.CanDeleteSubcategory(sub.ID)
	if err != nil {
		t.Fatalf("CanDeleteSubcategory failed: %v", err)
	}
	if ok || count != 1 {
		t.Errorf("expected (false, 1), got (%v, %d)", ok, count)
	}
}

func TestDeleteProductReferencedByOrderFails(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}
	orders := &OrderService{DB: db}
	cart := &CartService{DB: db}

	user := seedUser(db, "buyer@test.com")
	_, _, prod := seedCatalog(db, "1.50", 10)

	if _, err := cart.AddItem(user.ID, prod.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := orders.PlaceOrder(user.ID, PlaceOrderInput{ShippingAddress: "123 Main St", ContactPhone: "5551234"}); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	err := svc.DeleteProduct(prod.ID)
	if !errors.Is(err, ErrReferencedByOrders) {
		t.Fatalf("expected ErrReferencedByOrders, got %v", err)
	}

	var count int64
	db.Model(&models.Product{}).Where("id = ?", prod.ID).Count(&count)
	if count != 1 {
		t.Error("referenced product must survive a refused delete")
	}
}

func TestDeleteProductRemovesCartLines(t *testing.T) {
	db := freshDB()
	svc := &CatalogService{DB: db}
	cart := &CartService{DB: db}

	user := seedUser(db, "buyer@test.com")
	_, _, prod := seedCatalog(db, "1.50", 10)

	if _, err := cart.AddItem(user.ID, prod.ID, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if err := svc.DeleteProduct(prod.ID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}

	var cartCount, prodCount int64
	db.Model(&models.CartItem{}).Where("product_id = ?", prod.ID).Count(&cartCount)
	db.Model(&models.Product{}).Where("id = ?", prod.ID).Count(&prodCount)
	if cartCount != 0 {
		t.Error("cart lines for the deleted product should be gone")
	}
	if prodCount != 0 {
		t.Error("product should be gone")
	}
}
