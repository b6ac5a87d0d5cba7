package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/pkg/db"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// SeedUser inserts an active local user with the given role.
func SeedUser(t testing.TB, client *db.Client, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "unused",
		Name:         "Test User",
		Provider:     enums.AuthProviderLocal,
		Role:         role,
		IsActive:     true,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedSeller inserts a seller owned by userID.
func SeedSeller(t testing.TB, client *db.Client, userID uuid.UUID, status enums.SellerStatus) *models.Seller {
	t.Helper()
	seller := &models.Seller{
		UserID: userID,
		Name:   "shop-" + uuid.NewString()[:8],
		Status: status,
	}
	if err := client.DB().Create(seller).Error; err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	return seller
}

// SeedApprovedSeller creates a SELLER user together with its approved seller.
func SeedApprovedSeller(t testing.TB, client *db.Client) (*models.User, *models.Seller) {
	t.Helper()
	user := SeedUser(t, client, enums.UserRoleSeller)
	return user, SeedSeller(t, client, user.ID, enums.SellerStatusApproved)
}

// SeedItem inserts a FOR_SALE item (SOLD_OUT when stock is zero) with options.
func SeedItem(t testing.TB, client *db.Client, sellerID uuid.UUID, price int64, stock int, options ...models.ItemOption) *models.Item {
	t.Helper()
	status := enums.ItemStatusForSale
	if stock == 0 {
		status = enums.ItemStatusSoldOut
	}
	item := &models.Item{
		SellerID:    sellerID,
		Name:        "item-" + uuid.NewString()[:8],
		Description: "seeded",
		Price:       price,
		StockNumber: stock,
		Status:      status,
		Options:     options,
	}
	if err := client.DB().Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

// Stock reads the current stock of an item, soft-deleted or not.
func Stock(t testing.TB, client *db.Client, itemID uuid.UUID) (int, enums.ItemStatus) {
	t.Helper()
	var item models.Item
	if err := client.DB().Unscoped().Where("id = ?", itemID).First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	return item.StockNumber, item.Status
}
