package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/minimart-backend/internal/items"
	"github.com/angelmondragon/minimart-backend/pkg/db"
	"github.com/angelmondragon/minimart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(client.DB()),
		Catalog: items.NewRepository(client.DB()),
	})
	require.NoError(t, err)
	return svc, client
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	svc, client := newTestService(t)
	buyer := dbtest.SeedUser(t, client, enums.UserRoleBuyer)
	_, seller := dbtest.SeedApprovedSeller(t, client)
	item := dbtest.SeedItem(t, client, seller.ID, 1000, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, buyer.ID, LineKey{ItemID: item.ID}, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, buyer.ID, LineKey{ItemID: item.ID}, 3)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	require.Equal(t, 5, cart.Lines[0].Count)
	require.Equal(t, int64(5000), cart.TotalPrice)

	var carts int64
	require.NoError(t, client.DB().Model(&models.Cart{}).Where("user_id = ?", buyer.ID).Count(&carts).Error)
	require.Equal(t, int64(1), carts)
}

func TestAddItemKeepsOptionsApart(t *testing.T) {
	svc, client := newTestService(t)
	buyer := dbtest.SeedUser(t, client, enums.UserRoleBuyer)
	_, seller := dbtest.SeedApprovedSeller(t, client)
	item := dbtest.SeedItem(t, client, seller.ID, 1000, 10,
		models.ItemOption{Name: "Large", Price: 300},
	)
	optionID := item.Options[0].ID
	ctx := context.Background()

	_, err := svc.AddItem(ctx, buyer.ID, LineKey{ItemID: item.ID}, 1)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, buyer.ID, LineKey{ItemID: item.ID, ItemOptionID: &optionID}, 2)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 2)
	require.Equal(t, int64(1000+2*1300), cart.TotalPrice)
	require.Equal(t, 3, cart.TotalCount)
}

func TestAddItemRejectsForeignOptionAndDiscontinued(t *testing.T) {
	svc, client := newTestService(t)
	buyer := dbtest.SeedUser(t, client, enums.UserRoleBuyer)
	_, seller := dbtest.SeedApprovedSeller(t, client)
	item := dbtest.SeedItem(t, client, seller.ID, 1000, 10)
	other := dbtest.SeedItem(t, client, seller.ID, 1000, 10, models.ItemOption{Name: "Blue"})
	foreign := other.Options[0].ID
	ctx := context.Background()

	_, err := svc.AddItem(ctx, buyer.ID, LineKey{ItemID: item.ID, ItemOptionID: &foreign}, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, client.DB().Model(&models.Item{}).Where("id = ?", item.ID).
		Update("status", enums.ItemStatusDiscontinued).Error)
	_, err = svc.AddItem(ctx, buyer.ID, LineKey{ItemID: item.ID}, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.AddItem(ctx, buyer.ID, LineKey{ItemID: uuid.New()}, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.AddItem(ctx, buyer.ID, LineKey{ItemID: other.ID}, 0)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestChangeQuantityAndRemove(t *testing.T) {
	svc, client := newTestService(t)
	buyer := dbtest.SeedUser(t, client, enums.UserRoleBuyer)
	_, seller := dbtest.SeedApprovedSeller(t, client)
	item := dbtest.SeedItem(t, client, seller.ID, 700, 10)
	key := LineKey{ItemID: item.ID}
	ctx := context.Background()

	_, err := svc.ChangeQuantity(ctx, buyer.ID, key, 4)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.AddItem(ctx, buyer.ID, key, 1)
	require.NoError(t, err)
	cart, err := svc.ChangeQuantity(ctx, buyer.ID, key, 4)
	require.NoError(t, err)
	require.Equal(t, 4, cart.Lines[0].Count)
	require.Equal(t, int64(2800), cart.TotalPrice)

	cart, err = svc.RemoveItem(ctx, buyer.ID, key)
	require.NoError(t, err)
	require.Empty(t, cart.Lines)

	_, err = svc.RemoveItem(ctx, buyer.ID, key)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetCartFlagsUnavailableLines(t *testing.T) {
	svc, client := newTestService(t)
	buyer := dbtest.SeedUser(t, client, enums.UserRoleBuyer)
	_, seller := dbtest.SeedApprovedSeller(t, client)
	live := dbtest.SeedItem(t, client, seller.ID, 500, 10)
	removed := dbtest.SeedItem(t, client, seller.ID, 900, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, buyer.ID, LineKey{ItemID: live.ID}, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyer.ID, LineKey{ItemID: removed.ID}, 1)
	require.NoError(t, err)
	require.NoError(t, items.NewRepository(client.DB()).SoftDelete(ctx, removed.ID))

	cart, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	require.Equal(t, int64(500), cart.TotalPrice)
	require.False(t, cart.Lines[1].Available)
}

func TestClearForUser(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	n, err := repo.ClearForUser(ctx, uuid.New())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAddItemCapsLineCount(t *testing.T) {
	svc, client := newTestService(t)
	buyer := dbtest.SeedUser(t, client, enums.UserRoleBuyer)
	_, seller := dbtest.SeedApprovedSeller(t, client)
	item := dbtest.SeedItem(t, client, seller.ID, 1000, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, buyer.ID, LineKey{ItemID: item.ID}, models.MaxLineCount)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyer.ID, LineKey{ItemID: item.ID}, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.ChangeQuantity(ctx, buyer.ID, LineKey{ItemID: item.ID}, models.MaxLineCount+1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	cart, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Equal(t, models.MaxLineCount, cart.Lines[0].Count)
}
