package items

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/minimart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

func TestDecrementStockGuards(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	_, seller := dbtest.SeedApprovedSeller(t, client)
	item := dbtest.SeedItem(t, client, seller.ID, 1000, 3)
	ctx := context.Background()

	n, err := repo.DecrementStock(ctx, item.ID, 4)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = repo.DecrementStock(ctx, item.ID, 3)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	flipped, err := repo.MarkSoldOutIfEmpty(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, flipped)
	stock, status := dbtest.Stock(t, client, item.ID)
	require.Zero(t, stock)
	require.Equal(t, enums.ItemStatusSoldOut, status)

	_, err = repo.RestoreStock(ctx, item.ID, 2)
	require.NoError(t, err)
	flipped, err = repo.MarkForSaleIfRestocked(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, flipped)
	stock, status = dbtest.Stock(t, client, item.ID)
	require.Equal(t, 2, stock)
	require.Equal(t, enums.ItemStatusForSale, status)
}

func TestDecrementStockSkipsDiscontinuedAndDeleted(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	_, seller := dbtest.SeedApprovedSeller(t, client)
	ctx := context.Background()

	discontinued := dbtest.SeedItem(t, client, seller.ID, 1000, 5)
	require.NoError(t, client.DB().Model(&models.Item{}).Where("id = ?", discontinued.ID).
		Update("status", enums.ItemStatusDiscontinued).Error)
	n, err := repo.DecrementStock(ctx, discontinued.ID, 1)
	require.NoError(t, err)
	require.Zero(t, n)

	deleted := dbtest.SeedItem(t, client, seller.ID, 1000, 5)
	require.NoError(t, repo.SoftDelete(ctx, deleted.ID))
	n, err = repo.DecrementStock(ctx, deleted.ID, 1)
	require.NoError(t, err)
	require.Zero(t, n)

	found, err := repo.FindByIDUnscoped(ctx, deleted.ID)
	require.NoError(t, err)
	require.Equal(t, 5, found.StockNumber)
}

func TestReconcileStatuses(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	_, seller := dbtest.SeedApprovedSeller(t, client)

	empty := dbtest.SeedItem(t, client, seller.ID, 100, 1)
	stocked := dbtest.SeedItem(t, client, seller.ID, 100, 0)
	require.NoError(t, client.DB().Model(&models.Item{}).Where("id = ?", empty.ID).Update("stock_number", 0).Error)
	require.NoError(t, client.DB().Model(&models.Item{}).Where("id = ?", stocked.ID).Update("stock_number", 7).Error)

	soldOut, restocked, err := repo.ReconcileStatuses(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), soldOut)
	require.Equal(t, int64(1), restocked)

	_, status := dbtest.Stock(t, client, empty.ID)
	require.Equal(t, enums.ItemStatusSoldOut, status)
	_, status = dbtest.Stock(t, client, stocked.ID)
	require.Equal(t, enums.ItemStatusForSale, status)
}
