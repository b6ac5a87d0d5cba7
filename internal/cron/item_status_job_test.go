package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/minimart-backend/internal/items"
	"github.com/angelmondragon/minimart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
)

func TestItemStatusJobRepairsDrift(t *testing.T) {
	client := dbtest.Open(t)
	_, seller := dbtest.SeedApprovedSeller(t, client)
	drained := dbtest.SeedItem(t, client, seller.ID, 100, 3)
	restocked := dbtest.SeedItem(t, client, seller.ID, 100, 0)

	require.NoError(t, client.DB().Model(&models.Item{}).Where("id = ?", drained.ID).Update("stock_number", 0).Error)
	require.NoError(t, client.DB().Model(&models.Item{}).Where("id = ?", restocked.ID).Update("stock_number", 4).Error)

	job, err := NewItemStatusJob(logger.New(logger.Options{ServiceName: "test"}), items.NewRepository(client.DB()))
	require.NoError(t, err)
	require.Equal(t, "item-status-reconcile", job.Name())
	require.NoError(t, job.Run(context.Background()))

	_, status := dbtest.Stock(t, client, drained.ID)
	require.Equal(t, enums.ItemStatusSoldOut, status)
	_, status = dbtest.Stock(t, client, restocked.ID)
	require.Equal(t, enums.ItemStatusForSale, status)
}
