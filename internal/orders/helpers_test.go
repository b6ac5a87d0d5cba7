package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/minimart-backend/internal/cart"
	"github.com/angelmondragon/minimart-backend/internal/items"
	"github.com/angelmondragon/minimart-backend/internal/sellers"
	"github.com/angelmondragon/minimart-backend/pkg/auth"
	"github.com/angelmondragon/minimart-backend/pkg/config"
	"github.com/angelmondragon/minimart-backend/pkg/db"
	"github.com/angelmondragon/minimart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	"github.com/angelmondragon/minimart-backend/pkg/metrics"
	"github.com/angelmondragon/minimart-backend/pkg/outbox"
	"github.com/angelmondragon/minimart-backend/pkg/security"
)

type harness struct {
	svc    Service
	client *db.Client
	reg    *prometheus.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dbtest.Open(t)
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(client.DB()),
		Tx:        client,
		Outbox:    outbox.NewService(outbox.NewRepository(client.DB()), nil),
		Inventory: items.NewInventory(items.NewRepository(client.DB())),
		Carts:     cart.NewRepository(client.DB()),
		Sellers:   sellers.NewRepository(client.DB()),
		Hasher: security.NewHasher(config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		}),
		Metrics: metrics.NewOrderMetrics(reg),
	})
	require.NoError(t, err)
	return &harness{svc: svc, client: client, reg: reg}
}

func (h *harness) buyer(t *testing.T) auth.Actor {
	t.Helper()
	user := dbtest.SeedUser(t, h.client, enums.UserRoleBuyer)
	return auth.Actor{UserID: user.ID, Role: user.Role}
}

func (h *harness) admin(t *testing.T) auth.Actor {
	t.Helper()
	user := dbtest.SeedUser(t, h.client, enums.UserRoleAdmin)
	return auth.Actor{UserID: user.ID, Role: user.Role}
}

func (h *harness) sellerWithItem(t *testing.T, price int64, stock int, options ...models.ItemOption) (auth.Actor, *models.Item) {
	t.Helper()
	user, seller := dbtest.SeedApprovedSeller(t, h.client)
	item := dbtest.SeedItem(t, h.client, seller.ID, price, stock, options...)
	return auth.Actor{UserID: user.ID, Role: user.Role}, item
}

func (h *harness) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.client.DB().Model(model).Count(&n).Error)
	return n
}

func (h *harness) events(t *testing.T, eventType enums.OutboxEventType) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, h.client.DB().Where("event_type = ?", eventType).Find(&rows).Error)
	return rows
}

func (h *harness) addToCart(t *testing.T, userID, itemID uuid.UUID, count int) {
	t.Helper()
	repo := cart.NewRepository(h.client.DB())
	c, err := repo.FindOrCreateCart(context.Background(), userID)
	require.NoError(t, err)
	require.NoError(t, repo.CreateItem(context.Background(), &models.CartItem{
		CartID: c.ID,
		UserID: userID,
		ItemID: itemID,
		Count:  count,
	}))
}

func (h *harness) counter(t *testing.T, name string) float64 {
	t.Helper()
	mfs, err := h.reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func line(itemID uuid.UUID, count int) LineInput {
	return LineInput{ItemID: itemID, Count: count}
}
