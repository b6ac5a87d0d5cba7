package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/minimart-backend/internal/orders"
	"github.com/angelmondragon/minimart-backend/internal/statistics"
	pkgauth "github.com/angelmondragon/minimart-backend/pkg/auth"
	"github.com/angelmondragon/minimart-backend/pkg/auth/session"
	"github.com/angelmondragon/minimart-backend/pkg/config"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	"github.com/angelmondragon/minimart-backend/pkg/metrics"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type memoryRedis struct {
	mu     sync.Mutex
	values map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return "mm:idempotency:" + scope + ":" + id
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryRedis) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[scope]++
	return m.counts[scope] <= limit, m.counts[scope], nil
}

func (m *memoryRedis) Ping(context.Context) error { return nil }

type allowSessions struct{}

func (allowSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type countingOrders struct {
	orders.Service
	mu     sync.Mutex
	placed int
}

func (c *countingOrders) PlaceOrder(ctx context.Context, actor pkgauth.Actor, input orders.PlaceOrderInput) (*orders.PlaceOrderResult, error) {
	c.mu.Lock()
	c.placed++
	c.mu.Unlock()
	return &orders.PlaceOrderResult{Success: true, Order: orders.OrderRef{ID: uuid.New()}}, nil
}

func (c *countingOrders) ListSellerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderPageDTO, error) {
	return &orders.OrderPageDTO{}, nil
}

type stubStatistics struct {
	statistics.Service
}

func (stubStatistics) UserSummary(context.Context) (*statistics.UserSummary, error) {
	return &statistics.UserSummary{Total: 3}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	cfg.AuthRateLimit = config.AuthRateLimitConfig{
		LoginWindow:     time.Minute,
		LoginIPLimit:    2,
		LoginEmailLimit: 2,
		ResetWindow:     time.Minute,
		ResetIPLimit:    2,
	}
	return cfg
}

func newTestRouter(t *testing.T, store *memoryRedis, ordersSvc orders.Service) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewRouter(Params{
		Config:     testConfig(),
		DB:         stubPinger{},
		Redis:      store,
		Sessions:   allowSessions{},
		Metrics:    metrics.NewHTTPMetrics(reg),
		Gatherer:   reg,
		Orders:     ordersSvc,
		Statistics: stubStatistics{},
	})
}

func bearer(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, newMemoryRedis(), nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		if rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestProtectedRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(t, newMemoryRedis(), nil)

	for _, path := range []string{"/api/v1/users/me", "/api/v1/order/cart", "/api/v1/orders", "/api/v1/qna"} {
		if rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rec.Code)
		}
	}
}

func TestRoleGroups(t *testing.T) {
	router := newTestRouter(t, newMemoryRedis(), &countingOrders{})

	cases := []struct {
		name string
		path string
		role enums.UserRole
		want int
	}{
		{name: "buyer on seller group", path: "/api/v1/seller/orders", role: enums.UserRoleBuyer, want: http.StatusForbidden},
		{name: "seller on seller group", path: "/api/v1/seller/orders", role: enums.UserRoleSeller, want: http.StatusOK},
		{name: "seller on admin group", path: "/api/v1/admin/statistics/users", role: enums.UserRoleSeller, want: http.StatusForbidden},
		{name: "admin on admin group", path: "/api/v1/admin/statistics/users", role: enums.UserRoleAdmin, want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set("Authorization", bearer(t, tc.role))
			if rec := serve(router, req); rec.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestPlaceOrderRequiresIdempotencyKey(t *testing.T) {
	svc := &countingOrders{}
	router := newTestRouter(t, newMemoryRedis(), svc)

	body := `{"items":[{"item_id":"` + uuid.NewString() + `","count":1}],"password":"secret"}`
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.placed != 0 {
		t.Fatal("order should not be placed without a key")
	}
}

func TestPlaceOrderReplaysByKey(t *testing.T) {
	svc := &countingOrders{}
	router := newTestRouter(t, newMemoryRedis(), svc)
	body := `{"items":[{"item_id":"` + uuid.NewString() + `","count":1}],"password":"secret"}`

	token := bearer(t, enums.UserRoleBuyer)
	newReq := func(payload string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(payload))
		req.Header.Set("Idempotency-Key", "checkout-1")
		req.Header.Set("Authorization", token)
		return req
	}

	first := serve(router, newReq(body))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", first.Code, first.Body.String())
	}
	second := serve(router, newReq(body))
	if second.Code != http.StatusCreated || second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatal("replayed body differs")
	}
	if svc.placed != 1 {
		t.Fatalf("expected one placement, got %d", svc.placed)
	}

	changed := `{"items":[{"item_id":"` + uuid.NewString() + `","count":2}],"password":"secret"}`
	if rec := serve(router, newReq(changed)); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key, got %d", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	router := newTestRouter(t, newMemoryRedis(), nil)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
		last = serve(router, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", last.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", last.Header().Get("Retry-After"))
	}
}

func TestFindByPhoneRateLimitedPerIP(t *testing.T) {
	router := newTestRouter(t, newMemoryRedis(), nil)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		// a different phone each time; the window counts the caller's address
		body := fmt.Sprintf(`{"phone":"010-0000-000%d"}`, i)
		last = serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/auth/find-by-phone", strings.NewReader(body)))
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", last.Code)
	}
}

func TestDeleteMeRequiresJWT(t *testing.T) {
	router := newTestRouter(t, newMemoryRedis(), nil)

	if rec := serve(router, httptest.NewRequest(http.MethodDelete, "/api/v1/users/me", nil)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, newMemoryRedis(), nil)
	serve(router, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/health/live"`) {
		t.Fatalf("expected route label in metrics output")
	}
}
