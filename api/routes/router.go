package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/minimart-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/minimart-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/minimart-backend/api/controllers/orders"
	"github.com/angelmondragon/minimart-backend/api/middleware"
	"github.com/angelmondragon/minimart-backend/internal/auth"
	"github.com/angelmondragon/minimart-backend/internal/cart"
	"github.com/angelmondragon/minimart-backend/internal/follows"
	"github.com/angelmondragon/minimart-backend/internal/items"
	"github.com/angelmondragon/minimart-backend/internal/orders"
	"github.com/angelmondragon/minimart-backend/internal/qna"
	"github.com/angelmondragon/minimart-backend/internal/reviews"
	"github.com/angelmondragon/minimart-backend/internal/sellers"
	"github.com/angelmondragon/minimart-backend/internal/statistics"
	"github.com/angelmondragon/minimart-backend/internal/users"
	"github.com/angelmondragon/minimart-backend/pkg/auth/session"
	"github.com/angelmondragon/minimart-backend/pkg/config"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
	"github.com/angelmondragon/minimart-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/minimart-backend/pkg/redis"
)

// RedisStore is the Redis surface used by the HTTP middleware.
type RedisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// Params carries everything the router mounts. Nil services produce 500s on
// their routes rather than a panic.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer

	Auth       auth.Service
	Register   auth.RegisterService
	Users      users.Service
	Sellers    sellers.Service
	Follows    follows.Service
	Items      items.Service
	Reviews    reviews.Service
	Cart       cart.Service
	Orders     orders.Service
	Qna        qna.Service
	Statistics statistics.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	resetPolicy := middleware.NewAuthRateLimitPolicy(
		"reset",
		cfg.AuthRateLimit.ResetWindow,
		cfg.AuthRateLimit.ResetIPLimit,
		cfg.AuthRateLimit.ResetEmailLimit,
	)
	// the body carries a phone, not an email, so only the ip window applies
	findPhonePolicy := middleware.NewAuthRateLimitPolicy(
		"find_phone",
		cfg.AuthRateLimit.ResetWindow,
		cfg.AuthRateLimit.ResetIPLimit,
		0,
	)

	requireAuth := middleware.Auth(cfg.JWT, p.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, p.Sessions, logg)
	idempotent := middleware.Idempotency(p.Redis, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": p.DB,
			"redis":    p.Redis,
		}))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Register, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(p.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
			r.With(middleware.AuthRateLimit(resetPolicy, p.Redis, logg)).Post("/password-reset/request", controllers.AuthPasswordResetRequest(p.Auth, logg))
			r.With(middleware.AuthRateLimit(resetPolicy, p.Redis, logg)).Post("/password-reset/confirm", controllers.AuthPasswordResetConfirm(p.Auth, logg))
			r.With(middleware.AuthRateLimit(findPhonePolicy, p.Redis, logg)).Post("/find-by-phone", controllers.AuthFindByPhone(p.Auth, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(optionalAuth, idempotent).Post("/", ordercontrollers.Place(p.Orders, logg))
			r.Post("/guest/lookup", ordercontrollers.GuestLookup(p.Orders, logg))
			r.With(idempotent).Post("/guest/{orderId}/cancel", ordercontrollers.GuestCancel(p.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", ordercontrollers.List(p.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Get(p.Orders, logg))
				r.With(idempotent).Delete("/{orderId}", ordercontrollers.Cancel(p.Orders, logg))
			})
		})

		r.Route("/order/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", cartcontrollers.CartFetch(p.Cart, logg))
			r.Post("/", cartcontrollers.CartAdd(p.Cart, logg))
			r.Patch("/", cartcontrollers.CartChangeQuantity(p.Cart, logg))
			r.Delete("/", cartcontrollers.CartRemove(p.Cart, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemsSearch(p.Items, logg))
			r.Get("/{itemId}", controllers.ItemsGet(p.Items, logg))
			r.Get("/{itemId}/reviews", controllers.ItemReviews(p.Reviews, logg))
			r.With(requireAuth).Post("/{itemId}/reviews", controllers.ItemReviewCreate(p.Reviews, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(requireAuth)
			r.Patch("/{reviewId}", controllers.ReviewUpdate(p.Reviews, logg))
			r.Delete("/{reviewId}", controllers.ReviewDelete(p.Reviews, logg))
		})

		r.Route("/sellers", func(r chi.Router) {
			r.With(requireAuth).Post("/apply", controllers.SellersApply(p.Sellers, logg))
			r.Get("/{sellerId}", controllers.SellersProfile(p.Sellers, logg))
			r.Get("/{sellerId}/items", controllers.SellerItems(p.Items, logg))
			r.With(requireAuth).Post("/{sellerId}/follow", controllers.SellersFollow(p.Follows, logg))
			r.With(requireAuth).Delete("/{sellerId}/follow", controllers.SellersUnfollow(p.Follows, logg))
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.UsersMe(p.Users, logg))
			r.Patch("/", controllers.UsersUpdateMe(p.Users, logg))
			r.Delete("/", controllers.UsersDeleteMe(p.Users, logg))
			r.Put("/password", controllers.UsersChangePassword(p.Users, logg))
			r.Get("/following", controllers.UsersFollowing(p.Follows, logg))
			r.Get("/orders", ordercontrollers.List(p.Orders, logg))
		})

		r.Route("/qna", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", controllers.QnaCreate(p.Qna, logg))
			r.Get("/", controllers.QnaList(p.Qna, logg))
			r.Get("/{postId}", controllers.QnaGet(p.Qna, logg))
			r.Delete("/{postId}", controllers.QnaDelete(p.Qna, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(logg, enums.UserRoleSeller))
			r.Get("/me", controllers.SellerMe(p.Sellers, logg))
			r.Patch("/me", controllers.SellerUpdateMe(p.Sellers, logg))
			r.Post("/items", controllers.SellerCreateItem(p.Items, logg))
			r.Patch("/items/{itemId}", controllers.SellerUpdateItem(p.Items, logg))
			r.Delete("/items/{itemId}", controllers.SellerDeleteItem(p.Items, logg))
			r.Get("/orders", ordercontrollers.SellerList(p.Orders, logg))
			r.Patch("/orders/{orderId}/status", ordercontrollers.UpdateStatus(p.Orders, logg))
			r.Get("/statistics/sales", controllers.SellerSalesStatistics(p.Statistics, logg))
			r.Get("/statistics/followers", controllers.SellerFollowerStatistics(p.Statistics, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Get("/sellers", controllers.AdminListSellers(p.Sellers, logg))
			r.Post("/sellers/{sellerId}/approve", controllers.AdminApproveSeller(p.Sellers, logg))
			r.Post("/sellers/{sellerId}/reject", controllers.AdminRejectSeller(p.Sellers, logg))
			r.Get("/orders", ordercontrollers.AdminList(p.Orders, logg))
			r.Patch("/orders/{orderId}/status", ordercontrollers.UpdateStatus(p.Orders, logg))
			r.Delete("/orders/{orderId}", ordercontrollers.AdminDelete(p.Orders, logg))
			r.Post("/qna/{postId}/answer", controllers.AdminQnaAnswer(p.Qna, logg))
			r.Get("/statistics/users", controllers.AdminUserStatistics(p.Statistics, logg))
			r.Get("/statistics/signups", controllers.AdminSignupStatistics(p.Statistics, logg))
		})
	})

	return r
}
