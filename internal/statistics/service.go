package statistics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

// CountPoint is one bucket of a counting series.
type CountPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// SalesPoint is one bucket of a seller's sales series.
type SalesPoint struct {
	Date    string `json:"date"`
	Orders  int64  `json:"orders"`
	Units   int64  `json:"units"`
	Revenue int64  `json:"revenue"`
}

type UserSummary struct {
	Total      int64            `json:"total"`
	ByRole     map[string]int64 `json:"by_role"`
	ByProvider map[string]int64 `json:"by_provider"`
}

type TrendDTO struct {
	Period enums.StatsPeriod `json:"period"`
	From   string            `json:"from"`
	To     string            `json:"to"`
	Points []CountPoint      `json:"points"`
}

type SalesTrendDTO struct {
	Period       enums.StatsPeriod `json:"period"`
	From         string            `json:"from"`
	To           string            `json:"to"`
	Points       []SalesPoint      `json:"points"`
	TotalOrders  int64             `json:"total_orders"`
	TotalUnits   int64             `json:"total_units"`
	TotalRevenue int64             `json:"total_revenue"`
}

type FollowerTrendDTO struct {
	TrendDTO
	TotalFollowers int64 `json:"total_followers"`
}

// Service computes admin and seller dashboards.
type Service interface {
	UserSummary(ctx context.Context) (*UserSummary, error)
	SignupTrend(ctx context.Context, r Range) (*TrendDTO, error)
	SalesTrend(ctx context.Context, userID uuid.UUID, r Range) (*SalesTrendDTO, error)
	FollowerTrend(ctx context.Context, userID uuid.UUID, r Range) (*FollowerTrendDTO, error)
}

type sellerLoader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error)
}

type service struct {
	repo    *Repository
	sellers sellerLoader
	now     func() time.Time
}

func NewService(repo *Repository, sellers sellerLoader) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "statistics repo is required")
	}
	if sellers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller repo is required")
	}
	return &service{repo: repo, sellers: sellers, now: time.Now}, nil
}

func (s *service) UserSummary(ctx context.Context) (*UserSummary, error) {
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count users")
	}
	byRole, err := s.repo.CountUsersBy(ctx, "role")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count users by role")
	}
	byProvider, err := s.repo.CountUsersBy(ctx, "provider")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count users by provider")
	}
	return &UserSummary{
		Total:      total,
		ByRole:     toMap(byRole),
		ByProvider: toMap(byProvider),
	}, nil
}

func (s *service) SignupTrend(ctx context.Context, r Range) (*TrendDTO, error) {
	r, err := r.normalize(s.now())
	if err != nil {
		return nil, err
	}
	times, err := s.repo.SignupTimes(ctx, r.From, r.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: signup times")
	}
	return countSeries(r, times), nil
}

func (s *service) SalesTrend(ctx context.Context, userID uuid.UUID, r Range) (*SalesTrendDTO, error) {
	r, err := r.normalize(s.now())
	if err != nil {
		return nil, err
	}
	seller, err := s.seller(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.SellerSales(ctx, seller.ID, r.From, r.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: seller sales")
	}

	keys := bucketKeys(r)
	points := make(map[time.Time]*SalesPoint, len(keys))
	orders := make(map[time.Time]map[uuid.UUID]struct{}, len(keys))
	out := &SalesTrendDTO{
		Period: r.Period,
		From:   r.From.Format(dateLayout),
		To:     r.To.Format(dateLayout),
		Points: make([]SalesPoint, 0, len(keys)),
	}
	for _, key := range keys {
		points[key] = &SalesPoint{Date: key.Format(dateLayout)}
		orders[key] = map[uuid.UUID]struct{}{}
	}
	seen := map[uuid.UUID]struct{}{}
	for _, row := range rows {
		key := bucketStart(row.CreatedAt, r.Period)
		point, ok := points[key]
		if !ok {
			continue
		}
		point.Units += row.Count
		point.Revenue += row.Count * row.UnitPrice
		orders[key][row.OrderID] = struct{}{}
		seen[row.OrderID] = struct{}{}
		out.TotalUnits += row.Count
		out.TotalRevenue += row.Count * row.UnitPrice
	}
	for _, key := range keys {
		point := points[key]
		point.Orders = int64(len(orders[key]))
		out.Points = append(out.Points, *point)
	}
	out.TotalOrders = int64(len(seen))
	return out, nil
}

func (s *service) FollowerTrend(ctx context.Context, userID uuid.UUID, r Range) (*FollowerTrendDTO, error) {
	r, err := r.normalize(s.now())
	if err != nil {
		return nil, err
	}
	seller, err := s.seller(ctx, userID)
	if err != nil {
		return nil, err
	}
	times, err := s.repo.FollowTimes(ctx, seller.ID, r.From, r.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: follow times")
	}
	total, err := s.repo.CountFollowers(ctx, seller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count followers")
	}
	return &FollowerTrendDTO{TrendDTO: *countSeries(r, times), TotalFollowers: total}, nil
}

func (s *service) seller(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	seller, err := s.sellers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "approved seller required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	if seller.Status != enums.SellerStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "approved seller required")
	}
	return seller, nil
}

func countSeries(r Range, times []time.Time) *TrendDTO {
	keys := bucketKeys(r)
	counts := make(map[time.Time]int64, len(keys))
	for _, t := range times {
		counts[bucketStart(t, r.Period)]++
	}
	out := &TrendDTO{
		Period: r.Period,
		From:   r.From.Format(dateLayout),
		To:     r.To.Format(dateLayout),
		Points: make([]CountPoint, 0, len(keys)),
	}
	for _, key := range keys {
		out.Points = append(out.Points, CountPoint{Date: key.Format(dateLayout), Value: counts[key]})
	}
	return out
}

func toMap(rows []labelCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Label] = row.Count
	}
	return out
}
