package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/minimart-backend/api/responses"
	"github.com/angelmondragon/minimart-backend/api/validators"
	"github.com/angelmondragon/minimart-backend/internal/statistics"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
)

// parseRange reads period, from and to. Missing values are filled in by the
// statistics service.
func parseRange(r *http.Request) (statistics.Range, error) {
	var rng statistics.Range
	if raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("period"))); raw != "" {
		period, err := enums.ParseStatsPeriod(raw)
		if err != nil {
			return rng, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid period").WithDetails(map[string]any{"field": "period"})
		}
		rng.Period = period
	}
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return rng, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return rng, err
	}
	rng.From = from
	rng.To = to
	return rng, nil
}

func SellerSalesStatistics(svc statistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("statistics"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rng, err := parseRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trend, err := svc.SalesTrend(r.Context(), userID, rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trend)
	}
}

func SellerFollowerStatistics(svc statistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("statistics"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rng, err := parseRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trend, err := svc.FollowerTrend(r.Context(), userID, rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trend)
	}
}

// AdminUserStatistics returns user counts by role.
func AdminUserStatistics(svc statistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("statistics"))
			return
		}
		summary, err := svc.UserSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func AdminSignupStatistics(svc statistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("statistics"))
			return
		}
		rng, err := parseRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trend, err := svc.SignupTrend(r.Context(), rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trend)
	}
}
