package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart-backend/api/responses"
	"github.com/angelmondragon/minimart-backend/api/validators"
	"github.com/angelmondragon/minimart-backend/internal/items"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
)

type itemOptionRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Price    int64  `json:"price" validate:"gte=0,lte=100000000000"`
	Required bool   `json:"required"`
}

type createItemRequest struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Description string              `json:"description" validate:"max=5000"`
	Price       int64               `json:"price" validate:"gte=0,lte=100000000000"`
	StockNumber int                 `json:"stock_number" validate:"gte=0,lte=1000000000"`
	IsSale      bool                `json:"is_sale"`
	SalePercent decimal.Decimal     `json:"sale_percent"`
	Options     []itemOptionRequest `json:"options" validate:"omitempty,dive"`
}

type updateItemRequest struct {
	Name        *string              `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *int64               `json:"price,omitempty" validate:"omitempty,gte=0,lte=100000000000"`
	StockNumber *int                 `json:"stock_number,omitempty" validate:"omitempty,gte=0,lte=1000000000"`
	Status      *string              `json:"status,omitempty"`
	IsSale      *bool                `json:"is_sale,omitempty"`
	SalePercent *decimal.Decimal     `json:"sale_percent,omitempty"`
	Options     *[]itemOptionRequest `json:"options,omitempty" validate:"omitempty,dive"`
}

func toOptionInputs(reqs []itemOptionRequest) []items.OptionInput {
	out := make([]items.OptionInput, 0, len(reqs))
	for _, o := range reqs {
		out = append(out, items.OptionInput{
			Name:     validators.SanitizeString(o.Name, 100),
			Price:    o.Price,
			Required: o.Required,
		})
	}
	return out
}

func (req updateItemRequest) toInput() (items.UpdateItemInput, error) {
	input := items.UpdateItemInput{
		Name:        validators.SanitizeOptional(req.Name, 200),
		Description: validators.SanitizeOptional(req.Description, 5000),
		Price:       req.Price,
		StockNumber: req.StockNumber,
		IsSale:      req.IsSale,
		SalePercent: req.SalePercent,
	}
	if req.Status != nil {
		status, err := enums.ParseItemStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	if req.Options != nil {
		opts := toOptionInputs(*req.Options)
		input.Options = &opts
	}
	return input, nil
}

func parseSearch(r *http.Request) (items.SearchInput, error) {
	var input items.SearchInput
	q := r.URL.Query()

	sort, ok := items.ParseSortOrder(q.Get("sort"))
	if !ok {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort order").WithDetails(map[string]any{"field": "sort"})
	}
	minPrice, err := validators.ParseQueryInt64Ptr(r, "min_price", 0)
	if err != nil {
		return input, err
	}
	maxPrice, err := validators.ParseQueryInt64Ptr(r, "max_price", 0)
	if err != nil {
		return input, err
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price")
	}
	sellerID, err := validators.ParseQueryUUIDPtr(r, "seller_id")
	if err != nil {
		return input, err
	}
	page, err := validators.ParsePage(r)
	if err != nil {
		return input, err
	}

	input = items.SearchInput{
		Keyword:  validators.SanitizeString(q.Get("keyword"), 100),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		SellerID: sellerID,
		Sort:     sort,
		Page:     page,
	}
	return input, nil
}

// ItemsSearch lists items for sale with keyword, price and seller filters.
func ItemsSearch(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("item"))
			return
		}
		input, err := parseSearch(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SearchItems(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SellerItems lists one seller's catalog. The path id overrides any seller_id query.
func SellerItems(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("item"))
			return
		}
		sellerID, err := validators.PathUUID(r, "sellerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := parseSearch(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.SellerID = &sellerID

		result, err := svc.SearchItems(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ItemsGet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("item"))
			return
		}
		itemID, err := validators.PathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// SellerCreateItem adds an item to the caller's catalog.
func SellerCreateItem(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("item"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createItemRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), userID, items.CreateItemInput{
			Name:        validators.SanitizeString(body.Name, 200),
			Description: validators.SanitizeString(body.Description, 5000),
			Price:       body.Price,
			StockNumber: body.StockNumber,
			IsSale:      body.IsSale,
			SalePercent: body.SalePercent,
			Options:     toOptionInputs(body.Options),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func SellerUpdateItem(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("item"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.PathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateItemRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), userID, itemID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func SellerDeleteItem(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("item"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.PathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
