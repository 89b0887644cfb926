package controllers

import (
	"net/http"
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/api/responses"
	"github.com/dmfebriyanto/tokotenan-backend/api/validators"
	"github.com/dmfebriyanto/tokotenan-backend/internal/catalog"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDealRequest is the admin payload to create a discount rule.
type CreateDealRequest struct {
	Title      string          `json:"title" validate:"required"`
	Kind       string          `json:"kind" validate:"required,oneof=percentage fixed_amount flash_sale"`
	Value      decimal.Decimal `json:"value" validate:"required"`
	StartDate  time.Time       `json:"start_date" validate:"required"`
	EndDate    time.Time       `json:"end_date" validate:"required"`
	MaxUses    *int            `json:"max_uses,omitempty"`
	ProductIDs []uuid.UUID     `json:"product_ids,omitempty"`
}

// UpdateDealRequest carries optional admin mutations for a deal.
type UpdateDealRequest struct {
	Title      *string          `json:"title,omitempty"`
	Value      *decimal.Decimal `json:"value,omitempty"`
	StartDate  *time.Time       `json:"start_date,omitempty"`
	EndDate    *time.Time       `json:"end_date,omitempty"`
	MaxUses    *int             `json:"max_uses,omitempty"`
	ProductIDs *[]uuid.UUID     `json:"product_ids,omitempty"`
}

// SetDealStatusRequest flips the administrator status override.
type SetDealStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive expired"`
}

// AdminDealList returns every deal with its computed effective status.
func AdminDealList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		found, err := svc.ListDeals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

// AdminDealCreate creates a discount rule and its product attachments.
func AdminDealCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload CreateDealRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseDealKind(payload.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal kind"))
			return
		}

		deal, err := svc.CreateDeal(r.Context(), catalog.CreateDealInput{
			Title:      payload.Title,
			Kind:       kind,
			Value:      payload.Value,
			StartDate:  payload.StartDate,
			EndDate:    payload.EndDate,
			MaxUses:    payload.MaxUses,
			ProductIDs: payload.ProductIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, deal)
	}
}

// AdminDealUpdate applies partial mutations to a deal.
func AdminDealUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "dealID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload UpdateDealRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.UpdateDeal(r.Context(), id, catalog.UpdateDealInput{
			Title:      payload.Title,
			Value:      payload.Value,
			StartDate:  payload.StartDate,
			EndDate:    payload.EndDate,
			MaxUses:    payload.MaxUses,
			ProductIDs: payload.ProductIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

// AdminDealSetStatus flips the administrator override for a deal.
func AdminDealSetStatus(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "dealID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SetDealStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseDealStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal status"))
			return
		}

		deal, err := svc.SetDealStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

// AdminDealDelete removes a deal and its attachments.
func AdminDealDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "dealID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteDeal(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
