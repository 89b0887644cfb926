package controllers

import (
	"net/http"

	"github.com/dmfebriyanto/tokotenan-backend/api/responses"
	"github.com/dmfebriyanto/tokotenan-backend/api/validators"
	"github.com/dmfebriyanto/tokotenan-backend/internal/catalog"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/logger"
)

// SizePayload is one size variant in admin product writes.
type SizePayload struct {
	Label string `json:"label" validate:"required"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// CreateProductRequest is the admin payload to create a listing.
type CreateProductRequest struct {
	SKU       string        `json:"sku" validate:"required"`
	Name      string        `json:"name" validate:"required"`
	Subtitle  *string       `json:"subtitle,omitempty"`
	BasePrice int           `json:"base_price_cents" validate:"required,gt=0"`
	Stock     int           `json:"stock" validate:"gte=0"`
	IsActive  *bool         `json:"is_active,omitempty"`
	ImageURLs []string      `json:"image_urls,omitempty"`
	Sizes     []SizePayload `json:"sizes,omitempty" validate:"dive"`
}

// UpdateProductRequest carries optional admin mutations for a listing.
type UpdateProductRequest struct {
	SKU       *string        `json:"sku,omitempty"`
	Name      *string        `json:"name,omitempty"`
	Subtitle  *string        `json:"subtitle,omitempty"`
	BasePrice *int           `json:"base_price_cents,omitempty"`
	Stock     *int           `json:"stock,omitempty"`
	IsActive  *bool          `json:"is_active,omitempty"`
	ImageURLs *[]string      `json:"image_urls,omitempty"`
	Sizes     *[]SizePayload `json:"sizes,omitempty" validate:"omitempty,dive"`
}

// AdminProductCreate creates a catalog listing.
func AdminProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload CreateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.CreateProductInput{
			SKU:       payload.SKU,
			Name:      payload.Name,
			Subtitle:  payload.Subtitle,
			BasePrice: payload.BasePrice,
			Stock:     payload.Stock,
			IsActive:  true,
			ImageURLs: payload.ImageURLs,
			Sizes:     toSizeInputs(payload.Sizes),
		}
		if payload.IsActive != nil {
			input.IsActive = *payload.IsActive
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminProductUpdate applies partial mutations to a listing.
func AdminProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload UpdateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateProductInput{
			SKU:       payload.SKU,
			Name:      payload.Name,
			Subtitle:  payload.Subtitle,
			BasePrice: payload.BasePrice,
			Stock:     payload.Stock,
			IsActive:  payload.IsActive,
			ImageURLs: payload.ImageURLs,
		}
		if payload.Sizes != nil {
			sizes := toSizeInputs(*payload.Sizes)
			input.Sizes = &sizes
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminProductDelete removes a listing.
func AdminProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func toSizeInputs(payloads []SizePayload) []catalog.SizeInput {
	if len(payloads) == 0 {
		return nil
	}
	out := make([]catalog.SizeInput, 0, len(payloads))
	for _, payload := range payloads {
		out = append(out, catalog.SizeInput{Label: payload.Label, Stock: payload.Stock})
	}
	return out
}
