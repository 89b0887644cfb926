package controllers

import (
	"net/http"

	"github.com/dmfebriyanto/tokotenan-backend/api/middleware"
	"github.com/dmfebriyanto/tokotenan-backend/api/responses"
	checkoutsvc "github.com/dmfebriyanto/tokotenan-backend/internal/checkout"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/logger"
)

// CheckoutCommit validates the session cart against fresh catalog data
// and commits it as an order.
func CheckoutCommit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		order, err := svc.Checkout(r.Context(), middleware.SessionID(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
