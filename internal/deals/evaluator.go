package deals

import (
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
)

// EffectiveStatus computes the usability of a deal at the given instant.
// It is a pure function of its inputs; the stored status only wins when an
// administrator has forced the deal inactive.
//
// Both window bounds are inclusive so a deal stays valid through the exact
// end timestamp, avoiding flicker while clients poll around the boundary.
func EffectiveStatus(deal *models.Deal, now time.Time) enums.DealStatus {
	if deal == nil {
		return enums.DealStatusExpired
	}
	if deal.Status == enums.DealStatusInactive {
		return enums.DealStatusInactive
	}
	if now.Before(deal.StartDate) || now.After(deal.EndDate) {
		return enums.DealStatusExpired
	}
	if deal.MaxUses != nil && deal.UsedCount >= *deal.MaxUses {
		return enums.DealStatusExpired
	}
	return enums.DealStatusActive
}

// Usable reports whether the deal may be applied to pricing right now.
func Usable(deal *models.Deal, now time.Time) bool {
	return EffectiveStatus(deal, now) == enums.DealStatusActive
}
