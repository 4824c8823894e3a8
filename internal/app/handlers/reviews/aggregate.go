package reviews

import (
	"context"
	"time"

	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainreviews "staybook/internal/domain/reviews"
)

// RecomputeListingAggregate rebuilds rating and review count from the listing's
// public reviews. Callers save the listing.
func RecomputeListingAggregate(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing, now time.Time) error {
	angle := domainreviews.AngleProperty
	if listing.Kind == domainlistings.KindExperience {
		angle = domainreviews.AngleExperience
	}
	items, _, err := unit.Reviews().List(ctx, domainreviews.Filter{
		Angle:      angle,
		TargetID:   string(listing.ID),
		PublicOnly: true,
	}, 0, 0)
	if err != nil {
		return err
	}
	agg := domainreviews.ComputeAggregate(items)
	listing.ApplyRating(agg.Rating, agg.Count, now)
	return nil
}
