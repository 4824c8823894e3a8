package listings

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

const updateListingKey = "listings.update"

// ListingPatch mirrors ListingPayload with every field optional.
type ListingPatch struct {
	Title         *string `validate:"omitempty,max=200"`
	Description   *string `validate:"omitempty,max=5000"`
	Location      *string `validate:"omitempty,max=300"`
	PriceAmount   *int64  `validate:"omitempty,gte=0"`
	Currency      *string
	MaxGuests     *int `validate:"omitempty,gte=1"`
	Active        *bool
	PropertyType  *string
	Bedrooms      *int `validate:"omitempty,gte=0"`
	Bathrooms     *int `validate:"omitempty,gte=0"`
	Amenities     []string
	Category      *string
	DurationHours *float64 `validate:"omitempty,gte=0"`
	Languages     []string
}

type UpdateListingCommand struct {
	Actor     policies.Actor
	Kind      domainlistings.Kind
	ListingID string `validate:"required"`
	Patch     ListingPatch
}

func (c UpdateListingCommand) Key() string                      { return updateListingKey }
func (c UpdateListingCommand) Principal() policies.Actor        { return c.Actor }
func (c UpdateListingCommand) RequiredRoles() []domainuser.Role { return hostRoles }

type UpdateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.Listing, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	listing, err := loadOwned(ctx, unit, cmd.Actor, cmd.Kind, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	params, err := cmd.Patch.updateParams(listing.Price)
	if err != nil {
		return nil, err
	}
	if err := listing.Update(params, support.Now(h.Clock)); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing updated", "listing_id", listing.ID, "active", listing.Active, "max_guests", listing.MaxGuests)
	}
	out := dto.MapListing(listing)
	return &out, nil
}

// updateParams resolves the patch against the current price: a currency alone
// re-denominates it, an amount alone keeps the currency.
func (p ListingPatch) updateParams(current money.Money) (domainlistings.UpdateParams, error) {
	params := domainlistings.UpdateParams{
		Title:         p.Title,
		Description:   p.Description,
		Location:      p.Location,
		MaxGuests:     p.MaxGuests,
		Active:        p.Active,
		PropertyType:  p.PropertyType,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		Amenities:     p.Amenities,
		Category:      p.Category,
		DurationHours: p.DurationHours,
		Languages:     p.Languages,
	}
	if p.PriceAmount == nil && p.Currency == nil {
		return params, nil
	}
	price := current
	if p.PriceAmount != nil {
		price.Amount = *p.PriceAmount
	}
	if p.Currency != nil {
		price.Currency = *p.Currency
	}
	price, err := money.New(price.Amount, price.Currency)
	if err != nil {
		return domainlistings.UpdateParams{}, err
	}
	params.Price = &price
	return params, nil
}

var (
	_ commands.Handler[UpdateListingCommand, *dto.Listing] = (*UpdateListingHandler)(nil)
	_ policies.Restricted                                  = UpdateListingCommand{}
)
