package listings

import (
	"context"
	"errors"
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
	"staybook/internal/pkg/apperror"
)

const (
	createListingKey = "listings.create"
	deleteListingKey = "listings.delete"
)

var ErrListingNotOwned = apperror.Forbidden("listing.not_owned", "you can only manage your own listings")

var hostRoles = []domainuser.Role{domainuser.RoleHost, domainuser.RoleAdmin}

type ListingPayload struct {
	Title         string `validate:"required,max=200"`
	Description   string `validate:"max=5000"`
	Location      string `validate:"max=300"`
	PriceAmount   int64  `validate:"gte=0"`
	Currency      string
	MaxGuests     int `validate:"gte=1"`
	PropertyType  string
	Bedrooms      int `validate:"gte=0"`
	Bathrooms     int `validate:"gte=0"`
	Amenities     []string
	Category      string
	DurationHours float64 `validate:"gte=0"`
	Languages     []string
}

type CreateListingCommand struct {
	Actor   policies.Actor
	Kind    domainlistings.Kind
	Payload ListingPayload
}

func (c CreateListingCommand) Key() string                      { return createListingKey }
func (c CreateListingCommand) Principal() policies.Actor        { return c.Actor }
func (c CreateListingCommand) RequiredRoles() []domainuser.Role { return hostRoles }

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
	IDs        func() string
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.Listing, error) {
	if !cmd.Actor.IsHost() && !cmd.Actor.IsAdmin() {
		return nil, policies.ErrHostOnly
	}
	price, err := money.New(cmd.Payload.PriceAmount, cmd.Payload.Currency)
	if err != nil {
		return nil, err
	}
	params := domainlistings.CreateParams{
		ID:          domainlistings.ListingID(support.NewID(h.IDs)),
		Kind:        cmd.Kind,
		Host:        cmd.Actor.ID,
		Title:       cmd.Payload.Title,
		Description: cmd.Payload.Description,
		Location:    cmd.Payload.Location,
		Price:       price,
		MaxGuests:   cmd.Payload.MaxGuests,
		Now:         support.Now(h.Clock),
	}
	switch cmd.Kind {
	case domainlistings.KindProperty:
		params.Property = &domainlistings.PropertyDetails{
			PropertyType: cmd.Payload.PropertyType,
			Bedrooms:     cmd.Payload.Bedrooms,
			Bathrooms:    cmd.Payload.Bathrooms,
			Amenities:    cmd.Payload.Amenities,
		}
	case domainlistings.KindExperience:
		params.Experience = &domainlistings.ExperienceDetails{
			Category:      cmd.Payload.Category,
			DurationHours: cmd.Payload.DurationHours,
			Languages:     cmd.Payload.Languages,
		}
	}
	listing, err := domainlistings.NewListing(params)
	if err != nil {
		return nil, err
	}

	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

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
		h.Logger.Info("listing created", "listing_id", listing.ID, "type", listing.Kind, "host_id", listing.Host)
	}
	out := dto.MapListing(listing)
	return &out, nil
}

type DeleteListingCommand struct {
	Actor     policies.Actor
	Kind      domainlistings.Kind
	ListingID string `validate:"required"`
}

func (c DeleteListingCommand) Key() string                      { return deleteListingKey }
func (c DeleteListingCommand) Principal() policies.Actor        { return c.Actor }
func (c DeleteListingCommand) RequiredRoles() []domainuser.Role { return hostRoles }

type DeleteListingResult struct {
	ListingID   string `json:"listing_id"`
	Deactivated bool   `json:"deactivated"`
}

// DeleteListingHandler removes a listing, or deactivates it when bookings
// still reference it.
type DeleteListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (*DeleteListingResult, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	listing, err := loadOwned(ctx, unit, cmd.Actor, cmd.Kind, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	result := &DeleteListingResult{ListingID: string(listing.ID)}
	if listing.HasBookings() {
		listing.Deactivate(support.Now(h.Clock))
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return nil, err
		}
		result.Deactivated = true
	} else if err := unit.Listings().Delete(ctx, listing.ID); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing removed", "listing_id", listing.ID, "deactivated", result.Deactivated)
	}
	return result, nil
}

// loadOwned fetches a listing of the given kind that actor may manage.
func loadOwned(ctx context.Context, unit uow.UnitOfWork, actor policies.Actor, kind domainlistings.Kind, id string) (*domainlistings.Listing, error) {
	listing, err := loadKind(ctx, unit, kind, id)
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(actor.ID) && !actor.IsAdmin() {
		return nil, ErrListingNotOwned
	}
	return listing, nil
}

func loadKind(ctx context.Context, unit uow.UnitOfWork, kind domainlistings.Kind, id string) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(id))
	if errors.Is(err, domainlistings.ErrNotFound) || (err == nil && kind != "" && listing.Kind != kind) {
		return nil, domainlistings.NotFoundFor(kind)
	}
	if err != nil {
		return nil, err
	}
	return listing, nil
}

var (
	_ commands.Handler[CreateListingCommand, *dto.Listing]         = (*CreateListingHandler)(nil)
	_ commands.Handler[DeleteListingCommand, *DeleteListingResult] = (*DeleteListingHandler)(nil)
	_ policies.Restricted                                          = CreateListingCommand{}
	_ policies.Restricted                                          = DeleteListingCommand{}
)
