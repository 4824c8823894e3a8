package listings

import (
	"context"
	"log/slog"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
)

const (
	getListingKey     = "listings.get"
	listMyListingsKey = "listings.mine"
)

type GetListingQuery struct {
	Kind      domainlistings.Kind
	ListingID string
}

func (q GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.Listing, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	defer unit.Release(ctx)

	listing, err := loadKind(ctx, unit, q.Kind, q.ListingID)
	if err != nil {
		return dto.Listing{}, err
	}
	return dto.MapListing(listing), nil
}

// ListMyListingsQuery returns the caller's listings of one kind, newest first.
type ListMyListingsQuery struct {
	Actor policies.Actor
	Kind  domainlistings.Kind
}

func (q ListMyListingsQuery) Key() string                      { return listMyListingsKey }
func (q ListMyListingsQuery) Principal() policies.Actor        { return q.Actor }
func (q ListMyListingsQuery) RequiredRoles() []domainuser.Role { return hostRoles }

type ListMyListingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListMyListingsHandler) Handle(ctx context.Context, q ListMyListingsQuery) ([]dto.Listing, error) {
	if !q.Actor.Authenticated() {
		return nil, policies.ErrAuthRequired
	}
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	items, err := unit.Listings().ListByHost(ctx, q.Actor.ID, q.Kind)
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Debug("host listings queried", "host_id", q.Actor.ID, "type", q.Kind, "count", len(items))
	}
	return dto.MapListings(items), nil
}

var (
	_ queries.Handler[GetListingQuery, dto.Listing]       = (*GetListingHandler)(nil)
	_ queries.Handler[ListMyListingsQuery, []dto.Listing] = (*ListMyListingsHandler)(nil)
	_ policies.Restricted                                 = ListMyListingsQuery{}
)
