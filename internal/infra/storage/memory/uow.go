package memory

import (
	"context"
	"errors"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainreviews "staybook/internal/domain/reviews"
	domainuser "staybook/internal/domain/user"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	UsersRepo    domainuser.Repository
	ListingsRepo domainlistings.Repository
	BookingsRepo domainbooking.Repository
	ReviewsRepo  domainreviews.Repository
}

// NewFactory builds a factory over fresh, empty repositories.
func NewFactory() Factory {
	return Factory{
		UsersRepo:    NewUserRepository(),
		ListingsRepo: NewListingRepository(),
		BookingsRepo: NewBookingRepository(),
		ReviewsRepo:  NewReviewRepository(),
	}
}

// Begin starts a unit without isolation: writes are visible immediately and
// Rollback does not undo them.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.UsersRepo == nil || f.ListingsRepo == nil || f.BookingsRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

type Unit struct {
	factory Factory
}

func (u *Unit) Users() domainuser.Repository        { return u.factory.UsersRepo }
func (u *Unit) Listings() domainlistings.Repository { return u.factory.ListingsRepo }
func (u *Unit) Bookings() domainbooking.Repository  { return u.factory.BookingsRepo }
func (u *Unit) Reviews() domainreviews.Repository   { return u.factory.ReviewsRepo }
func (u *Unit) Commit(ctx context.Context) error    { return nil }
func (u *Unit) Rollback(ctx context.Context) error  { return nil }

var _ uow.UoWFactory = Factory{}
