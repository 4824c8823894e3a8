// Package registry binds the command and query handlers to their buses and
// wraps the buses in the middleware pipeline.
package registry

import (
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	listingapp "staybook/internal/app/handlers/listings"
	reviewapp "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	"staybook/internal/infra/storage/s3"
)

type Deps struct {
	UoWFactory        uow.UoWFactory
	Outbox            outbox.Outbox
	Encoder           outbox.EventEncoder
	Idempotency       middleware.IdempotencyStore
	IdempotencyTTL    time.Duration
	Uploader          s3.Uploader
	Validator         middleware.Validator
	Authorizer        middleware.Authorizer
	Logger            *slog.Logger
	Clock             func() time.Time
	IDs               func() string
	DefaultPageSize   int
	RecomputeOnDelete bool
}

// Buses are the dispatch entry points handed to the transport layer.
type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func Build(d Deps) Buses {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Encoder == nil {
		d.Encoder = outbox.JSONEventEncoder{}
	}
	if d.Uploader == nil {
		d.Uploader = s3.Disabled{}
	}

	commandBus := commands.NewInMemoryBus()
	registerBookingCommands(commandBus, d)
	registerReviewCommands(commandBus, d)
	registerListingCommands(commandBus, d)

	queryBus := queries.NewInMemoryBus()
	registerBookingQueries(queryBus, d)
	registerReviewQueries(queryBus, d)
	registerListingQueries(queryBus, d)

	cmdMiddlewares := []middleware.CommandMiddleware{middleware.Logging(d.Logger)}
	queryMiddlewares := []middleware.QueryMiddleware{}
	if d.Validator != nil {
		cmdMiddlewares = append(cmdMiddlewares, middleware.Validation(d.Validator))
		queryMiddlewares = append(queryMiddlewares, middleware.QueryValidation(d.Validator))
	}
	if d.Authorizer != nil {
		cmdMiddlewares = append(cmdMiddlewares, middleware.Authorization(d.Authorizer))
		queryMiddlewares = append(queryMiddlewares, middleware.QueryAuthorization(d.Authorizer))
	}
	if d.Idempotency != nil {
		cmdMiddlewares = append(cmdMiddlewares, middleware.Idempotency(d.Idempotency, nil, d.IdempotencyTTL))
	}
	cmdMiddlewares = append(cmdMiddlewares, middleware.Transaction(d.UoWFactory, nil))
	if d.Outbox != nil {
		cmdMiddlewares = append(cmdMiddlewares, middleware.OutboxFlush(d.Outbox))
	}

	return Buses{
		Commands: middleware.ChainCommands(commandBus, cmdMiddlewares...),
		Queries:  middleware.ChainQueries(queryBus, queryMiddlewares...),
	}
}

func registerBookingCommands(bus *commands.InMemoryBus, d Deps) {
	commands.RegisterHandler[bookingapp.CreateBookingCommand, *dto.Booking](bus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
		IDs:        d.IDs,
	})
	commands.RegisterHandler[bookingapp.UpdateStatusCommand, *dto.Booking](bus, bookingapp.UpdateStatusCommand{}.Key(), &bookingapp.UpdateStatusHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
	})
	commands.RegisterHandler[bookingapp.UpdatePaymentCommand, *dto.Booking](bus, bookingapp.UpdatePaymentCommand{}.Key(), &bookingapp.UpdatePaymentHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
	})
	commands.RegisterHandler[bookingapp.DeleteBookingCommand, *bookingapp.DeleteBookingResult](bus, bookingapp.DeleteBookingCommand{}.Key(), &bookingapp.DeleteBookingHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
	})
}

func registerReviewCommands(bus *commands.InMemoryBus, d Deps) {
	commands.RegisterHandler[reviewapp.CreateReviewCommand, *dto.Review](bus, reviewapp.CreateReviewCommand{}.Key(), &reviewapp.CreateReviewHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
		IDs:        d.IDs,
	})
	commands.RegisterHandler[reviewapp.RespondCommand, *dto.Review](bus, reviewapp.RespondCommand{}.Key(), &reviewapp.RespondHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
	})
	commands.RegisterHandler[reviewapp.SetVisibilityCommand, *dto.Review](bus, reviewapp.SetVisibilityCommand{}.Key(), &reviewapp.SetVisibilityHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
	})
	commands.RegisterHandler[reviewapp.DeleteReviewCommand, *reviewapp.DeleteReviewResult](bus, reviewapp.DeleteReviewCommand{}.Key(), &reviewapp.DeleteReviewHandler{
		UoWFactory:        d.UoWFactory,
		Outbox:            d.Outbox,
		Encoder:           d.Encoder,
		Logger:            d.Logger,
		Clock:             d.Clock,
		RecomputeOnDelete: d.RecomputeOnDelete,
	})
}

func registerListingCommands(bus *commands.InMemoryBus, d Deps) {
	commands.RegisterHandler[listingapp.CreateListingCommand, *dto.Listing](bus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
		IDs:        d.IDs,
	})
	commands.RegisterHandler[listingapp.UpdateListingCommand, *dto.Listing](bus, listingapp.UpdateListingCommand{}.Key(), &listingapp.UpdateListingHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
	})
	commands.RegisterHandler[listingapp.DeleteListingCommand, *listingapp.DeleteListingResult](bus, listingapp.DeleteListingCommand{}.Key(), &listingapp.DeleteListingHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Clock:      d.Clock,
	})
	commands.RegisterHandler[listingapp.UploadImageCommand, *dto.Listing](bus, listingapp.UploadImageCommand{}.Key(), &listingapp.UploadImageHandler{
		UoWFactory: d.UoWFactory,
		Uploader:   d.Uploader,
		Logger:     d.Logger,
		Clock:      d.Clock,
	})
	commands.RegisterHandler[listingapp.RemoveImageCommand, *dto.Listing](bus, listingapp.RemoveImageCommand{}.Key(), &listingapp.RemoveImageHandler{
		UoWFactory: d.UoWFactory,
		Uploader:   d.Uploader,
		Logger:     d.Logger,
		Clock:      d.Clock,
	})
}

func registerBookingQueries(bus *queries.InMemoryBus, d Deps) {
	queries.RegisterHandler[bookingapp.ListBookingsQuery, dto.BookingPage](bus, bookingapp.ListBookingsQuery{}.Key(), &bookingapp.ListBookingsHandler{
		UoWFactory:      d.UoWFactory,
		Logger:          d.Logger,
		DefaultPageSize: d.DefaultPageSize,
	})
	queries.RegisterHandler[bookingapp.ListMyBookingsQuery, []dto.Booking](bus, bookingapp.ListMyBookingsQuery{}.Key(), &bookingapp.ListMyBookingsHandler{
		UoWFactory: d.UoWFactory,
		Logger:     d.Logger,
	})
	queries.RegisterHandler[bookingapp.ListHostBookingsQuery, []dto.Booking](bus, bookingapp.ListHostBookingsQuery{}.Key(), &bookingapp.ListHostBookingsHandler{
		UoWFactory: d.UoWFactory,
		Logger:     d.Logger,
	})
	queries.RegisterHandler[bookingapp.GetBookingQuery, dto.Booking](bus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{
		UoWFactory: d.UoWFactory,
	})
}

func registerReviewQueries(bus *queries.InMemoryBus, d Deps) {
	queries.RegisterHandler[reviewapp.ListReviewsQuery, dto.ReviewPage](bus, reviewapp.ListReviewsQuery{}.Key(), &reviewapp.ListReviewsHandler{
		UoWFactory:      d.UoWFactory,
		Logger:          d.Logger,
		DefaultPageSize: d.DefaultPageSize,
	})
	queries.RegisterHandler[reviewapp.GetReviewQuery, dto.Review](bus, reviewapp.GetReviewQuery{}.Key(), &reviewapp.GetReviewHandler{
		UoWFactory: d.UoWFactory,
	})
}

func registerListingQueries(bus *queries.InMemoryBus, d Deps) {
	queries.RegisterHandler[listingapp.GetListingQuery, dto.Listing](bus, listingapp.GetListingQuery{}.Key(), &listingapp.GetListingHandler{
		UoWFactory: d.UoWFactory,
	})
	queries.RegisterHandler[listingapp.ListMyListingsQuery, []dto.Listing](bus, listingapp.ListMyListingsQuery{}.Key(), &listingapp.ListMyListingsHandler{
		UoWFactory: d.UoWFactory,
		Logger:     d.Logger,
	})
}
