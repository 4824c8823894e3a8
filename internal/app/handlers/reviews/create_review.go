package reviews

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
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainreviews "staybook/internal/domain/reviews"
	domainuser "staybook/internal/domain/user"
)

const createReviewKey = "reviews.create"

// CreateReviewCommand reviews a property, experience, host or guest. BookingID
// is optional; without it the most recent eligible booking is used.
type CreateReviewCommand struct {
	Actor     policies.Actor
	Angle     string `validate:"required"`
	TargetID  string `validate:"required"`
	Rating    int
	Comment   string `validate:"max=2000"`
	BookingID string
}

func (c CreateReviewCommand) Key() string               { return createReviewKey }
func (c CreateReviewCommand) Principal() policies.Actor { return c.Actor }

// RequiredRoles gates guest reviews to hosts; other angles need any account.
func (c CreateReviewCommand) RequiredRoles() []domainuser.Role {
	if domainreviews.Angle(c.Angle) == domainreviews.AngleGuest {
		return []domainuser.Role{domainuser.RoleHost}
	}
	return nil
}

type CreateReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
	IDs        func() string
}

// reviewContext is what eligibility resolved for one request.
type reviewContext struct {
	subject domainreviews.Subject
	listing *domainlistings.Listing
	hostID  domainuser.ID
	booking *domainbooking.Booking
}

func (h *CreateReviewHandler) Handle(ctx context.Context, cmd CreateReviewCommand) (*dto.Review, error) {
	if !cmd.Actor.Authenticated() {
		return nil, policies.ErrAuthRequired
	}
	angle, err := domainreviews.ParseAngle(cmd.Angle)
	if err != nil {
		return nil, err
	}
	subject, err := domainreviews.NewSubject(angle, cmd.TargetID)
	if err != nil {
		return nil, err
	}
	if err := domainreviews.ValidateContent(cmd.Rating, cmd.Comment); err != nil {
		return nil, err
	}
	if angle == domainreviews.AngleGuest && !cmd.Actor.IsHost() {
		return nil, policies.ErrHostOnly
	}

	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	rc := reviewContext{subject: subject}
	if err := h.resolveSubject(ctx, unit, cmd.Actor, &rc); err != nil {
		return nil, err
	}
	if cmd.BookingID != "" {
		err = h.useExplicitBooking(ctx, unit, cmd.Actor, domainbooking.BookingID(cmd.BookingID), &rc)
	} else {
		err = h.discoverBooking(ctx, unit, cmd.Actor, &rc)
	}
	if err != nil {
		return nil, err
	}

	now := support.Now(h.Clock)
	review, err := domainreviews.NewReview(domainreviews.CreateParams{
		ID:        domainreviews.ReviewID(support.NewID(h.IDs)),
		AuthorID:  cmd.Actor.ID,
		Subject:   subject,
		BookingID: rc.booking.ID,
		HostID:    rc.hostID,
		Rating:    cmd.Rating,
		Comment:   cmd.Comment,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return nil, err
	}
	sources := []support.EventSource{review}

	if rc.listing != nil {
		if err := rc.booking.MarkReviewed(now); err != nil {
			return nil, err
		}
		if err := unit.Bookings().Save(ctx, rc.booking); err != nil {
			return nil, err
		}
		rc.listing.AppendReview(string(review.ID), now)
		if err := RecomputeListingAggregate(ctx, unit, rc.listing, now); err != nil {
			return nil, err
		}
		if err := unit.Listings().Save(ctx, rc.listing); err != nil {
			return nil, err
		}
		sources = append(sources, rc.booking, rc.listing)
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, sources...); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("review created",
			"review_id", review.ID,
			"type", angle,
			"target_id", subject.TargetID(),
			"booking_id", review.BookingID,
			"rating", review.Rating,
		)
	}
	out := dto.MapReview(review)
	return &out, nil
}

// resolveSubject checks that the reviewed listing or user exists and records
// the host the review concerns.
func (h *CreateReviewHandler) resolveSubject(ctx context.Context, unit uow.UnitOfWork, actor policies.Actor, rc *reviewContext) error {
	switch s := rc.subject.(type) {
	case domainreviews.PropertySubject, domainreviews.ExperienceSubject:
		id, kind, _ := domainreviews.ListingOf(s)
		listing, err := unit.Listings().ByID(ctx, id)
		if errors.Is(err, domainlistings.ErrNotFound) || (err == nil && listing.Kind != kind) {
			return domainlistings.NotFoundFor(kind)
		}
		if err != nil {
			return err
		}
		rc.listing = listing
		rc.hostID = listing.Host
	case domainreviews.HostSubject:
		target, err := unit.Users().ByID(ctx, s.HostID)
		if errors.Is(err, domainuser.ErrNotFound) || (err == nil && !target.IsHost()) {
			return domainreviews.ErrHostNotFound
		}
		if err != nil {
			return err
		}
		rc.hostID = target.ID
	case domainreviews.GuestSubject:
		_, err := unit.Users().ByID(ctx, s.GuestID)
		if errors.Is(err, domainuser.ErrNotFound) {
			return domainreviews.ErrGuestNotFound
		}
		if err != nil {
			return err
		}
		rc.hostID = actor.ID
	}
	return nil
}

func (h *CreateReviewHandler) useExplicitBooking(ctx context.Context, unit uow.UnitOfWork, actor policies.Actor, id domainbooking.BookingID, rc *reviewContext) error {
	booking, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return err
	}
	listingHost := rc.hostID
	if rc.listing == nil {
		if listingHost, err = hostOfListing(ctx, unit, booking.ListingID()); err != nil {
			return err
		}
	}
	if err := domainreviews.Admissible(rc.subject, actor.ID, domainreviews.Evidence{Booking: booking, ListingHost: listingHost}); err != nil {
		return err
	}
	if rc.listing == nil {
		if err := ensureNotReviewed(ctx, unit, booking.ID, rc.subject.Angle()); err != nil {
			return err
		}
	}
	rc.booking = booking
	return nil
}

// discoverBooking picks the most recent completed booking that can still carry
// a review of this subject.
func (h *CreateReviewHandler) discoverBooking(ctx context.Context, unit uow.UnitOfWork, actor policies.Actor, rc *reviewContext) error {
	guestID := actor.ID
	if s, ok := rc.subject.(domainreviews.GuestSubject); ok {
		guestID = s.GuestID
	}
	hosted, err := hostedListings(ctx, unit, rc)
	if err != nil {
		return err
	}
	candidates, err := unit.Bookings().ListByGuest(ctx, guestID)
	if err != nil {
		return err
	}

	sawCompleted := false
	for _, b := range candidates {
		if !b.IsCompleted() {
			continue
		}
		if _, ok := hosted[b.ListingID()]; !ok {
			continue
		}
		if rc.listing != nil && b.Kind() != rc.listing.Kind {
			continue
		}
		sawCompleted = true
		evidence := domainreviews.Evidence{Booking: b, ListingHost: rc.hostID}
		if err := domainreviews.Admissible(rc.subject, actor.ID, evidence); err != nil {
			continue
		}
		if rc.listing == nil {
			exists, err := unit.Reviews().ExistsForBooking(ctx, b.ID, rc.subject.Angle())
			if err != nil {
				return err
			}
			if exists {
				continue
			}
		}
		rc.booking = b
		return nil
	}
	if sawCompleted {
		return domainbooking.ErrAlreadyReviewed
	}
	return domainreviews.ErrCompletedStayRequired
}

// hostedListings returns the listings a qualifying booking may target: the
// reviewed listing itself, or every listing of the host involved.
func hostedListings(ctx context.Context, unit uow.UnitOfWork, rc *reviewContext) (map[domainlistings.ListingID]struct{}, error) {
	if rc.listing != nil {
		return map[domainlistings.ListingID]struct{}{rc.listing.ID: {}}, nil
	}
	owned, err := unit.Listings().ListByHost(ctx, rc.hostID, "")
	if err != nil {
		return nil, err
	}
	set := make(map[domainlistings.ListingID]struct{}, len(owned))
	for _, l := range owned {
		set[l.ID] = struct{}{}
	}
	return set, nil
}

func hostOfListing(ctx context.Context, unit uow.UnitOfWork, id domainlistings.ListingID) (domainuser.ID, error) {
	listing, err := unit.Listings().ByID(ctx, id)
	if errors.Is(err, domainlistings.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return listing.Host, nil
}

func ensureNotReviewed(ctx context.Context, unit uow.UnitOfWork, id domainbooking.BookingID, angle domainreviews.Angle) error {
	exists, err := unit.Reviews().ExistsForBooking(ctx, id, angle)
	if err != nil {
		return err
	}
	if exists {
		return domainbooking.ErrAlreadyReviewed
	}
	return nil
}

var (
	_ commands.Handler[CreateReviewCommand, *dto.Review] = (*CreateReviewHandler)(nil)
	_ policies.Restricted                                = CreateReviewCommand{}
)
