package reviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainreviews "staybook/internal/domain/reviews"
	domainuser "staybook/internal/domain/user"
)

const (
	respondReviewKey    = "reviews.respond"
	reviewVisibilityKey = "reviews.set_visibility"
	deleteReviewKey     = "reviews.delete"
)

type RespondCommand struct {
	Actor    policies.Actor
	ReviewID string `validate:"required"`
	Comment  string `validate:"max=2000"`
}

func (c RespondCommand) Key() string { return respondReviewKey }

// RespondHandler stores the reviewed host's answer to a review.
type RespondHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *RespondHandler) Handle(ctx context.Context, cmd RespondCommand) (*dto.Review, error) {
	if !cmd.Actor.Authenticated() {
		return nil, policies.ErrAuthRequired
	}
	if strings.TrimSpace(cmd.Comment) == "" {
		return nil, domainreviews.ErrResponseRequired
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return nil, err
	}
	responder, err := responderOf(ctx, unit, review)
	if err != nil {
		return nil, err
	}
	if !cmd.Actor.IsAdmin() && (responder == "" || responder != cmd.Actor.ID) {
		return nil, domainreviews.ErrRespondForbidden
	}
	if err := review.Respond(cmd.Comment, support.Now(h.Clock)); err != nil {
		return nil, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, review); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("review response saved", "review_id", review.ID, "actor_id", cmd.Actor.ID)
	}
	out := dto.MapReview(review)
	return &out, nil
}

// responderOf names the user allowed to answer a review besides admins. Guest
// reviews have nobody to answer them.
func responderOf(ctx context.Context, unit uow.UnitOfWork, review *domainreviews.Review) (domainuser.ID, error) {
	switch review.Angle() {
	case domainreviews.AngleProperty, domainreviews.AngleExperience:
		id, _, _ := review.Listing()
		return hostOfListing(ctx, unit, id)
	case domainreviews.AngleHost:
		return review.HostID, nil
	default:
		return "", nil
	}
}

type SetVisibilityCommand struct {
	Actor    policies.Actor
	ReviewID string `validate:"required"`
	IsPublic *bool
}

func (c SetVisibilityCommand) Key() string                      { return reviewVisibilityKey }
func (c SetVisibilityCommand) Principal() policies.Actor        { return c.Actor }
func (c SetVisibilityCommand) RequiredRoles() []domainuser.Role { return adminOnly }

// SetVisibilityHandler hides or shows a review. Listing aggregates are left
// as they are until the next review is written.
type SetVisibilityHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *SetVisibilityHandler) Handle(ctx context.Context, cmd SetVisibilityCommand) (*dto.Review, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, policies.ErrAdminOnly
	}
	if cmd.IsPublic == nil {
		return nil, domainreviews.ErrVisibilityRequired
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return nil, err
	}
	review.SetVisibility(*cmd.IsPublic, support.Now(h.Clock))
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, review); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("review visibility changed", "review_id", review.ID, "is_public", review.Public)
	}
	out := dto.MapReview(review)
	return &out, nil
}

type DeleteReviewCommand struct {
	Actor    policies.Actor
	ReviewID string `validate:"required"`
}

func (c DeleteReviewCommand) Key() string { return deleteReviewKey }

type DeleteReviewResult struct {
	ReviewID string `json:"review_id"`
}

// DeleteReviewHandler removes a review and its reference on the listing. The
// listing rating and count are only rebuilt when RecomputeOnDelete is set.
type DeleteReviewHandler struct {
	UoWFactory        uow.UoWFactory
	Outbox            outbox.Outbox
	Encoder           outbox.EventEncoder
	Logger            *slog.Logger
	Clock             func() time.Time
	RecomputeOnDelete bool
}

func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (*DeleteReviewResult, error) {
	if !cmd.Actor.Authenticated() {
		return nil, policies.ErrAuthRequired
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return nil, err
	}
	if !cmd.Actor.CanManage(review.AuthorID) {
		return nil, domainreviews.ErrDeleteForbidden
	}
	now := support.Now(h.Clock)
	if err := unit.Reviews().Delete(ctx, review.ID); err != nil {
		return nil, err
	}
	review.MarkDeleted(now)
	sources := []support.EventSource{review}

	if id, _, ok := review.Listing(); ok {
		listing, err := unit.Listings().ByID(ctx, id)
		switch {
		case err == nil:
			changed := listing.RemoveReview(string(review.ID), now)
			if h.RecomputeOnDelete {
				if err := RecomputeListingAggregate(ctx, unit, listing, now); err != nil {
					return nil, err
				}
				changed = true
			}
			if changed {
				if err := unit.Listings().Save(ctx, listing); err != nil {
					return nil, err
				}
			}
			sources = append(sources, listing)
		case !errors.Is(err, domainlistings.ErrNotFound):
			return nil, err
		}
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, sources...); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("review deleted", "review_id", review.ID, "actor_id", cmd.Actor.ID, "recomputed", h.RecomputeOnDelete)
	}
	return &DeleteReviewResult{ReviewID: string(review.ID)}, nil
}

var adminOnly = []domainuser.Role{domainuser.RoleAdmin}

var (
	_ commands.Handler[RespondCommand, *dto.Review]              = (*RespondHandler)(nil)
	_ commands.Handler[SetVisibilityCommand, *dto.Review]        = (*SetVisibilityHandler)(nil)
	_ commands.Handler[DeleteReviewCommand, *DeleteReviewResult] = (*DeleteReviewHandler)(nil)
	_ policies.Restricted                                        = SetVisibilityCommand{}
)
