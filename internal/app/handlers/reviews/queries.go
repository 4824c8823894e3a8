package reviews

import (
	"context"
	"log/slog"
	"strings"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainreviews "staybook/internal/domain/reviews"
)

const (
	listReviewsKey = "reviews.list"
	getReviewKey   = "reviews.get"
)

// ListReviewsQuery pages public reviews. Type and TargetID filter only when
// both are given.
type ListReviewsQuery struct {
	Type     string
	TargetID string
	Page     int
	Limit    int
}

func (q ListReviewsQuery) Key() string { return listReviewsKey }

type ListReviewsHandler struct {
	UoWFactory      uow.UoWFactory
	Logger          *slog.Logger
	DefaultPageSize int
}

func (h *ListReviewsHandler) Handle(ctx context.Context, q ListReviewsQuery) (dto.ReviewPage, error) {
	filter := domainreviews.Filter{PublicOnly: true}
	if strings.TrimSpace(q.Type) != "" && strings.TrimSpace(q.TargetID) != "" {
		angle, err := domainreviews.ParseAngle(q.Type)
		if err != nil {
			return dto.ReviewPage{}, err
		}
		filter.Angle = angle
		filter.TargetID = strings.TrimSpace(q.TargetID)
	}
	page, limit := dto.NormalizePage(q.Page, q.Limit, h.DefaultPageSize)

	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewPage{}, err
	}
	defer unit.Release(ctx)

	items, total, err := unit.Reviews().List(ctx, filter, dto.Offset(page, limit), limit)
	if err != nil {
		return dto.ReviewPage{}, err
	}
	if h.Logger != nil {
		h.Logger.Debug("reviews listed", "type", filter.Angle, "target_id", filter.TargetID, "total", total)
	}
	return dto.ReviewPage{
		Reviews: dto.MapReviews(items),
		Page:    page,
		Pages:   dto.PageCount(total, limit),
		Total:   total,
	}, nil
}

// GetReviewQuery reads one review. Private reviews are visible to their
// author and admins only; Actor may be anonymous.
type GetReviewQuery struct {
	Actor    policies.Actor
	ReviewID string
}

func (q GetReviewQuery) Key() string { return getReviewKey }

type GetReviewHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetReviewHandler) Handle(ctx context.Context, q GetReviewQuery) (dto.Review, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	defer unit.Release(ctx)

	review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(q.ReviewID))
	if err != nil {
		return dto.Review{}, err
	}
	if !review.Public && !(q.Actor.Authenticated() && q.Actor.CanManage(review.AuthorID)) {
		return dto.Review{}, domainreviews.ErrPrivateReview
	}
	return dto.MapReview(review), nil
}

var (
	_ queries.Handler[ListReviewsQuery, dto.ReviewPage] = (*ListReviewsHandler)(nil)
	_ queries.Handler[GetReviewQuery, dto.Review]       = (*GetReviewHandler)(nil)
)
