package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/events"
)

type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainreviews.ReviewID]*domainreviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[domainreviews.ReviewID]*domainreviews.Review)}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return cloneReview(review), nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[review.ID] = cloneReview(review)
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainreviews.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, filter domainreviews.Filter, offset, limit int) ([]*domainreviews.Review, int, error) {
	r.mu.RLock()
	matches := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if filter.Angle != "" && review.Angle() != filter.Angle {
			continue
		}
		if filter.TargetID != "" && review.Subject.TargetID() != filter.TargetID {
			continue
		}
		if filter.PublicOnly && !review.Public {
			continue
		}
		matches = append(matches, cloneReview(review))
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return paginate(matches, offset, limit), len(matches), nil
}

func (r *ReviewRepository) ExistsForBooking(ctx context.Context, bookingID domainbooking.BookingID, angle domainreviews.Angle) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, review := range r.items {
		if review.BookingID == bookingID && review.Angle() == angle {
			return true, nil
		}
	}
	return false, nil
}

func cloneReview(r *domainreviews.Review) *domainreviews.Review {
	cp := *r
	cp.EventRecorder = events.EventRecorder{}
	if r.Response != nil {
		resp := *r.Response
		cp.Response = &resp
	}
	return &cp
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
