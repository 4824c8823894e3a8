package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/events"
	domainuser "staybook/internal/domain/user"
)

// ListingRepository is an in-memory catalogue of properties and experiences.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	if listing == nil || listing.ID == "" {
		return domainlistings.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	listing.Version++
	r.items[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ListingRepository) ListByHost(ctx context.Context, host domainuser.ID, kind domainlistings.Kind) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0)
	for _, listing := range r.items {
		if listing.Host != host {
			continue
		}
		if kind != "" && listing.Kind != kind {
			continue
		}
		out = append(out, cloneListing(listing))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	cp := *l
	cp.EventRecorder = events.EventRecorder{}
	cp.ReviewIDs = slices.Clone(l.ReviewIDs)
	cp.BookingIDs = slices.Clone(l.BookingIDs)
	cp.Images = slices.Clone(l.Images)
	if l.Property != nil {
		details := *l.Property
		details.Amenities = slices.Clone(l.Property.Amenities)
		cp.Property = &details
	}
	if l.Experience != nil {
		details := *l.Experience
		details.Languages = slices.Clone(l.Experience.Languages)
		cp.Experience = &details
	}
	return &cp
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
