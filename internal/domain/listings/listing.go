package listings

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
	"staybook/internal/pkg/apperror"
)

var (
	ErrInvalidKind        = apperror.Invalid("listing.invalid_kind", "listing type must be property or experience")
	ErrTitleRequired      = apperror.Invalid("listing.title_required", "title is required")
	ErrMaxGuests          = apperror.Invalid("listing.max_guests", "maximum guest count must be at least 1")
	ErrNotAcceptingGuests = apperror.Invalid("listing.inactive", "this listing is not accepting bookings")
	ErrNotFound           = apperror.NotFound("listing.not_found", "listing not found")
	ErrPropertyNotFound   = apperror.NotFound("property.not_found", "property not found")
	ErrExperienceNotFound = apperror.NotFound("experience.not_found", "experience not found")
	ErrImageNotFound      = apperror.NotFound("listing.image_not_found", "image not found")
	ErrHostRequired       = errors.New("listings: host is required")
	ErrIDRequired         = errors.New("listings: id is required")
)

type ListingID string

// Kind tells a Property from an Experience. Both share one catalogue.
type Kind string

const (
	KindProperty   Kind = "property"
	KindExperience Kind = "experience"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindProperty:
		return KindProperty, nil
	case KindExperience:
		return KindExperience, nil
	default:
		return "", ErrInvalidKind
	}
}

// NotFoundFor returns the kind specific not-found error.
func NotFoundFor(kind Kind) error {
	switch kind {
	case KindProperty:
		return ErrPropertyNotFound
	case KindExperience:
		return ErrExperienceNotFound
	default:
		return ErrNotFound
	}
}

type PropertyDetails struct {
	PropertyType string
	Bedrooms     int
	Bathrooms    int
	Amenities    []string
}

type ExperienceDetails struct {
	Category      string
	DurationHours float64
	Languages     []string
}

type Listing struct {
	ID          ListingID
	Kind        Kind
	Host        user.ID
	Title       string
	Description string
	Location    string
	Price       money.Money
	MaxGuests   int
	Active      bool
	Rating      float64
	ReviewCount int
	ReviewIDs   []string
	BookingIDs  []string
	Images      []string
	Property    *PropertyDetails
	Experience  *ExperienceDetails
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	// ListByHost returns the host's listings, newest first. An empty kind means both kinds.
	ListByHost(ctx context.Context, host user.ID, kind Kind) ([]*Listing, error)
}

type CreateParams struct {
	ID          ListingID
	Kind        Kind
	Host        user.ID
	Title       string
	Description string
	Location    string
	Price       money.Money
	MaxGuests   int
	Property    *PropertyDetails
	Experience  *ExperienceDetails
	Now         time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	kind, err := ParseKind(string(params.Kind))
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if params.MaxGuests < 1 {
		return nil, ErrMaxGuests
	}
	price, err := money.New(params.Price.Amount, params.Price.Currency)
	if err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	l := &Listing{
		ID:          params.ID,
		Kind:        kind,
		Host:        params.Host,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		Location:    strings.TrimSpace(params.Location),
		Price:       price,
		MaxGuests:   params.MaxGuests,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch kind {
	case KindProperty:
		details := PropertyDetails{}
		if params.Property != nil {
			details = *params.Property
			details.Amenities = slices.Clone(params.Property.Amenities)
		}
		l.Property = &details
	case KindExperience:
		details := ExperienceDetails{}
		if params.Experience != nil {
			details = *params.Experience
			details.Languages = slices.Clone(params.Experience.Languages)
		}
		l.Experience = &details
	}
	l.Record(ListingCreated{ListingID: l.ID, Kind: l.Kind, Host: l.Host, At: now})
	return l, nil
}

// UpdateParams carries a partial edit; nil fields keep their current value.
type UpdateParams struct {
	Title         *string
	Description   *string
	Location      *string
	Price         *money.Money
	MaxGuests     *int
	Active        *bool
	PropertyType  *string
	Bedrooms      *int
	Bathrooms     *int
	Amenities     []string
	Category      *string
	DurationHours *float64
	Languages     []string
}

// Update applies params after validating every given field. Nothing changes
// when one of them is invalid.
func (l *Listing) Update(params UpdateParams, now time.Time) error {
	title := l.Title
	if params.Title != nil {
		title = strings.TrimSpace(*params.Title)
		if title == "" {
			return ErrTitleRequired
		}
	}
	price := l.Price
	if params.Price != nil {
		p, err := money.New(params.Price.Amount, params.Price.Currency)
		if err != nil {
			return err
		}
		price = p
	}
	if params.MaxGuests != nil && *params.MaxGuests < 1 {
		return ErrMaxGuests
	}

	l.Title = title
	l.Price = price
	if params.Description != nil {
		l.Description = strings.TrimSpace(*params.Description)
	}
	if params.Location != nil {
		l.Location = strings.TrimSpace(*params.Location)
	}
	if params.MaxGuests != nil {
		l.MaxGuests = *params.MaxGuests
	}
	if params.Active != nil {
		l.Active = *params.Active
	}
	switch {
	case l.Property != nil:
		if params.PropertyType != nil {
			l.Property.PropertyType = strings.TrimSpace(*params.PropertyType)
		}
		if params.Bedrooms != nil {
			l.Property.Bedrooms = *params.Bedrooms
		}
		if params.Bathrooms != nil {
			l.Property.Bathrooms = *params.Bathrooms
		}
		if params.Amenities != nil {
			l.Property.Amenities = slices.Clone(params.Amenities)
		}
	case l.Experience != nil:
		if params.Category != nil {
			l.Experience.Category = strings.TrimSpace(*params.Category)
		}
		if params.DurationHours != nil {
			l.Experience.DurationHours = *params.DurationHours
		}
		if params.Languages != nil {
			l.Experience.Languages = slices.Clone(params.Languages)
		}
	}
	l.touch(now)
	l.Record(ListingUpdated{ListingID: l.ID, Price: l.Price, MaxGuests: l.MaxGuests, Active: l.Active, At: l.UpdatedAt})
	return nil
}

// AcceptsBookings reports whether new bookings may target the listing.
func (l *Listing) AcceptsBookings() error {
	if !l.Active {
		return ErrNotAcceptingGuests
	}
	return nil
}

func (l *Listing) OwnedBy(id user.ID) bool {
	return id != "" && l.Host == id
}

func (l *Listing) AttachBooking(bookingID string, now time.Time) {
	if slices.Contains(l.BookingIDs, bookingID) {
		return
	}
	l.BookingIDs = append(l.BookingIDs, bookingID)
	l.touch(now)
}

func (l *Listing) DetachBooking(bookingID string, now time.Time) bool {
	idx := slices.Index(l.BookingIDs, bookingID)
	if idx < 0 {
		return false
	}
	l.BookingIDs = slices.Delete(l.BookingIDs, idx, idx+1)
	l.touch(now)
	return true
}

func (l *Listing) AppendReview(reviewID string, now time.Time) {
	if slices.Contains(l.ReviewIDs, reviewID) {
		return
	}
	l.ReviewIDs = append(l.ReviewIDs, reviewID)
	l.touch(now)
}

// RemoveReview pulls a review reference; rating and count are left as they are.
func (l *Listing) RemoveReview(reviewID string, now time.Time) bool {
	idx := slices.Index(l.ReviewIDs, reviewID)
	if idx < 0 {
		return false
	}
	l.ReviewIDs = slices.Delete(l.ReviewIDs, idx, idx+1)
	l.touch(now)
	return true
}

// ApplyRating stores a recomputed aggregate.
func (l *Listing) ApplyRating(rating float64, count int, now time.Time) {
	l.Rating = rating
	l.ReviewCount = count
	l.touch(now)
	l.Record(RatingRecomputed{ListingID: l.ID, Rating: rating, ReviewCount: count, At: l.UpdatedAt})
}

func (l *Listing) AddImage(url string, now time.Time) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	l.Images = append(l.Images, url)
	l.touch(now)
}

// RemoveImage drops the image at index and returns its URL.
func (l *Listing) RemoveImage(index int, now time.Time) (string, error) {
	if index < 0 || index >= len(l.Images) {
		return "", ErrImageNotFound
	}
	url := l.Images[index]
	l.Images = slices.Delete(l.Images, index, index+1)
	l.touch(now)
	return url, nil
}

// Deactivate hides a listing that cannot be deleted because bookings reference it.
func (l *Listing) Deactivate(now time.Time) {
	if !l.Active {
		return
	}
	l.Active = false
	l.touch(now)
	l.Record(ListingDeactivated{ListingID: l.ID, At: l.UpdatedAt})
}

func (l *Listing) HasBookings() bool {
	return len(l.BookingIDs) > 0
}

func (l *Listing) touch(now time.Time) {
	l.UpdatedAt = now.UTC()
}
