package reviews

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/user"
	"staybook/internal/pkg/apperror"
)

const minCommentLength = 3

var (
	ErrRatingCommentRequired = apperror.Invalid("review.rating_comment_required", "rating and comment are required")
	ErrInvalidRating         = apperror.Invalid("review.invalid_rating", "rating must be a whole number between 1 and 5")
	ErrCommentTooShort       = apperror.Invalid("review.comment_too_short", "comment must be at least 3 characters")
	ErrResponseRequired      = apperror.Invalid("review.response_required", "response comment is required")
	ErrNotFound              = apperror.NotFound("review.not_found", "review not found")
	ErrAuthorRequired        = errors.New("reviews: author required")
)

type ReviewID string

type Response struct {
	Comment string
	At      time.Time
}

// Review is one rating of a subject. HostID is the listing host for property and
// experience reviews.
type Review struct {
	ID        ReviewID
	AuthorID  user.ID
	Subject   Subject
	BookingID booking.BookingID
	HostID    user.ID
	Rating    int
	Comment   string
	Response  *Response
	Public    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

// Filter narrows review listings. Zero values match everything; PublicOnly
// hides reviews an admin has made private.
type Filter struct {
	Angle      Angle
	TargetID   string
	PublicOnly bool
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ReviewID) error
	// List pages matching reviews newest first; limit <= 0 returns all of them.
	List(ctx context.Context, filter Filter, offset, limit int) ([]*Review, int, error)
	ExistsForBooking(ctx context.Context, bookingID booking.BookingID, angle Angle) (bool, error)
}

type CreateParams struct {
	ID        ReviewID
	AuthorID  user.ID
	Subject   Subject
	BookingID booking.BookingID
	HostID    user.ID
	Rating    int
	Comment   string
	Now       time.Time
}

// ValidateContent checks rating and comment before any eligibility lookups.
func ValidateContent(rating int, comment string) error {
	comment = strings.TrimSpace(comment)
	if rating == 0 || comment == "" {
		return ErrRatingCommentRequired
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	if utf8.RuneCountInString(comment) < minCommentLength {
		return ErrCommentTooShort
	}
	return nil
}

func NewReview(params CreateParams) (*Review, error) {
	if strings.TrimSpace(string(params.AuthorID)) == "" {
		return nil, ErrAuthorRequired
	}
	if params.Subject == nil || strings.TrimSpace(params.Subject.TargetID()) == "" {
		return nil, ErrTargetRequired
	}
	if err := ValidateContent(params.Rating, params.Comment); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	r := &Review{
		ID:        params.ID,
		AuthorID:  params.AuthorID,
		Subject:   params.Subject,
		BookingID: params.BookingID,
		HostID:    params.HostID,
		Rating:    params.Rating,
		Comment:   strings.TrimSpace(params.Comment),
		Public:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Record(ReviewCreated{
		ReviewID:  r.ID,
		Angle:     r.Angle(),
		TargetID:  r.Subject.TargetID(),
		BookingID: r.BookingID,
		Rating:    r.Rating,
		At:        now,
	})
	return r, nil
}

func (r *Review) Angle() Angle {
	return r.Subject.Angle()
}

// Listing returns the reviewed listing for property and experience reviews.
func (r *Review) Listing() (listings.ListingID, listings.Kind, bool) {
	return ListingOf(r.Subject)
}

// Respond attaches the host response, replacing an earlier one.
func (r *Review) Respond(comment string, now time.Time) error {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ErrResponseRequired
	}
	now = now.UTC()
	r.Response = &Response{Comment: comment, At: now}
	r.UpdatedAt = now
	r.Record(ReviewResponded{ReviewID: r.ID, At: now})
	return nil
}

func (r *Review) SetVisibility(public bool, now time.Time) {
	r.Public = public
	r.UpdatedAt = now.UTC()
	r.Record(VisibilityChanged{ReviewID: r.ID, Public: public, At: r.UpdatedAt})
}

func (r *Review) MarkDeleted(now time.Time) {
	r.Record(ReviewDeleted{ReviewID: r.ID, Angle: r.Angle(), TargetID: r.Subject.TargetID(), At: now.UTC()})
}
