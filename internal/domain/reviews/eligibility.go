package reviews

import (
	"staybook/internal/domain/booking"
	"staybook/internal/domain/user"
	"staybook/internal/pkg/apperror"
)

var (
	ErrInvalidBooking        = apperror.Invalid("review.invalid_booking", "invalid booking")
	ErrCompletedStayRequired = apperror.Invalid("review.completed_stay_required", "a completed booking is required to leave this review")
	ErrVisibilityRequired    = apperror.Invalid("review.visibility_required", "visibility must be specified")
	ErrHostNotFound          = apperror.NotFound("host.not_found", "host not found")
	ErrGuestNotFound         = apperror.NotFound("guest.not_found", "guest not found")
	ErrRespondForbidden      = apperror.Forbidden("review.respond_forbidden", "only the reviewed host can respond to this review")
	ErrDeleteForbidden       = apperror.Forbidden("review.delete_forbidden", "only the author or an admin can delete this review")
	ErrPrivateReview         = apperror.Forbidden("review.private", "you are not allowed to view this review")
)

// Evidence is a booking offered to justify a review, together with the host of
// the listing it was made on.
type Evidence struct {
	Booking     *booking.Booking
	ListingHost user.ID
}

// Admissible checks that the evidence lets author review subject.
//
// Property and experience reviews need the author's own booking on that listing
// that has not been reviewed yet. Host and guest reviews need a completed booking
// that links guest and host; their duplicates are tracked per angle by the
// repository, not by the booking flag.
func Admissible(subject Subject, author user.ID, ev Evidence) error {
	b := ev.Booking
	if b == nil {
		return ErrInvalidBooking
	}
	switch s := subject.(type) {
	case PropertySubject, ExperienceSubject:
		id, kind, _ := ListingOf(s)
		if b.GuestID != author || b.ListingID() != id || b.Kind() != kind {
			return ErrInvalidBooking
		}
		if b.HasReview {
			return booking.ErrAlreadyReviewed
		}
	case HostSubject:
		if b.GuestID != author || ev.ListingHost != s.HostID {
			return ErrInvalidBooking
		}
		if !b.IsCompleted() {
			return ErrCompletedStayRequired
		}
	case GuestSubject:
		if b.GuestID != s.GuestID || ev.ListingHost != author {
			return ErrInvalidBooking
		}
		if !b.IsCompleted() {
			return ErrCompletedStayRequired
		}
	default:
		return ErrInvalidAngle
	}
	return nil
}
