package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
	"staybook/internal/pkg/apperror"
)

var (
	ErrGuestCountInvalid    = apperror.Invalid("booking.guest_count_invalid", "guest count must be at least 1")
	ErrCapacityExceeded     = apperror.Invalid("booking.capacity_exceeded", "maximum guest count for this listing is %d")
	ErrCancelReasonRequired = apperror.Invalid("booking.cancel_reason_required", "a cancellation reason is required")
	ErrAlreadyReviewed      = apperror.Invalid("booking.already_reviewed", "you have already reviewed this booking")
	ErrNotFound             = apperror.NotFound("booking.not_found", "booking not found")
	ErrGuestRequired        = errors.New("booking: guest id required")
	ErrTargetRequired       = errors.New("booking: target required")
	ErrListingRequired      = errors.New("booking: listing snapshot required")
)

type BookingID string

type Cancellation struct {
	Reason string
	At     time.Time
}

type Booking struct {
	ID            BookingID
	GuestID       user.ID
	Target        Target
	Guests        int
	Total         money.Money
	Status        Status
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	Notes         string
	Cancellation  *Cancellation
	HasReview     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id BookingID) error
	// List pages through every booking, newest first, and reports the total count.
	List(ctx context.Context, offset, limit int) ([]*Booking, int, error)
	ListByGuest(ctx context.Context, guestID user.ID) ([]*Booking, error)
	ListByListings(ctx context.Context, ids []listings.ListingID) ([]*Booking, error)
}

type CreateParams struct {
	ID      BookingID
	GuestID user.ID
	Target  Target
	Guests  int
	Notes   string
	Listing *listings.Listing
	Now     time.Time
}

// ValidateGuestCount is the part of the capacity rule that needs no listing.
func ValidateGuestCount(guests int) error {
	if guests < 1 {
		return ErrGuestCountInvalid
	}
	return nil
}

// NewBooking prices a pending booking against the listing it targets.
func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.GuestID)) == "" {
		return nil, ErrGuestRequired
	}
	if params.Target == nil {
		return nil, ErrTargetRequired
	}
	if err := ValidateGuestCount(params.Guests); err != nil {
		return nil, err
	}
	listing := params.Listing
	if listing == nil {
		return nil, ErrListingRequired
	}
	if listing.ID != params.Target.ListingID() || listing.Kind != params.Target.Kind() {
		return nil, listings.NotFoundFor(params.Target.Kind())
	}
	if err := listing.AcceptsBookings(); err != nil {
		return nil, err
	}
	if params.Guests > listing.MaxGuests {
		return nil, ErrCapacityExceeded.With(listing.MaxGuests)
	}
	price := listing.Price
	if price.Currency == "" {
		price.Currency = money.Lira
	}

	now := params.Now.UTC()
	b := &Booking{
		ID:            params.ID,
		GuestID:       params.GuestID,
		Target:        params.Target,
		Guests:        params.Guests,
		Total:         params.Target.quote(price),
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Notes:         strings.TrimSpace(params.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingCreated{
		BookingID: b.ID,
		Kind:      b.Kind(),
		ListingID: b.ListingID(),
		GuestID:   b.GuestID,
		Guests:    b.Guests,
		Total:     b.Total,
		At:        now,
	})
	return b, nil
}

func (b *Booking) Kind() listings.Kind {
	return b.Target.Kind()
}

func (b *Booking) ListingID() listings.ListingID {
	return b.Target.ListingID()
}

func (b *Booking) IsCompleted() bool {
	return b.Status == StatusCompleted
}

// UpdateStatus moves the booking to any status. Cancelling needs a reason and
// stamps the cancellation date; leaving cancelled clears it.
func (b *Booking) UpdateStatus(status Status, reason string, now time.Time) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	now = now.UTC()
	if status == StatusCancelled {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return ErrCancelReasonRequired
		}
		b.Cancellation = &Cancellation{Reason: reason, At: now}
	} else {
		b.Cancellation = nil
	}
	previous := b.Status
	b.Status = status
	b.UpdatedAt = now
	b.Record(StatusChanged{BookingID: b.ID, From: previous, To: status, Reason: reason, At: now})
	return nil
}

// UpdatePayment sets the payment status; the method changes only when given.
func (b *Booking) UpdatePayment(status PaymentStatus, method PaymentMethod, now time.Time) error {
	if _, err := ParsePaymentStatus(string(status)); err != nil {
		return err
	}
	if method != "" {
		if _, err := ParsePaymentMethod(string(method)); err != nil {
			return err
		}
		b.PaymentMethod = method
	}
	b.PaymentStatus = status
	b.UpdatedAt = now.UTC()
	b.Record(PaymentChanged{BookingID: b.ID, Status: status, Method: b.PaymentMethod, At: b.UpdatedAt})
	return nil
}

// MarkReviewed flips the has-review flag exactly once.
func (b *Booking) MarkReviewed(now time.Time) error {
	if b.HasReview {
		return ErrAlreadyReviewed
	}
	b.HasReview = true
	b.UpdatedAt = now.UTC()
	return nil
}

// MarkDeleted records the removal; the repository performs the hard delete.
func (b *Booking) MarkDeleted(now time.Time) {
	b.Record(BookingDeleted{BookingID: b.ID, ListingID: b.ListingID(), At: now.UTC()})
}
