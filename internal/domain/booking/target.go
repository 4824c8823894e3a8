package booking

import (
	"strings"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/pkg/apperror"
)

var (
	ErrInvalidKind          = apperror.Invalid("booking.invalid_type", "booking type must be property or experience")
	ErrPropertyIDRequired   = apperror.Invalid("booking.property_required", "property id is required for property bookings")
	ErrExperienceIDRequired = apperror.Invalid("booking.experience_required", "experience id is required for experience bookings")
	ErrStartDateRequired    = apperror.Invalid("booking.start_date_required", "start date is required")
	ErrEndDateRequired      = apperror.Invalid("booking.end_date_required", "end date is required for property bookings")
	ErrTimeSlotRequired     = apperror.Invalid("booking.time_slot_required", "time slot start and end time are required for experience bookings")
)

// Target is what a booking reserves. It is either a PropertyStay or an ExperienceSlot.
type Target interface {
	Kind() listings.Kind
	ListingID() listings.ListingID
	StartDate() time.Time
	quote(price money.Money) money.Money
}

// PropertyStay reserves a property for a date range, billed per started day.
type PropertyStay struct {
	PropertyID listings.ListingID
	Stay       daterange.DateRange
}

func (PropertyStay) Kind() listings.Kind             { return listings.KindProperty }
func (p PropertyStay) ListingID() listings.ListingID { return p.PropertyID }
func (p PropertyStay) StartDate() time.Time          { return p.Stay.Start }

func (p PropertyStay) quote(price money.Money) money.Money {
	return price.Multiply(p.Stay.BilledDays())
}

type TimeSlot struct {
	StartTime string
	EndTime   string
}

func (s TimeSlot) Complete() bool {
	return strings.TrimSpace(s.StartTime) != "" && strings.TrimSpace(s.EndTime) != ""
}

// ExperienceSlot reserves a seat in an experience session at a flat price.
type ExperienceSlot struct {
	ExperienceID listings.ListingID
	Date         time.Time
	Slot         TimeSlot
}

func (ExperienceSlot) Kind() listings.Kind             { return listings.KindExperience }
func (e ExperienceSlot) ListingID() listings.ListingID { return e.ExperienceID }
func (e ExperienceSlot) StartDate() time.Time          { return e.Date }

func (e ExperienceSlot) quote(price money.Money) money.Money {
	return price
}

// TargetParams is the flat shape a client sends; NewTarget keeps only the fields valid for the kind.
type TargetParams struct {
	Kind         string
	PropertyID   string
	ExperienceID string
	StartDate    time.Time
	EndDate      time.Time
	StartTime    string
	EndTime      string
}

func NewTarget(params TargetParams) (Target, error) {
	kind, err := listings.ParseKind(params.Kind)
	if err != nil {
		return nil, ErrInvalidKind
	}
	switch kind {
	case listings.KindProperty:
		id := strings.TrimSpace(params.PropertyID)
		if id == "" {
			return nil, ErrPropertyIDRequired
		}
		if params.StartDate.IsZero() {
			return nil, ErrStartDateRequired
		}
		if params.EndDate.IsZero() {
			return nil, ErrEndDateRequired
		}
		stay, err := daterange.New(params.StartDate, params.EndDate)
		if err != nil {
			return nil, err
		}
		return PropertyStay{PropertyID: listings.ListingID(id), Stay: stay}, nil
	default:
		id := strings.TrimSpace(params.ExperienceID)
		if id == "" {
			return nil, ErrExperienceIDRequired
		}
		if params.StartDate.IsZero() {
			return nil, ErrStartDateRequired
		}
		slot := TimeSlot{StartTime: strings.TrimSpace(params.StartTime), EndTime: strings.TrimSpace(params.EndTime)}
		if !slot.Complete() {
			return nil, ErrTimeSlotRequired
		}
		return ExperienceSlot{ExperienceID: listings.ListingID(id), Date: params.StartDate.UTC(), Slot: slot}, nil
	}
}
