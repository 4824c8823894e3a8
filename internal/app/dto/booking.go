package dto

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
)

type TimeSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type Booking struct {
	ID                 string     `json:"id"`
	Type               string     `json:"type"`
	PropertyID         string     `json:"property_id,omitempty"`
	ExperienceID       string     `json:"experience_id,omitempty"`
	GuestID            string     `json:"guest_id"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	TimeSlot           *TimeSlot  `json:"time_slot,omitempty"`
	Guests             int        `json:"guests"`
	TotalPrice         MoneyDTO   `json:"total_price"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"payment_status"`
	PaymentMethod      string     `json:"payment_method,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancellationDate   *time.Time `json:"cancellation_date,omitempty"`
	HasReview          bool       `json:"has_review"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type BookingPage struct {
	Bookings []Booking `json:"bookings"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int       `json:"total"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	out := Booking{
		ID:            string(b.ID),
		Type:          string(b.Kind()),
		GuestID:       string(b.GuestID),
		StartDate:     b.Target.StartDate(),
		Guests:        b.Guests,
		TotalPrice:    MapMoney(b.Total),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		PaymentMethod: string(b.PaymentMethod),
		Notes:         b.Notes,
		HasReview:     b.HasReview,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	switch target := b.Target.(type) {
	case domainbooking.PropertyStay:
		out.PropertyID = string(target.PropertyID)
		end := target.Stay.End
		out.EndDate = &end
	case domainbooking.ExperienceSlot:
		out.ExperienceID = string(target.ExperienceID)
		out.TimeSlot = &TimeSlot{StartTime: target.Slot.StartTime, EndTime: target.Slot.EndTime}
	}
	if b.Cancellation != nil {
		at := b.Cancellation.At
		out.CancellationReason = b.Cancellation.Reason
		out.CancellationDate = &at
	}
	return out
}

func MapBookings(items []*domainbooking.Booking) []Booking {
	out := make([]Booking, 0, len(items))
	for _, b := range items {
		out = append(out, MapBooking(b))
	}
	return out
}
