package ginserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/queries"
	"staybook/internal/pkg/apperror"
)

var errInvalidDate = apperror.Invalid("request.invalid_date", "dates must be YYYY-MM-DD or RFC 3339")

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

// flexibleDate accepts a calendar date or a full RFC 3339 timestamp.
type flexibleDate struct {
	time.Time
}

func (d *flexibleDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errInvalidDate
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return errInvalidDate
}

type timeSlotRequest struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type createBookingRequest struct {
	BookingType  string           `json:"bookingType"`
	PropertyID   string           `json:"propertyId"`
	ExperienceID string           `json:"experienceId"`
	StartDate    flexibleDate     `json:"startDate"`
	EndDate      flexibleDate     `json:"endDate"`
	TimeSlot     *timeSlotRequest `json:"timeSlot"`
	GuestCount   int              `json:"guestCount"`
	Notes        string           `json:"notes"`
}

type updateStatusRequest struct {
	Status             string `json:"status"`
	CancellationReason string `json:"cancellationReason"`
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"paymentStatus"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		Actor:           actorFrom(c),
		Type:            req.BookingType,
		PropertyID:      req.PropertyID,
		ExperienceID:    req.ExperienceID,
		StartDate:       req.StartDate.Time,
		EndDate:         req.EndDate.Time,
		Guests:          req.GuestCount,
		Notes:           req.Notes,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	if req.TimeSlot != nil {
		cmd.StartTime = req.TimeSlot.StartTime
		cmd.EndTime = req.TimeSlot.EndTime
	}
	booking, err := commands.Dispatch[bookingapp.CreateBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"booking": booking,
		"message": localized(c, "booking.created", "booking created successfully"),
	})
}

func (h BookingHandler) List(c *gin.Context) {
	query := bookingapp.ListBookingsQuery{
		Actor: actorFrom(c),
		Page:  parsePositiveInt(c.Query("page"), 1),
		Limit: parsePositiveInt(c.Query("limit"), 0),
	}
	page, err := queries.Ask[bookingapp.ListBookingsQuery, dto.BookingPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h BookingHandler) Mine(c *gin.Context) {
	items, err := queries.Ask[bookingapp.ListMyBookingsQuery, []dto.Booking](c.Request.Context(), h.Queries, bookingapp.ListMyBookingsQuery{Actor: actorFrom(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": nonNil(items)})
}

func (h BookingHandler) HostBookings(c *gin.Context) {
	items, err := queries.Ask[bookingapp.ListHostBookingsQuery, []dto.Booking](c.Request.Context(), h.Queries, bookingapp.ListHostBookingsQuery{Actor: actorFrom(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": nonNil(items)})
}

func (h BookingHandler) Get(c *gin.Context) {
	query := bookingapp.GetBookingQuery{Actor: actorFrom(c), BookingID: c.Param("id")}
	booking, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformed(c, h.Logger)
		return
	}
	cmd := bookingapp.UpdateStatusCommand{
		Actor:     actorFrom(c),
		BookingID: c.Param("id"),
		Status:    req.Status,
		Reason:    req.CancellationReason,
	}
	booking, err := commands.Dispatch[bookingapp.UpdateStatusCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking": booking,
		"message": localized(c, "booking.status_updated", "booking status updated"),
	})
}

func (h BookingHandler) UpdatePayment(c *gin.Context) {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformed(c, h.Logger)
		return
	}
	cmd := bookingapp.UpdatePaymentCommand{
		Actor:         actorFrom(c),
		BookingID:     c.Param("id"),
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
	}
	booking, err := commands.Dispatch[bookingapp.UpdatePaymentCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking": booking,
		"message": localized(c, "booking.payment_updated", "payment status updated"),
	})
}

func (h BookingHandler) Delete(c *gin.Context) {
	cmd := bookingapp.DeleteBookingCommand{Actor: actorFrom(c), BookingID: c.Param("id")}
	if _, err := commands.Dispatch[bookingapp.DeleteBookingCommand, *bookingapp.DeleteBookingResult](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": localized(c, "booking.deleted", "booking deleted")})
}

// bindError keeps the date error's own message; other bind failures are malformed bodies.
func (h BookingHandler) bindError(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); ok {
		respondError(c, h.Logger, appErr)
		return
	}
	respondMalformed(c, h.Logger)
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
