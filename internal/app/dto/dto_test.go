package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func TestNormalizePage(t *testing.T) {
	page, limit := NormalizePage(0, 0, 20)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	_, limit = NormalizePage(2, 1000, 20)
	assert.Equal(t, maxPageSize, limit)

	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 3, PageCount(21, 10))
	assert.Equal(t, 10, Offset(2, 10))
}

func TestMapBookingCancellationAndTarget(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stay, err := daterange.New(start, start.AddDate(0, 0, 3))
	require.NoError(t, err)
	at := start.AddDate(0, 0, -1)
	b := &domainbooking.Booking{
		ID:           "b-1",
		GuestID:      "g-1",
		Target:       domainbooking.PropertyStay{PropertyID: "p-1", Stay: stay},
		Guests:       2,
		Total:        money.Must(300, money.Lira),
		Status:       domainbooking.StatusCancelled,
		Cancellation: &domainbooking.Cancellation{Reason: "plans changed", At: at},
	}

	out := MapBooking(b)
	assert.Equal(t, "property", out.Type)
	assert.Equal(t, "p-1", out.PropertyID)
	require.NotNil(t, out.EndDate)
	assert.Equal(t, stay.End, *out.EndDate)
	assert.Nil(t, out.TimeSlot)
	assert.Equal(t, "plans changed", out.CancellationReason)
	assert.Equal(t, MoneyDTO{Amount: 300, Currency: "₺"}, out.TotalPrice)
}
