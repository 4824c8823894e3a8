package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var day1 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestBookingDocumentKeepsTargetVariant(t *testing.T) {
	stay := domainbooking.PropertyStay{
		PropertyID: "prop-1",
		Stay:       daterange.DateRange{Start: day1, End: day1.AddDate(0, 0, 3)},
	}
	slot := domainbooking.ExperienceSlot{
		ExperienceID: "exp-1",
		Date:         day1,
		Slot:         domainbooking.TimeSlot{StartTime: "10:00", EndTime: "12:00"},
	}
	for _, target := range []domainbooking.Target{stay, slot} {
		b := &domainbooking.Booking{
			ID:           "b-1",
			GuestID:      "guest-1",
			Target:       target,
			Guests:       2,
			Total:        money.Money{Amount: 30000, Currency: money.Lira},
			Status:       domainbooking.StatusCancelled,
			Cancellation: &domainbooking.Cancellation{Reason: "plans changed", At: day1},
			CreatedAt:    day1,
			UpdatedAt:    day1,
			Version:      3,
		}
		doc, err := newBookingDocument(b)
		require.NoError(t, err)
		assert.Equal(t, string(target.ListingID()), doc.Target.ListingID)

		raw, err := bson.Marshal(doc)
		require.NoError(t, err)
		var decoded bookingDocument
		require.NoError(t, bson.Unmarshal(raw, &decoded))

		got, err := decoded.toAggregate()
		require.NoError(t, err)
		assert.Equal(t, target, got.Target)
		assert.Equal(t, b.Total, got.Total)
		assert.Equal(t, b.Cancellation, got.Cancellation)
		assert.Equal(t, int64(3), got.Version)
	}
}

func TestBookingReplacementDropsClearedCancellation(t *testing.T) {
	b := &domainbooking.Booking{
		ID:      "b-1",
		GuestID: "guest-1",
		Target: domainbooking.PropertyStay{
			PropertyID: "prop-1",
			Stay:       daterange.DateRange{Start: day1, End: day1.AddDate(0, 0, 2)},
		},
		Guests:    1,
		Total:     money.Money{Amount: 20000, Currency: money.Lira},
		Status:    domainbooking.StatusPending,
		CreatedAt: day1,
		UpdatedAt: day1,
		Version:   1,
	}
	require.NoError(t, b.UpdateStatus(domainbooking.StatusCancelled, "plans changed", day1))
	require.NoError(t, b.UpdateStatus(domainbooking.StatusConfirmed, "", day1.Add(time.Hour)))

	filter, doc, err := bookingReplacement(b)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": "b-1", "version": int64(1)}, filter)
	assert.Equal(t, int64(2), doc.Version)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.Equal(t, "confirmed", fields["status"])
	assert.NotContains(t, fields, "cancellation")
	assert.NotContains(t, fields, "$set")
}

func TestBookingDocumentRejectsUnknownKind(t *testing.T) {
	_, err := bookingDocument{Target: targetDocument{Kind: "boat"}}.toAggregate()
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestReviewDocumentRebuildsSubject(t *testing.T) {
	review := &domainreviews.Review{
		ID:        "r-1",
		AuthorID:  "guest-1",
		Subject:   domainreviews.HostSubject{HostID: "host-1"},
		BookingID: "b-1",
		HostID:    "host-1",
		Rating:    5,
		Comment:   "great host",
		Response:  &domainreviews.Response{Comment: "thanks", At: day1},
		Public:    true,
		CreatedAt: day1,
	}
	doc := newReviewDocument(review)
	assert.Equal(t, subjectDocument{Type: "host", TargetID: "host-1"}, doc.Subject)

	got, err := doc.toAggregate()
	require.NoError(t, err)
	assert.Equal(t, review.Subject, got.Subject)
	assert.Equal(t, review.Response, got.Response)
	assert.True(t, got.Public)
}

func TestReviewFilter(t *testing.T) {
	assert.Empty(t, reviewFilter(domainreviews.Filter{}))
	assert.Equal(t, bson.M{
		"subject.type":      "property",
		"subject.target_id": "prop-1",
		"public":            true,
	}, reviewFilter(domainreviews.Filter{Angle: domainreviews.AngleProperty, TargetID: "prop-1", PublicOnly: true}))
}

func TestListingDocumentKeepsKindDetails(t *testing.T) {
	l := &domainlistings.Listing{
		ID:         "exp-1",
		Kind:       domainlistings.KindExperience,
		Host:       "host-1",
		Title:      "Bosphorus walk",
		Price:      money.Money{Amount: 5000, Currency: money.Euro},
		MaxGuests:  8,
		Active:     true,
		ReviewIDs:  []string{"r-1"},
		Experience: &domainlistings.ExperienceDetails{Category: "tour", DurationHours: 2.5, Languages: []string{"en", "tr"}},
		CreatedAt:  day1,
	}
	doc := newListingDocument(l)
	assert.Nil(t, doc.Property)

	got := doc.toAggregate()
	assert.Equal(t, l.Experience, got.Experience)
	assert.Nil(t, got.Property)
	assert.Equal(t, l.Price, got.Price)
	assert.Equal(t, day1, got.CreatedAt)
}

func TestTimestampZero(t *testing.T) {
	assert.Zero(t, timeToTimestamp(time.Time{}))
	assert.True(t, timestampToTime(0).IsZero())
}
