package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/money"
)

func newProperty(t *testing.T) *Listing {
	t.Helper()
	l, err := NewListing(CreateParams{
		ID:        "p-1",
		Kind:      KindProperty,
		Host:      "host-1",
		Title:     "  Bosphorus loft ",
		Price:     money.Money{Amount: 10000},
		MaxGuests: 4,
		Property:  &PropertyDetails{PropertyType: "apartment", Bedrooms: 2},
		Now:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return l
}

func TestNewListingDefaults(t *testing.T) {
	l := newProperty(t)

	assert.Equal(t, "Bosphorus loft", l.Title)
	assert.Equal(t, money.Lira, l.Price.Currency)
	assert.True(t, l.Active)
	assert.NotNil(t, l.Property)
	assert.Nil(t, l.Experience)
	require.Len(t, l.PendingEvents(), 1)
	assert.Equal(t, "listing.created", l.PendingEvents()[0].EventName())
}

func TestNewListingValidation(t *testing.T) {
	base := CreateParams{ID: "x", Kind: KindExperience, Host: "h", Title: "Cooking class", MaxGuests: 1}

	p := base
	p.Kind = "castle"
	_, err := NewListing(p)
	assert.ErrorIs(t, err, ErrInvalidKind)

	p = base
	p.Title = " "
	_, err = NewListing(p)
	assert.ErrorIs(t, err, ErrTitleRequired)

	p = base
	p.MaxGuests = 0
	_, err = NewListing(p)
	assert.ErrorIs(t, err, ErrMaxGuests)

	p = base
	p.Price = money.Money{Amount: 100, Currency: "¥"}
	_, err = NewListing(p)
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)
}

func TestReviewReferences(t *testing.T) {
	l := newProperty(t)
	now := time.Now()

	l.AppendReview("r-1", now)
	l.AppendReview("r-1", now)
	l.AppendReview("r-2", now)
	assert.Equal(t, []string{"r-1", "r-2"}, l.ReviewIDs)

	l.ApplyRating(4.5, 2, now)
	assert.True(t, l.RemoveReview("r-1", now))
	assert.False(t, l.RemoveReview("r-1", now))
	assert.Equal(t, []string{"r-2"}, l.ReviewIDs)
	assert.Equal(t, 4.5, l.Rating)
	assert.Equal(t, 2, l.ReviewCount)
}

func TestDeactivateBlocksBookings(t *testing.T) {
	l := newProperty(t)
	require.NoError(t, l.AcceptsBookings())

	l.Deactivate(time.Now())
	assert.ErrorIs(t, l.AcceptsBookings(), ErrNotAcceptingGuests)
}

func TestNotFoundFor(t *testing.T) {
	assert.ErrorIs(t, NotFoundFor(KindProperty), ErrPropertyNotFound)
	assert.ErrorIs(t, NotFoundFor(KindExperience), ErrExperienceNotFound)
}

func TestUpdateAppliesOnlyGivenFields(t *testing.T) {
	l := newProperty(t)
	l.PullEvents()
	later := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	guests := 6
	inactive := false
	bedrooms := 3

	err := l.Update(UpdateParams{
		Price:     &money.Money{Amount: 12500, Currency: "USD"},
		MaxGuests: &guests,
		Active:    &inactive,
		Bedrooms:  &bedrooms,
		Languages: []string{"en"},
	}, later)
	require.NoError(t, err)

	assert.Equal(t, "Bosphorus loft", l.Title)
	assert.Equal(t, money.Money{Amount: 12500, Currency: money.Dollar}, l.Price)
	assert.Equal(t, 6, l.MaxGuests)
	assert.False(t, l.Active)
	assert.ErrorIs(t, l.AcceptsBookings(), ErrNotAcceptingGuests)
	assert.Equal(t, 3, l.Property.Bedrooms)
	assert.Equal(t, "apartment", l.Property.PropertyType)
	assert.Nil(t, l.Experience)
	assert.Equal(t, later, l.UpdatedAt)
	require.Len(t, l.PendingEvents(), 1)
	assert.Equal(t, "listing.updated", l.PendingEvents()[0].EventName())
}

func TestUpdateRejectsInvalidFieldsAtomically(t *testing.T) {
	l := newProperty(t)
	blank := "  "
	zero := 0
	title := "Renamed"

	assert.ErrorIs(t, l.Update(UpdateParams{Title: &blank}, time.Now()), ErrTitleRequired)
	assert.ErrorIs(t, l.Update(UpdateParams{Title: &title, MaxGuests: &zero}, time.Now()), ErrMaxGuests)
	assert.ErrorIs(t, l.Update(UpdateParams{Title: &title, Price: &money.Money{Amount: -1}}, time.Now()), money.ErrNegativeAmount)
	assert.Equal(t, "Bosphorus loft", l.Title)
	assert.Equal(t, 4, l.MaxGuests)
}

func TestRemoveImage(t *testing.T) {
	l := newProperty(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l.AddImage("http://cdn/a.png", now)
	l.AddImage("http://cdn/b.png", now)

	_, err := l.RemoveImage(2, now)
	assert.ErrorIs(t, err, ErrImageNotFound)
	_, err = l.RemoveImage(-1, now)
	assert.ErrorIs(t, err, ErrImageNotFound)

	url, err := l.RemoveImage(0, now)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/a.png", url)
	assert.Equal(t, []string{"http://cdn/b.png"}, l.Images)
}
