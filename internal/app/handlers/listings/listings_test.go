package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/policies"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/storage/s3"
	"staybook/internal/pkg/apperror"
)

var (
	now   = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	host  = policies.Actor{ID: "host-1", Roles: []domainuser.Role{domainuser.RoleGuest, domainuser.RoleHost}}
	other = policies.Actor{ID: "host-2", Roles: []domainuser.Role{domainuser.RoleHost}}
	admin = policies.Actor{ID: "admin-1", Roles: []domainuser.Role{domainuser.RoleAdmin}}
)

type recordingUploader struct {
	keys    []string
	body    []string
	removed []string
	err     error
}

func (u *recordingUploader) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	u.keys = append(u.keys, key)
	u.body = append(u.body, string(data))
	return "http://cdn.local/images/" + key, nil
}

func (u *recordingUploader) Remove(_ context.Context, publicURL string) error {
	if u.err != nil {
		return u.err
	}
	u.removed = append(u.removed, publicURL)
	return nil
}

type fixture struct {
	factory memory.Factory
	outbox  *memory.Outbox
	seq     int
}

func newFixture() *fixture {
	return &fixture{factory: memory.NewFactory(), outbox: memory.NewOutbox()}
}

func (f *fixture) ids() string {
	f.seq++
	return fmt.Sprintf("listing-%d", f.seq)
}

func (f *fixture) create(t *testing.T, actor policies.Actor, kind domainlistings.Kind) string {
	t.Helper()
	h := &CreateListingHandler{UoWFactory: f.factory, Outbox: f.outbox, Clock: func() time.Time { return now }, IDs: f.ids}
	out, err := h.Handle(context.Background(), CreateListingCommand{
		Actor: actor,
		Kind:  kind,
		Payload: ListingPayload{
			Title:        "Sea view flat",
			PriceAmount:  450,
			Currency:     "TRY",
			MaxGuests:    3,
			PropertyType: "apartment",
			Bedrooms:     2,
			Category:     "food",
			Languages:    []string{"en", "tr"},
		},
	})
	require.NoError(t, err)
	return out.ID
}

func TestCreateListing(t *testing.T) {
	f := newFixture()
	id := f.create(t, host, domainlistings.KindProperty)

	got, err := (&GetListingHandler{UoWFactory: f.factory}).Handle(context.Background(), GetListingQuery{Kind: domainlistings.KindProperty, ListingID: id})
	require.NoError(t, err)
	assert.Equal(t, "Sea view flat", got.Title)
	assert.Equal(t, "property", got.Type)
	assert.Equal(t, int64(450), got.Price.Amount)
	assert.Equal(t, "₺", got.Price.Currency)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.Property)
	assert.Equal(t, 2, got.Property.Bedrooms)
	assert.Nil(t, got.Experience)

	_, err = (&GetListingHandler{UoWFactory: f.factory}).Handle(context.Background(), GetListingQuery{Kind: domainlistings.KindExperience, ListingID: id})
	assert.ErrorIs(t, err, domainlistings.ErrExperienceNotFound)

	require.NoError(t, f.outbox.Flush(context.Background()))
	queued := f.outbox.Queued()
	require.Len(t, queued, 1)
	assert.Equal(t, "listing.created", queued[0].Name)
}

func TestCreateListingRequiresHost(t *testing.T) {
	f := newFixture()
	h := &CreateListingHandler{UoWFactory: f.factory}
	guest := policies.Actor{ID: "guest-1", Roles: []domainuser.Role{domainuser.RoleGuest}}

	_, err := h.Handle(context.Background(), CreateListingCommand{Actor: guest, Kind: domainlistings.KindProperty, Payload: ListingPayload{Title: "x", MaxGuests: 1}})
	assert.ErrorIs(t, err, policies.ErrHostOnly)

	_, err = h.Handle(context.Background(), CreateListingCommand{Actor: host, Kind: domainlistings.KindProperty, Payload: ListingPayload{Title: " ", MaxGuests: 1}})
	assert.ErrorIs(t, err, domainlistings.ErrTitleRequired)
}

func TestListMyListings(t *testing.T) {
	f := newFixture()
	f.create(t, host, domainlistings.KindProperty)
	f.create(t, host, domainlistings.KindExperience)
	f.create(t, other, domainlistings.KindProperty)

	h := &ListMyListingsHandler{UoWFactory: f.factory}
	mine, err := h.Handle(context.Background(), ListMyListingsQuery{Actor: host, Kind: domainlistings.KindProperty})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "listing-1", mine[0].ID)
}

func TestDeleteListing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	free := f.create(t, host, domainlistings.KindProperty)
	booked := f.create(t, host, domainlistings.KindProperty)

	l, err := f.factory.ListingsRepo.ByID(ctx, domainlistings.ListingID(booked))
	require.NoError(t, err)
	l.AttachBooking("booking-1", now)
	require.NoError(t, f.factory.ListingsRepo.Save(ctx, l))

	h := &DeleteListingHandler{UoWFactory: f.factory, Outbox: f.outbox, Clock: func() time.Time { return now }}
	_, err = h.Handle(ctx, DeleteListingCommand{Actor: other, Kind: domainlistings.KindProperty, ListingID: free})
	assert.ErrorIs(t, err, ErrListingNotOwned)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	out, err := h.Handle(ctx, DeleteListingCommand{Actor: host, Kind: domainlistings.KindProperty, ListingID: free})
	require.NoError(t, err)
	assert.False(t, out.Deactivated)
	_, err = f.factory.ListingsRepo.ByID(ctx, domainlistings.ListingID(free))
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)

	out, err = h.Handle(ctx, DeleteListingCommand{Actor: admin, Kind: domainlistings.KindProperty, ListingID: booked})
	require.NoError(t, err)
	assert.True(t, out.Deactivated)
	l, err = f.factory.ListingsRepo.ByID(ctx, domainlistings.ListingID(booked))
	require.NoError(t, err)
	assert.False(t, l.Active)
}

func TestUploadImage(t *testing.T) {
	f := newFixture()
	id := f.create(t, host, domainlistings.KindExperience)
	uploader := &recordingUploader{}
	h := &UploadImageHandler{UoWFactory: f.factory, Uploader: uploader, Clock: func() time.Time { return now }}
	ctx := context.Background()

	_, err := h.Handle(ctx, UploadImageCommand{Actor: host, Kind: domainlistings.KindExperience, ListingID: id, ContentType: "text/plain", Reader: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrImageType)

	_, err = h.Handle(ctx, UploadImageCommand{Actor: host, Kind: domainlistings.KindExperience, ListingID: id, ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrImageRequired)

	_, err = h.Handle(ctx, UploadImageCommand{Actor: other, Kind: domainlistings.KindExperience, ListingID: id, ContentType: "image/png", Reader: strings.NewReader("png")})
	assert.ErrorIs(t, err, ErrListingNotOwned)

	out, err := h.Handle(ctx, UploadImageCommand{
		Actor:       host,
		Kind:        domainlistings.KindExperience,
		ListingID:   id,
		Filename:    "tour.PNG",
		ContentType: "image/png",
		Size:        3,
		Reader:      strings.NewReader("png"),
	})
	require.NoError(t, err)
	require.Len(t, uploader.keys, 1)
	assert.True(t, strings.HasPrefix(uploader.keys[0], "experience/"+id+"/"))
	assert.True(t, strings.HasSuffix(uploader.keys[0], ".png"))
	assert.Equal(t, []string{"png"}, uploader.body)
	assert.Equal(t, []string{"http://cdn.local/images/" + uploader.keys[0]}, out.Images)

	uploader.err = errors.New("bucket down")
	_, err = h.Handle(ctx, UploadImageCommand{Actor: host, Kind: domainlistings.KindExperience, ListingID: id, ContentType: "image/png", Reader: strings.NewReader("png")})
	assert.ErrorContains(t, err, "bucket down")

	_, err = (&UploadImageHandler{UoWFactory: f.factory}).Handle(ctx, UploadImageCommand{Actor: host, Kind: domainlistings.KindExperience, ListingID: id, ContentType: "image/png", Reader: strings.NewReader("png")})
	assert.ErrorIs(t, err, s3.ErrNotConfigured)
}

func TestUpdateListing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, host, domainlistings.KindProperty)
	require.NoError(t, f.outbox.Flush(ctx))
	h := &UpdateListingHandler{UoWFactory: f.factory, Outbox: f.outbox, Clock: func() time.Time { return now.Add(time.Hour) }}

	amount := int64(900)
	_, err := h.Handle(ctx, UpdateListingCommand{Actor: other, Kind: domainlistings.KindProperty, ListingID: id, Patch: ListingPatch{PriceAmount: &amount}})
	assert.ErrorIs(t, err, ErrListingNotOwned)
	_, err = h.Handle(ctx, UpdateListingCommand{Actor: host, Kind: domainlistings.KindExperience, ListingID: id, Patch: ListingPatch{PriceAmount: &amount}})
	assert.ErrorIs(t, err, domainlistings.ErrExperienceNotFound)

	euro := "EUR"
	_, err = h.Handle(ctx, UpdateListingCommand{Actor: host, Kind: domainlistings.KindProperty, ListingID: id, Patch: ListingPatch{Currency: &euro}})
	require.NoError(t, err)

	guests := 5
	closed := false
	out, err := h.Handle(ctx, UpdateListingCommand{
		Actor:     admin,
		Kind:      domainlistings.KindProperty,
		ListingID: id,
		Patch:     ListingPatch{PriceAmount: &amount, MaxGuests: &guests, Active: &closed},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(900), out.Price.Amount)
	assert.Equal(t, "€", out.Price.Currency, "an amount alone keeps the currency")
	assert.Equal(t, 5, out.MaxGuests)
	assert.False(t, out.IsActive)
	assert.Equal(t, "Sea view flat", out.Title)

	bad := "XYZ"
	_, err = h.Handle(ctx, UpdateListingCommand{Actor: host, Kind: domainlistings.KindProperty, ListingID: id, Patch: ListingPatch{Currency: &bad}})
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)

	require.NoError(t, f.outbox.Flush(ctx))
	queued := f.outbox.Queued()
	require.Len(t, queued, 3)
	assert.Equal(t, "listing.updated", queued[2].Name)
}

func TestRemoveImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, host, domainlistings.KindProperty)
	l, err := f.factory.ListingsRepo.ByID(ctx, domainlistings.ListingID(id))
	require.NoError(t, err)
	l.AddImage("http://cdn.local/images/a.png", now)
	l.AddImage("http://cdn.local/images/b.png", now)
	require.NoError(t, f.factory.ListingsRepo.Save(ctx, l))

	uploader := &recordingUploader{}
	h := &RemoveImageHandler{UoWFactory: f.factory, Uploader: uploader, Clock: func() time.Time { return now }}

	_, err = h.Handle(ctx, RemoveImageCommand{Actor: other, Kind: domainlistings.KindProperty, ListingID: id, Index: 0})
	assert.ErrorIs(t, err, ErrListingNotOwned)
	_, err = h.Handle(ctx, RemoveImageCommand{Actor: host, Kind: domainlistings.KindProperty, ListingID: id, Index: 2})
	assert.ErrorIs(t, err, domainlistings.ErrImageNotFound)

	out, err := h.Handle(ctx, RemoveImageCommand{Actor: host, Kind: domainlistings.KindProperty, ListingID: id, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://cdn.local/images/b.png"}, out.Images)
	assert.Equal(t, []string{"http://cdn.local/images/a.png"}, uploader.removed)

	uploader.err = errors.New("bucket down")
	out, err = h.Handle(ctx, RemoveImageCommand{Actor: host, Kind: domainlistings.KindProperty, ListingID: id, Index: 0})
	require.NoError(t, err, "a failed object delete does not undo the listing change")
	assert.Empty(t, out.Images)
}
