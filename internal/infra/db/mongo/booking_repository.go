package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

var ErrUnknownTarget = errors.New("mongo: unknown booking target")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	filter, doc, err := bookingReplacement(b)
	if err != nil {
		return err
	}
	res, err := r.col.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

// bookingReplacement builds the version-guarded filter and the full document
// that replaces the stored one. Optional fields the aggregate no longer
// carries, such as a cleared cancellation, must not survive the write.
func bookingReplacement(b *domainbooking.Booking) (bson.M, bookingDocument, error) {
	doc, err := newBookingDocument(b)
	if err != nil {
		return nil, bookingDocument{}, err
	}
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	return filter, doc, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context, offset, limit int) ([]*domainbooking.Booking, int, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := newestFirst()
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	items, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"guest_id": string(guestID)}, newestFirst())
}

func (r *BookingRepository) ListByListings(ctx context.Context, ids []listings.ListingID) ([]*domainbooking.Booking, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make(bson.A, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	return r.find(ctx, bson.M{"target.listing_id": bson.M{"$in": raw}}, newestFirst())
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
}

// targetDocument flattens the booking target; Kind selects the variant.
type targetDocument struct {
	Kind      string `bson:"kind"`
	ListingID string `bson:"listing_id"`
	Start     int64  `bson:"start"`
	End       int64  `bson:"end,omitempty"`
	StartTime string `bson:"start_time,omitempty"`
	EndTime   string `bson:"end_time,omitempty"`
}

type cancellationDocument struct {
	Reason string `bson:"reason"`
	At     int64  `bson:"at"`
}

type bookingDocument struct {
	ID            string                `bson:"_id"`
	GuestID       string                `bson:"guest_id"`
	Target        targetDocument        `bson:"target"`
	Guests        int                   `bson:"guests"`
	Total         moneyDocument         `bson:"total"`
	Status        string                `bson:"status"`
	PaymentStatus string                `bson:"payment_status"`
	PaymentMethod string                `bson:"payment_method,omitempty"`
	Notes         string                `bson:"notes,omitempty"`
	Cancellation  *cancellationDocument `bson:"cancellation,omitempty"`
	HasReview     bool                  `bson:"has_review"`
	CreatedAt     int64                 `bson:"created_at"`
	UpdatedAt     int64                 `bson:"updated_at"`
	Version       int64                 `bson:"version"`
}

func newTargetDocument(t domainbooking.Target) (targetDocument, error) {
	switch v := t.(type) {
	case domainbooking.PropertyStay:
		return targetDocument{
			Kind:      string(listings.KindProperty),
			ListingID: string(v.PropertyID),
			Start:     timeToTimestamp(v.Stay.Start),
			End:       timeToTimestamp(v.Stay.End),
		}, nil
	case domainbooking.ExperienceSlot:
		return targetDocument{
			Kind:      string(listings.KindExperience),
			ListingID: string(v.ExperienceID),
			Start:     timeToTimestamp(v.Date),
			StartTime: v.Slot.StartTime,
			EndTime:   v.Slot.EndTime,
		}, nil
	default:
		return targetDocument{}, ErrUnknownTarget
	}
}

func (d targetDocument) toTarget() (domainbooking.Target, error) {
	switch listings.Kind(d.Kind) {
	case listings.KindProperty:
		return domainbooking.PropertyStay{
			PropertyID: listings.ListingID(d.ListingID),
			Stay:       domainrange.DateRange{Start: timestampToTime(d.Start), End: timestampToTime(d.End)},
		}, nil
	case listings.KindExperience:
		return domainbooking.ExperienceSlot{
			ExperienceID: listings.ListingID(d.ListingID),
			Date:         timestampToTime(d.Start),
			Slot:         domainbooking.TimeSlot{StartTime: d.StartTime, EndTime: d.EndTime},
		}, nil
	default:
		return nil, ErrUnknownTarget
	}
}

func newBookingDocument(b *domainbooking.Booking) (bookingDocument, error) {
	target, err := newTargetDocument(b.Target)
	if err != nil {
		return bookingDocument{}, err
	}
	doc := bookingDocument{
		ID:            string(b.ID),
		GuestID:       string(b.GuestID),
		Target:        target,
		Guests:        b.Guests,
		Total:         newMoneyDocument(b.Total),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		PaymentMethod: string(b.PaymentMethod),
		Notes:         b.Notes,
		HasReview:     b.HasReview,
		CreatedAt:     timeToTimestamp(b.CreatedAt),
		UpdatedAt:     timeToTimestamp(b.UpdatedAt),
		Version:       b.Version,
	}
	if c := b.Cancellation; c != nil {
		doc.Cancellation = &cancellationDocument{Reason: c.Reason, At: timeToTimestamp(c.At)}
	}
	return doc, nil
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	target, err := d.Target.toTarget()
	if err != nil {
		return nil, err
	}
	agg := &domainbooking.Booking{
		ID:            domainbooking.BookingID(d.ID),
		GuestID:       domainuser.ID(d.GuestID),
		Target:        target,
		Guests:        d.Guests,
		Total:         d.Total.toMoney(),
		Status:        domainbooking.Status(d.Status),
		PaymentStatus: domainbooking.PaymentStatus(d.PaymentStatus),
		PaymentMethod: domainbooking.PaymentMethod(d.PaymentMethod),
		Notes:         d.Notes,
		HasReview:     d.HasReview,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
	if c := d.Cancellation; c != nil {
		agg.Cancellation = &domainbooking.Cancellation{Reason: c.Reason, At: timestampToTime(c.At)}
	}
	return agg, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
