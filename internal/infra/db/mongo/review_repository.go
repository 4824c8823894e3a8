package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainuser "staybook/internal/domain/user"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(reviewsCollection)}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, filter domainreviews.Filter, offset, limit int) ([]*domainreviews.Review, int, error) {
	query := reviewFilter(filter)
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*domainreviews.Review, 0, len(docs))
	for _, doc := range docs {
		review, err := doc.toAggregate()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, review)
	}
	return out, int(total), nil
}

func (r *ReviewRepository) ExistsForBooking(ctx context.Context, bookingID domainbooking.BookingID, angle domainreviews.Angle) (bool, error) {
	n, err := r.col.CountDocuments(ctx,
		bson.M{"booking_id": string(bookingID), "subject.type": string(angle)},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func reviewFilter(f domainreviews.Filter) bson.M {
	query := bson.M{}
	if f.Angle != "" {
		query["subject.type"] = string(f.Angle)
	}
	if f.TargetID != "" {
		query["subject.target_id"] = f.TargetID
	}
	if f.PublicOnly {
		query["public"] = true
	}
	return query
}

type subjectDocument struct {
	Type     string `bson:"type"`
	TargetID string `bson:"target_id"`
}

type responseDocument struct {
	Comment string `bson:"comment"`
	At      int64  `bson:"at"`
}

type reviewDocument struct {
	ID        string            `bson:"_id"`
	AuthorID  string            `bson:"author_id"`
	Subject   subjectDocument   `bson:"subject"`
	BookingID string            `bson:"booking_id,omitempty"`
	HostID    string            `bson:"host_id,omitempty"`
	Rating    int               `bson:"rating"`
	Comment   string            `bson:"comment"`
	Response  *responseDocument `bson:"response,omitempty"`
	Public    bool              `bson:"public"`
	CreatedAt int64             `bson:"created_at"`
	UpdatedAt int64             `bson:"updated_at"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	doc := reviewDocument{
		ID:        string(r.ID),
		AuthorID:  string(r.AuthorID),
		Subject:   subjectDocument{Type: string(r.Subject.Angle()), TargetID: r.Subject.TargetID()},
		BookingID: string(r.BookingID),
		HostID:    string(r.HostID),
		Rating:    r.Rating,
		Comment:   r.Comment,
		Public:    r.Public,
		CreatedAt: timeToTimestamp(r.CreatedAt),
		UpdatedAt: timeToTimestamp(r.UpdatedAt),
	}
	if resp := r.Response; resp != nil {
		doc.Response = &responseDocument{Comment: resp.Comment, At: timeToTimestamp(resp.At)}
	}
	return doc
}

func (d reviewDocument) toAggregate() (*domainreviews.Review, error) {
	subject, err := domainreviews.NewSubject(domainreviews.Angle(d.Subject.Type), d.Subject.TargetID)
	if err != nil {
		return nil, err
	}
	review := &domainreviews.Review{
		ID:        domainreviews.ReviewID(d.ID),
		AuthorID:  domainuser.ID(d.AuthorID),
		Subject:   subject,
		BookingID: domainbooking.BookingID(d.BookingID),
		HostID:    domainuser.ID(d.HostID),
		Rating:    d.Rating,
		Comment:   d.Comment,
		Public:    d.Public,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
	if resp := d.Response; resp != nil {
		review.Response = &domainreviews.Response{Comment: resp.Comment, At: timestampToTime(resp.At)}
	}
	return review, nil
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
