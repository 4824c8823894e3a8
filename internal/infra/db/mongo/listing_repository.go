package mongo

import (
	"context"
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(listingsCollection)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
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
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) ListByHost(ctx context.Context, host domainuser.ID, kind domainlistings.Kind) ([]*domainlistings.Listing, error) {
	filter := bson.M{"host_id": string(host)}
	if kind != "" {
		filter["kind"] = string(kind)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainlistings.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type propertyDocument struct {
	PropertyType string   `bson:"property_type"`
	Bedrooms     int      `bson:"bedrooms"`
	Bathrooms    int      `bson:"bathrooms"`
	Amenities    []string `bson:"amenities"`
}

type experienceDocument struct {
	Category      string   `bson:"category"`
	DurationHours float64  `bson:"duration_hours"`
	Languages     []string `bson:"languages"`
}

type listingDocument struct {
	ID          string              `bson:"_id"`
	Kind        string              `bson:"kind"`
	HostID      string              `bson:"host_id"`
	Title       string              `bson:"title"`
	Description string              `bson:"description"`
	Location    string              `bson:"location"`
	Price       moneyDocument       `bson:"price"`
	MaxGuests   int                 `bson:"max_guests"`
	Active      bool                `bson:"active"`
	Rating      float64             `bson:"rating"`
	ReviewCount int                 `bson:"review_count"`
	ReviewIDs   []string            `bson:"review_ids"`
	BookingIDs  []string            `bson:"booking_ids"`
	Images      []string            `bson:"images"`
	Property    *propertyDocument   `bson:"property,omitempty"`
	Experience  *experienceDocument `bson:"experience,omitempty"`
	CreatedAt   int64               `bson:"created_at"`
	UpdatedAt   int64               `bson:"updated_at"`
	Version     int64               `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	doc := listingDocument{
		ID:          string(l.ID),
		Kind:        string(l.Kind),
		HostID:      string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Price:       newMoneyDocument(l.Price),
		MaxGuests:   l.MaxGuests,
		Active:      l.Active,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		ReviewIDs:   slices.Clone(l.ReviewIDs),
		BookingIDs:  slices.Clone(l.BookingIDs),
		Images:      slices.Clone(l.Images),
		CreatedAt:   timeToTimestamp(l.CreatedAt),
		UpdatedAt:   timeToTimestamp(l.UpdatedAt),
		Version:     l.Version,
	}
	if p := l.Property; p != nil {
		doc.Property = &propertyDocument{
			PropertyType: p.PropertyType,
			Bedrooms:     p.Bedrooms,
			Bathrooms:    p.Bathrooms,
			Amenities:    slices.Clone(p.Amenities),
		}
	}
	if e := l.Experience; e != nil {
		doc.Experience = &experienceDocument{
			Category:      e.Category,
			DurationHours: e.DurationHours,
			Languages:     slices.Clone(e.Languages),
		}
	}
	return doc
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	l := &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Kind:        domainlistings.Kind(d.Kind),
		Host:        domainuser.ID(d.HostID),
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Price:       d.Price.toMoney(),
		MaxGuests:   d.MaxGuests,
		Active:      d.Active,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
		ReviewIDs:   d.ReviewIDs,
		BookingIDs:  d.BookingIDs,
		Images:      d.Images,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
	if p := d.Property; p != nil {
		l.Property = &domainlistings.PropertyDetails{
			PropertyType: p.PropertyType,
			Bedrooms:     p.Bedrooms,
			Bathrooms:    p.Bathrooms,
			Amenities:    p.Amenities,
		}
	}
	if e := d.Experience; e != nil {
		l.Experience = &domainlistings.ExperienceDetails{
			Category:      e.Category,
			DurationHours: e.DurationHours,
			Languages:     e.Languages,
		}
	}
	return l
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
