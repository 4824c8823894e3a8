package dto

import (
	"slices"
	"time"

	domainlistings "staybook/internal/domain/listings"
)

type PropertyDetails struct {
	PropertyType string   `json:"property_type,omitempty"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Amenities    []string `json:"amenities,omitempty"`
}

type ExperienceDetails struct {
	Category      string   `json:"category,omitempty"`
	DurationHours float64  `json:"duration_hours"`
	Languages     []string `json:"languages,omitempty"`
}

type Listing struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	HostID      string             `json:"host_id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Location    string             `json:"location,omitempty"`
	Price       MoneyDTO           `json:"price"`
	MaxGuests   int                `json:"max_guests"`
	IsActive    bool               `json:"is_active"`
	Rating      float64            `json:"rating"`
	ReviewCount int                `json:"review_count"`
	Images      []string           `json:"images"`
	Property    *PropertyDetails   `json:"property,omitempty"`
	Experience  *ExperienceDetails `json:"experience,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func MapListing(l *domainlistings.Listing) Listing {
	out := Listing{
		ID:          string(l.ID),
		Type:        string(l.Kind),
		HostID:      string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Price:       MapMoney(l.Price),
		MaxGuests:   l.MaxGuests,
		IsActive:    l.Active,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		Images:      append([]string{}, l.Images...),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Property != nil {
		out.Property = &PropertyDetails{
			PropertyType: l.Property.PropertyType,
			Bedrooms:     l.Property.Bedrooms,
			Bathrooms:    l.Property.Bathrooms,
			Amenities:    slices.Clone(l.Property.Amenities),
		}
	}
	if l.Experience != nil {
		out.Experience = &ExperienceDetails{
			Category:      l.Experience.Category,
			DurationHours: l.Experience.DurationHours,
			Languages:     slices.Clone(l.Experience.Languages),
		}
	}
	return out
}

func MapListings(items []*domainlistings.Listing) []Listing {
	out := make([]Listing, 0, len(items))
	for _, l := range items {
		out = append(out, MapListing(l))
	}
	return out
}
