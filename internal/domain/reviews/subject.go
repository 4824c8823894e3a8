package reviews

import (
	"strings"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/user"
	"staybook/internal/pkg/apperror"
)

var (
	ErrInvalidAngle   = apperror.Invalid("review.invalid_type", "review type must be property, experience, host or guest")
	ErrTargetRequired = apperror.Invalid("review.target_required", "review target is required")
)

// Angle names what a review is about.
type Angle string

const (
	AngleProperty   Angle = "property"
	AngleExperience Angle = "experience"
	AngleHost       Angle = "host"
	AngleGuest      Angle = "guest"
)

func ParseAngle(raw string) (Angle, error) {
	switch a := Angle(strings.ToLower(strings.TrimSpace(raw))); a {
	case AngleProperty, AngleExperience, AngleHost, AngleGuest:
		return a, nil
	default:
		return "", ErrInvalidAngle
	}
}

// Subject is the reviewed entity: one variant per angle.
type Subject interface {
	Angle() Angle
	TargetID() string
	subject()
}

type PropertySubject struct{ PropertyID listings.ListingID }

type ExperienceSubject struct{ ExperienceID listings.ListingID }

type HostSubject struct{ HostID user.ID }

type GuestSubject struct{ GuestID user.ID }

func (PropertySubject) Angle() Angle       { return AngleProperty }
func (s PropertySubject) TargetID() string { return string(s.PropertyID) }
func (PropertySubject) subject()           {}

func (ExperienceSubject) Angle() Angle       { return AngleExperience }
func (s ExperienceSubject) TargetID() string { return string(s.ExperienceID) }
func (ExperienceSubject) subject()           {}

func (HostSubject) Angle() Angle       { return AngleHost }
func (s HostSubject) TargetID() string { return string(s.HostID) }
func (HostSubject) subject()           {}

func (GuestSubject) Angle() Angle       { return AngleGuest }
func (s GuestSubject) TargetID() string { return string(s.GuestID) }
func (GuestSubject) subject()           {}

func NewSubject(angle Angle, targetID string) (Subject, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, ErrTargetRequired
	}
	switch angle {
	case AngleProperty:
		return PropertySubject{PropertyID: listings.ListingID(targetID)}, nil
	case AngleExperience:
		return ExperienceSubject{ExperienceID: listings.ListingID(targetID)}, nil
	case AngleHost:
		return HostSubject{HostID: user.ID(targetID)}, nil
	case AngleGuest:
		return GuestSubject{GuestID: user.ID(targetID)}, nil
	default:
		return nil, ErrInvalidAngle
	}
}

// ListingOf returns the reviewed listing for property and experience subjects.
func ListingOf(s Subject) (listings.ListingID, listings.Kind, bool) {
	switch v := s.(type) {
	case PropertySubject:
		return v.PropertyID, listings.KindProperty, true
	case ExperienceSubject:
		return v.ExperienceID, listings.KindExperience, true
	default:
		return "", "", false
	}
}
