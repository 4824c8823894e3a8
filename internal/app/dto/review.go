package dto

import (
	"time"

	domainreviews "staybook/internal/domain/reviews"
)

type ReviewResponse struct {
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

type Review struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	TargetID  string          `json:"target_id"`
	AuthorID  string          `json:"author_id"`
	BookingID string          `json:"booking_id,omitempty"`
	HostID    string          `json:"host_id,omitempty"`
	Rating    int             `json:"rating"`
	Comment   string          `json:"comment"`
	Response  *ReviewResponse `json:"response,omitempty"`
	IsPublic  bool            `json:"is_public"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ReviewPage struct {
	Reviews []Review `json:"reviews"`
	Page    int      `json:"page"`
	Pages   int      `json:"pages"`
	Total   int      `json:"total"`
}

func MapReview(r *domainreviews.Review) Review {
	out := Review{
		ID:        string(r.ID),
		Type:      string(r.Angle()),
		TargetID:  r.Subject.TargetID(),
		AuthorID:  string(r.AuthorID),
		BookingID: string(r.BookingID),
		HostID:    string(r.HostID),
		Rating:    r.Rating,
		Comment:   r.Comment,
		IsPublic:  r.Public,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Response != nil {
		out.Response = &ReviewResponse{Comment: r.Response.Comment, Date: r.Response.At}
	}
	return out
}

func MapReviews(items []*domainreviews.Review) []Review {
	out := make([]Review, 0, len(items))
	for _, r := range items {
		out = append(out, MapReview(r))
	}
	return out
}
