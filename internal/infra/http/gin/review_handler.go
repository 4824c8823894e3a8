package ginserver

import (
	"log/slog"
	"math"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	reviewsapp "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/queries"
	domainreviews "staybook/internal/domain/reviews"
)

type ReviewsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
	BookingID string  `json:"bookingId"`
}

type respondRequest struct {
	Comment string `json:"comment"`
}

type visibilityRequest struct {
	IsPublic *bool `json:"isPublic"`
}

// Create serves POST /reviews/<angle>/:targetId for one fixed angle.
func (h ReviewsHandler) Create(angle domainreviews.Angle, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMalformed(c, h.Logger)
			return
		}
		if req.Rating != math.Trunc(req.Rating) {
			respondError(c, h.Logger, domainreviews.ErrInvalidRating)
			return
		}
		cmd := reviewsapp.CreateReviewCommand{
			Actor:     actorFrom(c),
			Angle:     string(angle),
			TargetID:  c.Param(param),
			Rating:    int(req.Rating),
			Comment:   req.Comment,
			BookingID: req.BookingID,
		}
		review, err := commands.Dispatch[reviewsapp.CreateReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"review":  review,
			"message": localized(c, "review.created", "review created successfully"),
		})
	}
}

func (h ReviewsHandler) List(c *gin.Context) {
	query := reviewsapp.ListReviewsQuery{
		Type:     c.Query("type"),
		TargetID: c.Query("targetId"),
		Page:     parsePositiveInt(c.Query("page"), 1),
		Limit:    parsePositiveInt(c.Query("limit"), 0),
	}
	page, err := queries.Ask[reviewsapp.ListReviewsQuery, dto.ReviewPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h ReviewsHandler) Get(c *gin.Context) {
	query := reviewsapp.GetReviewQuery{Actor: actorFrom(c), ReviewID: c.Param("id")}
	review, err := queries.Ask[reviewsapp.GetReviewQuery, dto.Review](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (h ReviewsHandler) Respond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformed(c, h.Logger)
		return
	}
	cmd := reviewsapp.RespondCommand{Actor: actorFrom(c), ReviewID: c.Param("id"), Comment: req.Comment}
	review, err := commands.Dispatch[reviewsapp.RespondCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (h ReviewsHandler) SetVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformed(c, h.Logger)
		return
	}
	cmd := reviewsapp.SetVisibilityCommand{Actor: actorFrom(c), ReviewID: c.Param("id"), IsPublic: req.IsPublic}
	review, err := commands.Dispatch[reviewsapp.SetVisibilityCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (h ReviewsHandler) Delete(c *gin.Context) {
	cmd := reviewsapp.DeleteReviewCommand{Actor: actorFrom(c), ReviewID: c.Param("id")}
	if _, err := commands.Dispatch[reviewsapp.DeleteReviewCommand, *reviewsapp.DeleteReviewResult](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": localized(c, "review.deleted", "review deleted")})
}
