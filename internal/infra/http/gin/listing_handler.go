package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	listingapp "staybook/internal/app/handlers/listings"
	"staybook/internal/app/queries"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/pkg/apperror"
)

const maxListingImageSizeBytes int64 = 10 * 1024 * 1024

var errImageTooLarge = apperror.Invalid("listing.image_too_large", "image must be at most %d MB")

// ListingHandler serves one catalogue kind; the router mounts one per kind.
type ListingHandler struct {
	Kind     domainlistings.Kind
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type listingRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Location      string   `json:"location"`
	Price         int64    `json:"price"`
	Currency      string   `json:"currency"`
	MaxGuests     int      `json:"maxGuests"`
	PropertyType  string   `json:"propertyType"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	Amenities     []string `json:"amenities"`
	Category      string   `json:"category"`
	DurationHours float64  `json:"durationHours"`
	Languages     []string `json:"languages"`
}

func (h ListingHandler) Create(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformed(c, h.Logger)
		return
	}
	cmd := listingapp.CreateListingCommand{
		Actor: actorFrom(c),
		Kind:  h.Kind,
		Payload: listingapp.ListingPayload{
			Title:         req.Title,
			Description:   req.Description,
			Location:      req.Location,
			PriceAmount:   req.Price,
			Currency:      req.Currency,
			MaxGuests:     req.MaxGuests,
			PropertyType:  req.PropertyType,
			Bedrooms:      req.Bedrooms,
			Bathrooms:     req.Bathrooms,
			Amenities:     req.Amenities,
			Category:      req.Category,
			DurationHours: req.DurationHours,
			Languages:     req.Languages,
		},
	}
	listing, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{string(h.Kind): listing})
}

// listingPatchRequest leaves absent fields as nil so they keep their value.
type listingPatchRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Location      *string  `json:"location"`
	Price         *int64   `json:"price"`
	Currency      *string  `json:"currency"`
	MaxGuests     *int     `json:"maxGuests"`
	IsActive      *bool    `json:"isActive"`
	PropertyType  *string  `json:"propertyType"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	Amenities     []string `json:"amenities"`
	Category      *string  `json:"category"`
	DurationHours *float64 `json:"durationHours"`
	Languages     []string `json:"languages"`
}

func (h ListingHandler) Update(c *gin.Context) {
	var req listingPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformed(c, h.Logger)
		return
	}
	cmd := listingapp.UpdateListingCommand{
		Actor:     actorFrom(c),
		Kind:      h.Kind,
		ListingID: c.Param("id"),
		Patch: listingapp.ListingPatch{
			Title:         req.Title,
			Description:   req.Description,
			Location:      req.Location,
			PriceAmount:   req.Price,
			Currency:      req.Currency,
			MaxGuests:     req.MaxGuests,
			Active:        req.IsActive,
			PropertyType:  req.PropertyType,
			Bedrooms:      req.Bedrooms,
			Bathrooms:     req.Bathrooms,
			Amenities:     req.Amenities,
			Category:      req.Category,
			DurationHours: req.DurationHours,
			Languages:     req.Languages,
		},
	}
	listing, err := commands.Dispatch[listingapp.UpdateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		string(h.Kind): listing,
		"message":      localized(c, "listing.updated", "listing updated successfully"),
	})
}

func (h ListingHandler) Get(c *gin.Context) {
	query := listingapp.GetListingQuery{Kind: h.Kind, ListingID: c.Param("id")}
	listing, err := queries.Ask[listingapp.GetListingQuery, dto.Listing](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{string(h.Kind): listing})
}

func (h ListingHandler) Mine(c *gin.Context) {
	query := listingapp.ListMyListingsQuery{Actor: actorFrom(c), Kind: h.Kind}
	items, err := queries.Ask[listingapp.ListMyListingsQuery, []dto.Listing](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": nonNil(items)})
}

func (h ListingHandler) Delete(c *gin.Context) {
	cmd := listingapp.DeleteListingCommand{Actor: actorFrom(c), Kind: h.Kind, ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.DeleteListingCommand, *listingapp.DeleteListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	msg := localized(c, "listing.deleted", "listing deleted")
	if result.Deactivated {
		msg = localized(c, "listing.deactivated", "listing has bookings and was deactivated instead")
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "deactivated": result.Deactivated})
}

// UploadImage reads the multipart field "image" and stores it in the bucket.
func (h ListingHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxListingImageSizeBytes+1<<20)
	fileHeader, err := c.FormFile("image")
	if err != nil || fileHeader.Size <= 0 {
		respondError(c, h.Logger, listingapp.ErrImageRequired)
		return
	}
	if fileHeader.Size > maxListingImageSizeBytes {
		respondError(c, h.Logger, errImageTooLarge.With(maxListingImageSizeBytes>>20))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer file.Close()

	cmd := listingapp.UploadImageCommand{
		Actor:       actorFrom(c),
		Kind:        h.Kind,
		ListingID:   c.Param("id"),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	}
	listing, err := commands.Dispatch[listingapp.UploadImageCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{string(h.Kind): listing})
}

func (h ListingHandler) RemoveImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("imageIndex"))
	if err != nil || index < 0 {
		respondError(c, h.Logger, domainlistings.ErrImageNotFound)
		return
	}
	cmd := listingapp.RemoveImageCommand{Actor: actorFrom(c), Kind: h.Kind, ListingID: c.Param("id"), Index: index}
	listing, err := commands.Dispatch[listingapp.RemoveImageCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		string(h.Kind): listing,
		"message":      localized(c, "listing.image_removed", "image removed"),
	})
}
