package listings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/s3"
	"staybook/internal/pkg/apperror"
)

const (
	uploadListingImageKey = "listings.images.upload"
	removeListingImageKey = "listings.images.remove"
)

var (
	ErrImageRequired = apperror.Invalid("listing.image_required", "an image file is required")
	ErrImageType     = apperror.Invalid("listing.image_type", "only image files can be uploaded")
)

type UploadImageCommand struct {
	Actor       policies.Actor
	Kind        domainlistings.Kind
	ListingID   string `validate:"required"`
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func (c UploadImageCommand) Key() string                      { return uploadListingImageKey }
func (c UploadImageCommand) Principal() policies.Actor        { return c.Actor }
func (c UploadImageCommand) RequiredRoles() []domainuser.Role { return hostRoles }

type UploadImageHandler struct {
	UoWFactory uow.UoWFactory
	Uploader   s3.Uploader
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *UploadImageHandler) Handle(ctx context.Context, cmd UploadImageCommand) (*dto.Listing, error) {
	if cmd.Reader == nil {
		return nil, ErrImageRequired
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cmd.ContentType)), "image/") {
		return nil, ErrImageType
	}
	uploader := h.Uploader
	if uploader == nil {
		uploader = s3.Disabled{}
	}

	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	listing, err := loadOwned(ctx, unit, cmd.Actor, cmd.Kind, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	key := s3.ObjectKey(string(listing.Kind), string(listing.ID), cmd.Filename)
	publicURL, err := uploader.Upload(ctx, key, cmd.Reader, cmd.Size, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	listing.AddImage(publicURL, support.Now(h.Clock))
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing image added", "listing_id", listing.ID, "object_key", key)
	}
	out := dto.MapListing(listing)
	return &out, nil
}

type RemoveImageCommand struct {
	Actor     policies.Actor
	Kind      domainlistings.Kind
	ListingID string `validate:"required"`
	Index     int    `validate:"gte=0"`
}

func (c RemoveImageCommand) Key() string                      { return removeListingImageKey }
func (c RemoveImageCommand) Principal() policies.Actor        { return c.Actor }
func (c RemoveImageCommand) RequiredRoles() []domainuser.Role { return hostRoles }

// RemoveImageHandler drops an image from the listing, then deletes the stored
// object. A failed object delete leaves an orphan in the bucket and is only
// logged.
type RemoveImageHandler struct {
	UoWFactory uow.UoWFactory
	Uploader   s3.Uploader
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *RemoveImageHandler) Handle(ctx context.Context, cmd RemoveImageCommand) (*dto.Listing, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Release(ctx)

	listing, err := loadOwned(ctx, unit, cmd.Actor, cmd.Kind, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	removed, err := listing.RemoveImage(cmd.Index, support.Now(h.Clock))
	if err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := unit.Complete(ctx); err != nil {
		return nil, err
	}
	if h.Uploader != nil {
		if err := h.Uploader.Remove(ctx, removed); err != nil && h.Logger != nil {
			h.Logger.Warn("listing image object not removed", "listing_id", listing.ID, "url", removed, "error", err)
		}
	}
	if h.Logger != nil {
		h.Logger.Info("listing image removed", "listing_id", listing.ID, "index", cmd.Index)
	}
	out := dto.MapListing(listing)
	return &out, nil
}

var (
	_ commands.Handler[UploadImageCommand, *dto.Listing] = (*UploadImageHandler)(nil)
	_ commands.Handler[RemoveImageCommand, *dto.Listing] = (*RemoveImageHandler)(nil)
	_ policies.Restricted                                = UploadImageCommand{}
	_ policies.Restricted                                = RemoveImageCommand{}
)
