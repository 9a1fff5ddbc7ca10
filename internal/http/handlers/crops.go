package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/agroconnect/marketplace/internal/config"
	"github.com/agroconnect/marketplace/internal/domain/crop"
	"github.com/agroconnect/marketplace/internal/utils"
	"github.com/gin-gonic/gin"
)

type CropStore interface {
	Create(ctx context.Context, c crop.Crop) error
	List(ctx context.Context) ([]crop.Crop, error)
	Delete(ctx context.Context, id string) (crop.Crop, error)
}

type UploadSaver interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(urlPath string) error
}

type CropsHandler struct {
	repo    CropStore
	uploads UploadSaver
	log     *slog.Logger
}

func NewCropsHandler(repo CropStore, uploads UploadSaver, log *slog.Logger) *CropsHandler {
	return &CropsHandler{repo: repo, uploads: uploads, log: log}
}

func (h *CropsHandler) CreateCrop(ctx *gin.Context) {
	var req crop.CreateCropRequest

	if !BindForm(ctx, &req) {
		return
	}

	// the image file is optional, exactly one field named "image"
	var imagePath *string

	fh, err := ctx.FormFile("image")

	switch {
	case err == nil:
		saved, saveErr := h.uploads.Save(fh)

		if saveErr != nil {
			h.log.Error("image save failed", "err", saveErr)
			RespondInternal(ctx, "Server error")
			return
		}

		imagePath = &saved
	case errors.Is(err, http.ErrMissingFile):
		// no image attached, the crop is created with a null image
	default:
		RespondBadRequest(ctx, "invalid_upload", "Could not read image file", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	c := crop.NewFromCreateRequest(req, imagePath)

	err = h.repo.Create(cctx, c)

	if err != nil {
		// do not strand the file when the record never made it
		if imagePath != nil {
			_ = h.uploads.Remove(*imagePath)
		}

		h.log.Error("crop create failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Crop posted successfully",
		"crop":    c,
	})
}

func (h *CropsHandler) ListCrops(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	crops, err := h.repo.List(cctx)

	if err != nil {
		h.log.Error("crop list failed", "err", err)
		RespondInternal(ctx, "Failed to fetch crops")
		return
	}

	ctx.JSON(http.StatusOK, crops)
}

func (h *CropsHandler) DeleteCrop(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", "crop id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	deleted, err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, crop.ErrNotFound) {
			RespondNotFound(ctx, "Crop not found")
			return
		}

		h.log.Error("crop delete failed", "err", err)
		RespondInternal(ctx, "Failed to delete crop")
		return
	}

	// the delete path is the only place the backing file is reclaimed
	if deleted.Image != nil {
		err = h.uploads.Remove(*deleted.Image)

		if err != nil {
			h.log.Error("image remove failed", "err", err, "path", *deleted.Image)
			RespondInternal(ctx, "Failed to delete crop")
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Crop deleted successfully",
	})
}
