package crop

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateCropRequest, imagePath *string) Crop {
	return Crop{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image:       imagePath,
		CreatedAt:   time.Now().UTC(),
	}
}
