package crop

import (
	"errors"
	"time"
)

type Crop struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       *string   `json:"image"` // /uploads/<name>, nil when no file attached
	CreatedAt   time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("crop not found")

// bound from multipart form fields, the image file rides separately
type CreateCropRequest struct {
	Title       string  `form:"title" binding:"required,min=2,max=120"`
	Description string  `form:"description" binding:"required,max=1000"`
	Price       float64 `form:"price" binding:"required,gt=0"`
}
