package order

import (
	"time"

	"github.com/agroconnect/marketplace/internal/domain/crop"
)

type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CropID    string    `json:"cropId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserOrder is an order with the crop reference expanded into the full
// record, the shape GET /api/orders/:userId responds with. Crop is nil
// when the referenced crop no longer exists.
type UserOrder struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Crop      *crop.Crop `json:"cropId"`
	Quantity  int        `json:"quantity"`
	CreatedAt time.Time  `json:"createdAt"`
}

// userId/cropId are free-form references, existence is not checked at
// placement time
type CreateOrderRequest struct {
	UserID   string `json:"userId" binding:"required"`
	CropID   string `json:"cropId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}
