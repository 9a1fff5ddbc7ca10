package order

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateOrderRequest) Order {
	return Order{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		CropID:    req.CropID,
		Quantity:  req.Quantity,
		CreatedAt: time.Now().UTC(),
	}
}
