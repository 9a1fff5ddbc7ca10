package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/agroconnect/marketplace/internal/config"
	"github.com/agroconnect/marketplace/internal/domain/order"
	"github.com/gin-gonic/gin"
)

type OrderStore interface {
	Create(ctx context.Context, o order.Order) error
	ListForUser(ctx context.Context, userID string) ([]order.UserOrder, error)
}

type OrdersHandler struct {
	repo OrderStore
	log  *slog.Logger
}

func NewOrdersHandler(repo OrderStore, log *slog.Logger) *OrdersHandler {
	return &OrdersHandler{repo: repo, log: log}
}

func (h *OrdersHandler) PlaceOrder(ctx *gin.Context) {
	var req order.CreateOrderRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	o := order.NewFromCreateRequest(req)

	err := h.repo.Create(cctx, o)

	if err != nil {
		h.log.Error("order create failed", "err", err)
		RespondInternal(ctx, "Failed to place order")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   o,
	})
}

func (h *OrdersHandler) ListForUser(ctx *gin.Context) {
	userID := ctx.Param("userId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	orders, err := h.repo.ListForUser(cctx, userID)

	if err != nil {
		h.log.Error("order list failed", "err", err)
		RespondInternal(ctx, "Failed to fetch orders")
		return
	}

	ctx.JSON(http.StatusOK, orders)
}
