package postgres

import (
	"context"
	"time"

	"github.com/agroconnect/marketplace/internal/domain/crop"
	"github.com/agroconnect/marketplace/internal/domain/order"
	"github.com/agroconnect/marketplace/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrdersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewOrdersRepo(pool *pgxpool.Pool, prom *observability.Prom) *OrdersRepo {
	return &OrdersRepo{pool: pool, prom: prom}
}

func (r *OrdersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts the order as-is. The user/crop references are free-form
// and are not checked for existence at placement time.
func (r *OrdersRepo) Create(ctx context.Context, o order.Order) error {
	return r.observe("orders.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO orders (id, user_id, crop_id, quantity, created_at)
			 VALUES ($1,$2,$3,$4,$5)`,
			o.ID, o.UserID, o.CropID, o.Quantity, o.CreatedAt,
		)
		return err
	})
}

// ListForUser returns the user's orders with the crop reference expanded
// into the full record. The LEFT JOIN keeps orders whose crop has since
// been deleted; those come back with a nil crop.
func (r *OrdersRepo) ListForUser(ctx context.Context, userID string) (orders []order.UserOrder, err error) {
	var rows pgx.Rows

	err = r.observe("orders.list_for_user", func() error {
		var e error
		rows, e = r.pool.Query(ctx,
			`SELECT o.id, o.user_id, o.quantity, o.created_at,
			        c.id, c.title, c.description, c.price, c.image, c.created_at
			 FROM orders o
			 LEFT JOIN crops c ON c.id = o.crop_id
			 WHERE o.user_id = $1
			 ORDER BY o.created_at ASC, o.id ASC`,
			userID,
		)
		return e
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	orders = make([]order.UserOrder, 0)

	for rows.Next() {
		var uo order.UserOrder
		var cropID, title, description *string
		var price *float64
		var image *string
		var cropCreatedAt *time.Time

		e := rows.Scan(
			&uo.ID, &uo.UserID, &uo.Quantity, &uo.CreatedAt,
			&cropID, &title, &description, &price, &image, &cropCreatedAt,
		)

		if e != nil {
			return nil, e
		}

		if cropID != nil {
			uo.Crop = &crop.Crop{
				ID:          *cropID,
				Title:       *title,
				Description: *description,
				Price:       *price,
				Image:       image,
				CreatedAt:   *cropCreatedAt,
			}
		}

		orders = append(orders, uo)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return orders, nil
}
