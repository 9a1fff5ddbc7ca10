package postgres

import (
	"context"
	"errors"

	"github.com/agroconnect/marketplace/internal/domain/crop"
	"github.com/agroconnect/marketplace/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CropsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCropsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CropsRepo {
	return &CropsRepo{pool: pool, prom: prom}
}

func (r *CropsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CropsRepo) Create(ctx context.Context, c crop.Crop) error {
	return r.observe("crops.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO crops (id, title, description, price, image, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			c.ID, c.Title, c.Description, c.Price, c.Image, c.CreatedAt,
		)
		return err
	})
}

func (r *CropsRepo) List(ctx context.Context) (crops []crop.Crop, err error) {
	var rows pgx.Rows

	err = r.observe("crops.list", func() error {
		var e error
		rows, e = r.pool.Query(ctx,
			`SELECT id, title, description, price, image, created_at
			 FROM crops
			 ORDER BY created_at DESC, id DESC`,
		)
		return e
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	crops = make([]crop.Crop, 0)

	for rows.Next() {
		var c crop.Crop

		e := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.Image, &c.CreatedAt)

		if e != nil {
			return nil, e
		}
		crops = append(crops, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return crops, nil
}

// Delete removes the crop and hands back the deleted record in one
// statement, so the caller can reclaim the backing image file.
func (r *CropsRepo) Delete(ctx context.Context, id string) (crop.Crop, error) {
	var c crop.Crop

	err := r.observe("crops.delete", func() error {
		return r.pool.QueryRow(ctx,
			`DELETE FROM crops
			 WHERE id = $1
			 RETURNING id, title, description, price, image, created_at`,
			id,
		).Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.Image, &c.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crop.Crop{}, crop.ErrNotFound
		}
		return crop.Crop{}, err
	}

	return c, nil
}
