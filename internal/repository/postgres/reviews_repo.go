package postgres

import (
	"context"

	"github.com/baharkarakas/roamr-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reviewsRepo struct{ pool *pgxpool.Pool }

const reviewCols = `id, author_id, body, rating, created_at`

func scanReview(row pgx.Row) (models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.AuthorID, &rv.Body, &rv.Rating, &rv.CreatedAt)
	return rv, err
}

func (r *reviewsRepo) Create(ctx context.Context, rv models.Review) (models.Review, error) {
	if err := rv.Validate(); err != nil {
		return models.Review{}, err
	}
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	out, err := scanReview(r.pool.QueryRow(ctx,
		`INSERT INTO reviews(id, author_id, body, rating) VALUES($1,$2,$3,$4) RETURNING `+reviewCols,
		rv.ID, rv.AuthorID, rv.Body, rv.Rating,
	))
	if isForeignKeyViolation(err) {
		return models.Review{}, models.NewValidationError("review", "author", "unknown user")
	}
	return out, mapErr("reviews.create", "review", rv.ID, err)
}

func (r *reviewsRepo) GetByID(ctx context.Context, id string) (models.Review, error) {
	rv, err := scanReview(r.pool.QueryRow(ctx, `SELECT `+reviewCols+` FROM reviews WHERE id=$1`, id))
	return rv, mapErr("reviews.get", "review", id, err)
}

func (r *reviewsRepo) Delete(ctx context.Context, id string) (models.Review, error) {
	rv, err := scanReview(r.pool.QueryRow(ctx, `DELETE FROM reviews WHERE id=$1 RETURNING `+reviewCols, id))
	return rv, mapErr("reviews.delete", "review", id, err)
}

func (r *reviewsRepo) DeleteByIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `DELETE FROM reviews WHERE id = ANY($1) RETURNING id`, ids)
	if err != nil {
		return nil, models.StoreErr("reviews.delete_many", err)
	}
	deleted, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, models.StoreErr("reviews.delete_many", err)
	}
	return deleted, nil
}
