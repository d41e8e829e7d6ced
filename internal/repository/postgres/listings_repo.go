package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/baharkarakas/roamr-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type listingsRepo struct{ pool *pgxpool.Pool }

const listingCols = `id, title, description, price, location, country, image_url, image_filename,
       category, owner_id, review_ids, created_at, updated_at`

func scanListing(row pgx.Row) (models.Listing, error) {
	var l models.Listing
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.Location, &l.Country,
		&l.Image.URL, &l.Image.Filename, &l.Category, &l.OwnerID, &l.ReviewIDs, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *listingsRepo) Create(ctx context.Context, l models.Listing) (models.Listing, error) {
	l.Normalize()
	if err := l.Validate(); err != nil {
		return models.Listing{}, err
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	out, err := scanListing(r.pool.QueryRow(ctx, `
INSERT INTO listings (id, title, description, price, location, country, image_url, image_filename, category, owner_id, review_ids)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING `+listingCols,
		l.ID, l.Title, l.Description, l.Price, l.Location, l.Country,
		l.Image.URL, l.Image.Filename, l.Category, l.OwnerID, l.ReviewIDs,
	))
	if isForeignKeyViolation(err) {
		return models.Listing{}, models.NewValidationError("listing", "owner", "unknown user")
	}
	return out, mapErr("listings.create", "listing", l.ID, err)
}

func (r *listingsRepo) GetByID(ctx context.Context, id string) (models.Listing, error) {
	l, err := scanListing(r.pool.QueryRow(ctx, `SELECT `+listingCols+` FROM listings WHERE id=$1`, id))
	return l, mapErr("listings.get", "listing", id, err)
}

func (r *listingsRepo) GetDetail(ctx context.Context, id string) (models.ListingDetail, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return models.ListingDetail{}, err
	}
	d := models.ListingDetail{Listing: l, Reviews: []models.ReviewDetail{}}

	d.Owner, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, l.OwnerID))
	if err != nil {
		return models.ListingDetail{}, mapErr("listings.get_detail.owner", "user", l.OwnerID, err)
	}
	if len(l.ReviewIDs) == 0 {
		return d, nil
	}

	// references to reviews that no longer exist are skipped
	rows, err := r.pool.Query(ctx, `
SELECT r.id, r.author_id, r.body, r.rating, r.created_at,
       u.id, u.username, u.email, u.password_hash, u.created_at, u.updated_at
  FROM unnest($1::text[]) WITH ORDINALITY AS ref(id, ord)
  JOIN reviews r ON r.id = ref.id
  JOIN users u ON u.id = r.author_id
 ORDER BY ref.ord`, l.ReviewIDs)
	if err != nil {
		return models.ListingDetail{}, mapErr("listings.get_detail.reviews", "listing", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var rd models.ReviewDetail
		if err := rows.Scan(&rd.ID, &rd.AuthorID, &rd.Body, &rd.Rating, &rd.CreatedAt,
			&rd.Author.ID, &rd.Author.Username, &rd.Author.Email, &rd.Author.PasswordHash,
			&rd.Author.CreatedAt, &rd.Author.UpdatedAt); err != nil {
			return models.ListingDetail{}, mapErr("listings.get_detail.scan", "listing", id, err)
		}
		d.Reviews = append(d.Reviews, rd)
	}
	if err := rows.Err(); err != nil {
		return models.ListingDetail{}, mapErr("listings.get_detail.rows", "listing", id, err)
	}
	return d, nil
}

func (r *listingsRepo) Update(ctx context.Context, id string, patch models.ListingPatch, img *models.Image) (models.Listing, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return models.Listing{}, err
	}
	if err := models.ValidateImage(img); err != nil {
		return models.Listing{}, err
	}

	args := []any{id}
	var sets []string
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.Country != nil {
		set("country", *patch.Country)
	}
	if patch.Category != nil {
		set("category", patch.Category)
	}
	if img != nil {
		set("image_url", img.URL)
		set("image_filename", img.Filename)
	}
	sets = append(sets, "updated_at=now()")

	q := `UPDATE listings SET ` + strings.Join(sets, ", ") + ` WHERE id=$1 RETURNING ` + listingCols
	l, err := scanListing(r.pool.QueryRow(ctx, q, args...))
	return l, mapErr("listings.update", "listing", id, err)
}

func (r *listingsRepo) Delete(ctx context.Context, id string) (models.Listing, error) {
	l, err := scanListing(r.pool.QueryRow(ctx, `DELETE FROM listings WHERE id=$1 RETURNING `+listingCols, id))
	return l, mapErr("listings.delete", "listing", id, err)
}

func (r *listingsRepo) List(ctx context.Context) ([]models.Listing, error) {
	return r.query(ctx, "listings.list", `SELECT `+listingCols+` FROM listings ORDER BY seq`)
}

func (r *listingsRepo) ListByCategory(ctx context.Context, tag string) ([]models.Listing, error) {
	return r.query(ctx, "listings.list_by_category",
		`SELECT `+listingCols+` FROM listings WHERE category @> ARRAY[$1]::text[] ORDER BY seq`, tag)
}

func (r *listingsRepo) Search(ctx context.Context, term string) ([]models.Listing, error) {
	pattern := "%" + escapeLike(term) + "%"
	return r.query(ctx, "listings.search", `
SELECT `+listingCols+`
  FROM listings
 WHERE title ILIKE $1 ESCAPE '\'
    OR location ILIKE $1 ESCAPE '\'
    OR country ILIKE $1 ESCAPE '\'
 ORDER BY seq`, pattern)
}

func (r *listingsRepo) AppendReview(ctx context.Context, listingID, reviewID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET review_ids = array_append(review_ids, $2), updated_at=now() WHERE id=$1`,
		listingID, reviewID)
	if err != nil {
		return mapErr("listings.append_review", "listing", listingID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("listing", listingID)
	}
	return nil
}

func (r *listingsRepo) RemoveReview(ctx context.Context, listingID, reviewID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET review_ids = array_remove(review_ids, $2), updated_at=now() WHERE id=$1`,
		listingID, reviewID)
	if err != nil {
		return mapErr("listings.remove_review", "listing", listingID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("listing", listingID)
	}
	return nil
}

func (r *listingsRepo) query(ctx context.Context, op, q string, args ...any) ([]models.Listing, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, models.StoreErr(op, err)
	}
	defer rows.Close()

	out := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, models.StoreErr(op, err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, models.StoreErr(op, err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
