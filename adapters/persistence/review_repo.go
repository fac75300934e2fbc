package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hntran/reelist/internal/domain/review"
	"github.com/hntran/reelist/pkg/apperror"
	"github.com/hntran/reelist/pkg/logger"
)

type postgresReviewRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresReviewRepo(db *pgxpool.Pool, logger logger.Logger) review.Repository {
	return &postgresReviewRepo{db: db, logger: logger}
}

func (r *postgresReviewRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]review.Review, error) {
	query := `
		SELECT user_id, item_id, rating, comment, has_spoiler, created_at
		FROM reviews
		WHERE user_id = $1
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query reviews", err)
	}
	defer rows.Close()

	reviews := make([]review.Review, 0)
	for rows.Next() {
		var rv review.Review
		if err := rows.Scan(&rv.UserID, &rv.ItemID, &rv.Rating, &rv.Comment, &rv.HasSpoiler, &rv.CreatedAt); err != nil {
			return nil, apperror.NewInternal("failed to scan review", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating reviews", err)
	}
	return reviews, nil
}

func (r *postgresReviewRepo) Upsert(ctx context.Context, rv review.Review) error {
	query := `
		INSERT INTO reviews (user_id, item_id, rating, comment, has_spoiler, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			has_spoiler = EXCLUDED.has_spoiler
	`
	_, err := r.db.Exec(ctx, query, rv.UserID, rv.ItemID, rv.Rating, rv.Comment, rv.HasSpoiler, rv.CreatedAt)
	if err != nil {
		return apperror.NewInternal("failed to upsert review", err)
	}
	return nil
}

func (r *postgresReviewRepo) Delete(ctx context.Context, userID uuid.UUID, itemID int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE user_id = $1 AND item_id = $2`, userID, itemID)
	if err != nil {
		return apperror.NewInternal("failed to delete review", err)
	}
	return nil
}
