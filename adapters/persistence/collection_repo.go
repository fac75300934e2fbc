package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hntran/reelist/internal/domain/collection"
	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/pkg/apperror"
	"github.com/hntran/reelist/pkg/logger"
)

type postgresCollectionRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresCollectionRepo(db *pgxpool.Pool, logger logger.Logger) collection.Repository {
	return &postgresCollectionRepo{db: db, logger: logger}
}

func (r *postgresCollectionRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*collection.Collection, error) {
	query := `
		SELECT id, owner_id, name, description, is_public, share_token,
		       items, top_favorite_movies, top_favorite_shows,
		       created_at, updated_at
		FROM collections
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query collections", err)
	}
	defer rows.Close()

	collections := make([]*collection.Collection, 0)
	for rows.Next() {
		c, err := r.scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating collections", err)
	}
	return collections, nil
}

func (r *postgresCollectionRepo) UpsertAll(ctx context.Context, ownerID uuid.UUID, collections []*collection.Collection) error {
	query := `
		INSERT INTO collections (id, owner_id, name, description, is_public, share_token,
		                         items, top_favorite_movies, top_favorite_shows,
		                         created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			is_public = EXCLUDED.is_public,
			share_token = EXCLUDED.share_token,
			items = EXCLUDED.items,
			top_favorite_movies = EXCLUDED.top_favorite_movies,
			top_favorite_shows = EXCLUDED.top_favorite_shows,
			updated_at = NOW()
		WHERE collections.owner_id = EXCLUDED.owner_id
	`

	batch := &pgx.Batch{}
	for _, c := range collections {
		itemsBytes, err := json.Marshal(c.Items)
		if err != nil {
			return apperror.NewInternal("failed to marshal collection items", err)
		}
		moviesBytes, err := json.Marshal(c.TopFavoriteMovies)
		if err != nil {
			return apperror.NewInternal("failed to marshal favorite movies", err)
		}
		showsBytes, err := json.Marshal(c.TopFavoriteShows)
		if err != nil {
			return apperror.NewInternal("failed to marshal favorite shows", err)
		}
		batch.Queue(query,
			c.ID, ownerID, c.Name, c.Description, c.IsPublic, nullable(c.ShareToken),
			itemsBytes, moviesBytes, showsBytes, c.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range collections {
		if _, err := results.Exec(); err != nil {
			return apperror.NewInternal("failed to upsert collections", err)
		}
	}
	return nil
}

func (r *postgresCollectionRepo) Delete(ctx context.Context, id string, ownerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM collections WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return apperror.NewInternal("failed to delete collection", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("collection", id)
	}
	return nil
}

func (r *postgresCollectionRepo) FindByShareToken(ctx context.Context, token string) (*collection.Collection, error) {
	query := `
		SELECT id, owner_id, name, description, is_public, share_token,
		       items, top_favorite_movies, top_favorite_shows,
		       created_at, updated_at
		FROM collections
		WHERE share_token = $1
	`
	row := r.db.QueryRow(ctx, query, token)
	c, err := r.scanCollectionRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("collection", token)
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCollectionRepo) FindArchived(ctx context.Context, id string) (*collection.ArchivedList, error) {
	query := `SELECT id, name, items, created_at FROM shared_lists WHERE id = $1`

	archived := &collection.ArchivedList{}
	var itemsBytes []byte
	err := r.db.QueryRow(ctx, query, id).Scan(&archived.ID, &archived.Name, &itemsBytes, &archived.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("shared list", id)
		}
		return nil, apperror.NewInternal("failed to query shared list", err)
	}
	if err := json.Unmarshal(itemsBytes, &archived.Items); err != nil {
		r.logger.Warn("Failed to unmarshal archived list items", zap.String("id", id), zap.Error(err))
		archived.Items = []media.Item{}
	}
	return archived, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *postgresCollectionRepo) scanCollection(row rowScanner) (*collection.Collection, error) {
	c, err := r.scanCollectionRow(row)
	if err != nil {
		return nil, apperror.NewInternal("failed to scan collection", err)
	}
	return c, nil
}

func (r *postgresCollectionRepo) scanCollectionRow(row rowScanner) (*collection.Collection, error) {
	c := &collection.Collection{}
	var shareToken *string
	var itemsBytes, moviesBytes, showsBytes []byte

	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.IsPublic, &shareToken,
		&itemsBytes, &moviesBytes, &showsBytes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if shareToken != nil {
		c.ShareToken = *shareToken
	}

	if err := json.Unmarshal(itemsBytes, &c.Items); err != nil {
		r.logger.Warn("Failed to unmarshal collection items", zap.String("id", c.ID), zap.Error(err))
		c.Items = []media.Item{}
	}
	if err := json.Unmarshal(moviesBytes, &c.TopFavoriteMovies); err != nil {
		r.logger.Warn("Failed to unmarshal favorite movies", zap.String("id", c.ID), zap.Error(err))
	}
	if err := json.Unmarshal(showsBytes, &c.TopFavoriteShows); err != nil {
		r.logger.Warn("Failed to unmarshal favorite shows", zap.String("id", c.ID), zap.Error(err))
	}
	return c, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
