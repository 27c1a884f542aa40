// Package images provides the PostgreSQL-backed repository for photo board
// metadata. Image bytes are kept in object storage.
package images

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/timecapsule/internal/dbx"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
)

// PostgresRepository implements board image storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores the image row and fills CreatedAt from the database.
func (r *PostgresRepository) Insert(ctx context.Context, image *models.BoardImage) (*models.BoardImage, error) {
	query := `
		INSERT INTO board_images (id, year, uploaded_by, storage_path, caption)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	var caption sql.NullString
	if image.Caption != nil {
		caption = sql.NullString{String: *image.Caption, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, image.ID, image.Year, image.UploadedBy, image.StoragePath, caption).
		Scan(&image.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return image, nil
}

// ListByYear returns the images of year, oldest first.
func (r *PostgresRepository) ListByYear(ctx context.Context, year int) ([]*models.BoardImage, error) {
	query := `SELECT id, year, uploaded_by, storage_path, caption, created_at FROM board_images
		WHERE year = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to select images: %w", err)
	}
	defer rows.Close()

	var result []*models.BoardImage
	for rows.Next() {
		var (
			item    models.BoardImage
			caption sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Year, &item.UploadedBy, &item.StoragePath, &caption, &item.CreatedAt); err != nil {
			return nil, err
		}
		if caption.Valid {
			c := caption.String
			item.Caption = &c
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
