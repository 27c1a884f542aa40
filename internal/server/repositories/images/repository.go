package images

import (
	"context"

	"github.com/dmitrijs2005/timecapsule/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, image *models.BoardImage) (*models.BoardImage, error)
	ListByYear(ctx context.Context, year int) ([]*models.BoardImage, error)
}
