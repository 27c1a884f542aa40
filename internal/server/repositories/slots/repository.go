package slots

import (
	"context"

	"github.com/dmitrijs2005/timecapsule/internal/server/models"
)

type Repository interface {
	ListByPartnerYear(ctx context.Context, partner string, year int) ([]*models.EntrySlot, error)
	ListYear(ctx context.Context, year int) ([]*models.EntrySlot, error)
	Years(ctx context.Context) ([]int, error)
	Insert(ctx context.Context, slot *models.EntrySlot) (*models.EntrySlot, error)
	Upsert(ctx context.Context, slot *models.EntrySlot) (*models.EntrySlot, error)
	Delete(ctx context.Context, partner string, year, slot int) error
}
