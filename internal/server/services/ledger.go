// Package services implements the capsule operations on top of the
// repositories, the clock policy and object storage.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/dbx"
	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/server/auth"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/repomanager"
)

// MaxSlots is the number of letters a partner may keep per year.
const MaxSlots = 5

// LedgerService manages the fixed set of yearly letter slots per partner.
type LedgerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewLedgerService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger) *LedgerService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &LedgerService{db: db, repomanager: repomanager, logger: logger}
}

// List returns the partner's slots for year, ascending by slot.
func (s *LedgerService) List(ctx context.Context, partner auth.Partner, year int) ([]*models.EntrySlot, error) {
	if !partner.Valid() {
		return nil, common.ErrUnauthenticated
	}
	return s.repomanager.Slots(s.db).ListByPartnerYear(ctx, partner.String(), year)
}

// ListYear returns every slot of year for both partners.
func (s *LedgerService) ListYear(ctx context.Context, year int) ([]*models.EntrySlot, error) {
	return s.repomanager.Slots(s.db).ListYear(ctx, year)
}

// Years lists years that have letters, newest first.
func (s *LedgerService) Years(ctx context.Context) ([]int, error) {
	return s.repomanager.Slots(s.db).Years(ctx)
}

// Create stores a letter in the lowest free slot of year. When all slots
// are used it returns common.ErrCapacityExceeded. Each attempt runs in its
// own transaction; a concurrent writer taking the same slot causes one
// recomputation, and a second collision is reported as
// common.ErrSlotConflict.
func (s *LedgerService) Create(ctx context.Context, partner auth.Partner, year int, question, answer string) (*models.EntrySlot, error) {
	if !partner.Valid() {
		return nil, common.ErrUnauthenticated
	}
	question, answer, err := normalizeLetter(question, answer)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= 2; attempt++ {
		var created *models.EntrySlot
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repomanager.Slots(tx)

			existing, err := repo.ListByPartnerYear(ctx, partner.String(), year)
			if err != nil {
				return err
			}
			slot, ok := firstFreeSlot(existing)
			if !ok {
				return common.ErrCapacityExceeded
			}

			created, err = repo.Insert(ctx, &models.EntrySlot{
				Partner:  partner.String(),
				Year:     year,
				Slot:     slot,
				Question: question,
				Answer:   answer,
			})
			return err
		})
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, common.ErrSlotConflict) {
			return nil, err
		}
		s.logger.Warn(ctx, "slot taken concurrently", "partner", partner.String(), "year", year, "attempt", attempt)
	}

	return nil, common.ErrSlotConflict
}

// Upsert writes the letter into a specific slot.
func (s *LedgerService) Upsert(ctx context.Context, partner auth.Partner, year, slot int, question, answer string) (*models.EntrySlot, error) {
	if !partner.Valid() {
		return nil, common.ErrUnauthenticated
	}
	if err := validateSlot(slot); err != nil {
		return nil, err
	}
	question, answer, err := normalizeLetter(question, answer)
	if err != nil {
		return nil, err
	}

	return s.repomanager.Slots(s.db).Upsert(ctx, &models.EntrySlot{
		Partner:  partner.String(),
		Year:     year,
		Slot:     slot,
		Question: question,
		Answer:   answer,
	})
}

// Delete empties the slot. Deleting an empty slot succeeds.
func (s *LedgerService) Delete(ctx context.Context, partner auth.Partner, year, slot int) error {
	if !partner.Valid() {
		return common.ErrUnauthenticated
	}
	if err := validateSlot(slot); err != nil {
		return err
	}
	if err := s.repomanager.Slots(s.db).Delete(ctx, partner.String(), year, slot); err != nil {
		return fmt.Errorf("delete slot %d: %w", slot, err)
	}
	return nil
}

func validateSlot(slot int) error {
	if slot < 1 || slot > MaxSlots {
		return common.Invalid(fmt.Sprintf("Slot must be between 1 and %d.", MaxSlots))
	}
	return nil
}

func normalizeLetter(question, answer string) (string, string, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return "", "", common.Invalid("Question and answer are required.")
	}
	return question, answer, nil
}

func firstFreeSlot(existing []*models.EntrySlot) (int, bool) {
	used := make(map[int]bool, len(existing))
	for _, e := range existing {
		used[e.Slot] = true
	}
	for slot := 1; slot <= MaxSlots; slot++ {
		if !used[slot] {
			return slot, true
		}
	}
	return 0, false
}
