// Package slots provides the PostgreSQL-backed repository for the yearly
// letter slots of each partner.
package slots

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/dbx"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
)

const selectColumns = `id, partner_id, year, slot, question, answer, created_at, updated_at`

// PostgresRepository implements slot storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByPartnerYear returns the partner's slots for year ordered by slot.
func (r *PostgresRepository) ListByPartnerYear(ctx context.Context, partner string, year int) ([]*models.EntrySlot, error) {
	query := `SELECT ` + selectColumns + ` FROM entry_slots
		WHERE partner_id = $1 AND year = $2
		ORDER BY slot ASC`
	return r.query(ctx, query, partner, year)
}

// ListYear returns the slots of both partners for year, grouped by partner.
func (r *PostgresRepository) ListYear(ctx context.Context, year int) ([]*models.EntrySlot, error) {
	query := `SELECT ` + selectColumns + ` FROM entry_slots
		WHERE year = $1
		ORDER BY partner_id ASC, slot ASC`
	return r.query(ctx, query, year)
}

// Years lists the distinct years that have at least one slot, newest first.
func (r *PostgresRepository) Years(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT year FROM entry_slots ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select years: %w", err)
	}
	defer rows.Close()

	var result []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		result = append(result, y)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert stores a new slot. A row already holding the same
// (partner, year, slot) yields common.ErrSlotConflict.
func (r *PostgresRepository) Insert(ctx context.Context, slot *models.EntrySlot) (*models.EntrySlot, error) {
	query := `
		INSERT INTO entry_slots (partner_id, year, slot, question, answer)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, slot.Partner, slot.Year, slot.Slot, slot.Question, slot.Answer).
		Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrSlotConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return slot, nil
}

// Upsert writes question and answer into the slot, creating it if needed.
func (r *PostgresRepository) Upsert(ctx context.Context, slot *models.EntrySlot) (*models.EntrySlot, error) {
	query := `
		INSERT INTO entry_slots (partner_id, year, slot, question, answer)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (partner_id, year, slot)
		DO UPDATE SET
			question = EXCLUDED.question,
			answer = EXCLUDED.answer,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, slot.Partner, slot.Year, slot.Slot, slot.Question, slot.Answer).
		Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return slot, nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, partner string, year, slot int) error {
	query := `DELETE FROM entry_slots WHERE partner_id = $1 AND year = $2 AND slot = $3`
	if _, err := r.db.ExecContext(ctx, query, partner, year, slot); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.EntrySlot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select slots: %w", err)
	}
	defer rows.Close()

	var result []*models.EntrySlot
	for rows.Next() {
		var item models.EntrySlot
		if err := rows.Scan(
			&item.ID, &item.Partner, &item.Year, &item.Slot, &item.Question, &item.Answer,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
