// Package models defines server-side data models persisted in the database.
package models

import "time"

// EntrySlot is one letter a partner wrote for a year. Slot is in [1, 5] and
// unique per (Partner, Year). Answer holds the stored serialized form.
type EntrySlot struct {
	ID        int64     `db:"id"`
	Partner   string    `db:"partner_id"`
	Year      int       `db:"year"`
	Slot      int       `db:"slot"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
