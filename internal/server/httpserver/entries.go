package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/server/entryformat"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
)

type entryView struct {
	Slot      int                `json:"slot"`
	Year      int                `json:"year"`
	Partner   string             `json:"partner"`
	Question  string             `json:"question"`
	Answer    string             `json:"answer"`
	BodyHTML  string             `json:"bodyHtml"`
	Signature string             `json:"signature"`
	PlainText string             `json:"plainText"`
	Format    entryformat.Format `json:"format"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func newEntryView(e *models.EntrySlot) entryView {
	a := entryformat.Parse(e.Answer)
	return entryView{
		Slot:      e.Slot,
		Year:      e.Year,
		Partner:   e.Partner,
		Question:  e.Question,
		Answer:    e.Answer,
		BodyHTML:  a.BodyHTML,
		Signature: a.Signature,
		PlainText: entryformat.HTMLToPlainText(a.BodyHTML),
		Format:    a.Format,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func newEntryViews(entries []*models.EntrySlot) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, newEntryView(e))
	}
	return out
}

// entryWrite is the body of entry writes. Answer carries an already
// serialized value; Body and Signature are serialized here.
type entryWrite struct {
	Year      flexInt `json:"year"`
	Slot      flexInt `json:"slot"`
	Question  string  `json:"question"`
	Answer    *string `json:"answer"`
	Body      *string `json:"body"`
	Signature string  `json:"signature"`
}

// storedAnswer resolves the value persisted for the answer.
func (e *entryWrite) storedAnswer() (string, error) {
	if e.Body != nil {
		body := strings.TrimSpace(*e.Body)
		if body == "" {
			return "", common.Invalid("Question and answer are required.")
		}
		return entryformat.Serialize(body, strings.TrimSpace(e.Signature)), nil
	}
	if e.Answer == nil || strings.TrimSpace(*e.Answer) == "" {
		return "", common.Invalid("Question and answer are required.")
	}
	return strings.TrimSpace(*e.Answer), nil
}

func (h *handlers) listEntries(w http.ResponseWriter, r *http.Request) {
	partner, _ := PartnerFromContext(r.Context())

	year, err := yearFromQuery(r, h.clock.CurrentYear(), false)
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid payload", err)
		return
	}

	entries, err := h.ledger.List(r.Context(), partner, year)
	if err != nil {
		respondServiceError(w, r, h.logger, "Unable to load entries.", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": newEntryViews(entries)})
}

func (h *handlers) upsertEntry(w http.ResponseWriter, r *http.Request) {
	partner, _ := PartnerFromContext(r.Context())

	var body entryWrite
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	year, err := yearFromBody(body.Year, h.clock.CurrentYear(), false)
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid payload", err)
		return
	}
	if !body.Slot.Set {
		respondError(w, http.StatusBadRequest, "Slot must be between 1 and 5.")
		return
	}
	answer, err := body.storedAnswer()
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid payload", err)
		return
	}

	entry, err := h.ledger.Upsert(r.Context(), partner, year, body.Slot.Value, body.Question, answer)
	if err != nil {
		respondServiceError(w, r, h.logger, "Unable to save this envelope.", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entry": newEntryView(entry)})
}

func (h *handlers) createEntry(w http.ResponseWriter, r *http.Request) {
	partner, _ := PartnerFromContext(r.Context())

	var body entryWrite
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	year, err := yearFromBody(body.Year, h.clock.CurrentYear(), false)
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid payload", err)
		return
	}
	answer, err := body.storedAnswer()
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid payload", err)
		return
	}

	entry, err := h.ledger.Create(r.Context(), partner, year, body.Question, answer)
	if err != nil {
		respondServiceError(w, r, h.logger, "Unable to seal this envelope.", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entry": newEntryView(entry)})
}

func (h *handlers) deleteEntry(w http.ResponseWriter, r *http.Request) {
	partner, _ := PartnerFromContext(r.Context())

	var body entryWrite
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	year, err := yearFromBody(body.Year, h.clock.CurrentYear(), false)
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid payload", err)
		return
	}
	if !body.Slot.Set {
		respondError(w, http.StatusBadRequest, "Slot must be between 1 and 5.")
		return
	}

	if err := h.ledger.Delete(r.Context(), partner, year, body.Slot.Value); err != nil {
		respondServiceError(w, r, h.logger, "Unable to delete this envelope.", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
