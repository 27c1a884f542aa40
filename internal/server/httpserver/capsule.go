package httpserver

import (
	"net/http"
	"sort"

	"github.com/dmitrijs2005/timecapsule/internal/server/clock"
)

type capsuleView struct {
	Year      int              `json:"year"`
	Years     []int            `json:"years"`
	Locked    bool             `json:"locked"`
	Countdown *clock.Countdown `json:"countdown"`
	Entries   []entryView      `json:"entries"`
}

// getCapsule returns the letters of both partners for a year once it is
// open. While sealed only the countdown is revealed.
func (h *handlers) getCapsule(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()

	year, err := yearFromQuery(r, now.Year(), false)
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid year", err)
		return
	}

	years, err := h.ledger.Years(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "Unable to load the capsule.", err)
		return
	}

	view := capsuleView{
		Year:    year,
		Years:   withYear(years, now.Year()),
		Locked:  !h.clock.IsUnlocked(year, now),
		Entries: []entryView{},
	}

	if view.Locked {
		if year == now.Year() {
			view.Countdown = h.clock.TimeUntilUnlock(now)
		}
		respondJSON(w, http.StatusOK, view)
		return
	}

	entries, err := h.ledger.ListYear(r.Context(), year)
	if err != nil {
		respondServiceError(w, r, h.logger, "Unable to load the capsule.", err)
		return
	}
	view.Entries = newEntryViews(entries)
	respondJSON(w, http.StatusOK, view)
}

// withYear adds year to years if missing and sorts newest first.
func withYear(years []int, year int) []int {
	out := make([]int, 0, len(years)+1)
	seen := false
	for _, y := range years {
		if y == year {
			seen = true
		}
		out = append(out, y)
	}
	if !seen {
		out = append(out, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
