package httpserver

import (
	"net/http"

	"github.com/dmitrijs2005/timecapsule/internal/server/services"
)

func (h *handlers) suggestQuestions(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("count")
	count := services.DefaultPromptCount
	if raw != "" {
		count = services.ParsePromptCount(raw)
	}
	respondJSON(w, http.StatusOK, map[string][]string{"questions": h.prompts.Sample(count)})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
