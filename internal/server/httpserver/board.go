package httpserver

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/server/models"
)

type boardPhotoView struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Caption    *string   `json:"caption"`
	UploadedBy string    `json:"uploaded_by_initials"`
	CreatedAt  time.Time `json:"created_at"`
}

type boardImageView struct {
	ID          string    `json:"id"`
	Year        int       `json:"year"`
	UploadedBy  string    `json:"uploaded_by_initials"`
	StoragePath string    `json:"storage_path"`
	Caption     *string   `json:"caption"`
	CreatedAt   time.Time `json:"created_at"`
}

func newBoardImageView(img *models.BoardImage) boardImageView {
	return boardImageView{
		ID:          img.ID,
		Year:        img.Year,
		UploadedBy:  img.UploadedBy,
		StoragePath: img.StoragePath,
		Caption:     img.Caption,
		CreatedAt:   img.CreatedAt,
	}
}

func (h *handlers) listBoard(w http.ResponseWriter, r *http.Request) {
	year, err := yearFromQuery(r, 0, true)
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid year", err)
		return
	}

	listing, err := h.board.List(r.Context(), year)
	if err != nil {
		respondServiceError(w, r, h.logger, "Unable to load the board.", err)
		return
	}

	photos := make([]boardPhotoView, 0, len(listing.Photos))
	for _, p := range listing.Photos {
		photos = append(photos, boardPhotoView{
			ID:         p.Image.ID,
			URL:        p.URL,
			Caption:    p.Image.Caption,
			UploadedBy: p.Image.UploadedBy,
			CreatedAt:  p.Image.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"locked": listing.Locked, "images": photos})
}

func (h *handlers) createUploadURL(w http.ResponseWriter, r *http.Request) {
	partner, _ := PartnerFromContext(r.Context())

	var body struct {
		Year        flexInt `json:"year"`
		FileName    string  `json:"fileName"`
		ContentType string  `json:"contentType"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	year, err := yearFromBody(body.Year, 0, true)
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid year", err)
		return
	}

	ticket, err := h.board.CreateUploadURL(r.Context(), partner, year, body.ContentType)
	if err != nil {
		respondServiceError(w, r, h.logger, "Unable to create upload URL", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"uploadUrl":    ticket.UploadURL,
		"storage_path": ticket.StoragePath,
	})
}

func (h *handlers) confirmUpload(w http.ResponseWriter, r *http.Request) {
	partner, _ := PartnerFromContext(r.Context())

	var body struct {
		Year        flexInt `json:"year"`
		StoragePath string  `json:"storage_path"`
		Caption     *string `json:"caption"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	year, err := yearFromBody(body.Year, 0, true)
	if err != nil {
		respondServiceError(w, r, h.logger, "Invalid year", err)
		return
	}

	img, err := h.board.Confirm(r.Context(), partner, year, body.StoragePath, body.Caption)
	if err != nil {
		respondServiceError(w, r, h.logger, "Unable to save this photo.", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"image": newBoardImageView(img)})
}
