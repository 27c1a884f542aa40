package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/server/auth"
	"github.com/dmitrijs2005/timecapsule/internal/server/clock"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"github.com/dmitrijs2005/timecapsule/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Ledger is the slot ledger as seen by the HTTP layer.
type Ledger interface {
	List(ctx context.Context, partner auth.Partner, year int) ([]*models.EntrySlot, error)
	ListYear(ctx context.Context, year int) ([]*models.EntrySlot, error)
	Years(ctx context.Context) ([]int, error)
	Create(ctx context.Context, partner auth.Partner, year int, question, answer string) (*models.EntrySlot, error)
	Upsert(ctx context.Context, partner auth.Partner, year, slot int, question, answer string) (*models.EntrySlot, error)
	Delete(ctx context.Context, partner auth.Partner, year, slot int) error
}

// Board is the photo board as seen by the HTTP layer.
type Board interface {
	CreateUploadURL(ctx context.Context, partner auth.Partner, year int, contentType string) (*models.UploadTicket, error)
	Confirm(ctx context.Context, partner auth.Partner, year int, storagePath string, caption *string) (*models.BoardImage, error)
	List(ctx context.Context, year int) (*services.BoardListing, error)
}

// Prompts hands out question suggestions.
type Prompts interface {
	Sample(count int) []string
}

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Sessions      *auth.CookieStore
	Authenticator *auth.Authenticator
	Clock         *clock.Policy
	Ledger        Ledger
	Board         Board
	Prompts       Prompts
	Logger        logging.Logger
}

type handlers struct {
	sessions      *auth.CookieStore
	authenticator *auth.Authenticator
	clock         *clock.Policy
	ledger        Ledger
	board         Board
	prompts       Prompts
	logger        logging.Logger
}

// NewRouter wires the capsule routes behind the session gate.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	h := &handlers{
		sessions:      d.Sessions,
		authenticator: d.Authenticator,
		clock:         d.Clock,
		ledger:        d.Ledger,
		board:         d.Board,
		prompts:       d.Prompts,
		logger:        logger.With("module", "http"),
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(Gate(d.Sessions))

	r.Get("/login", h.loginState)
	r.Post("/login", h.login)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.health)
		api.Post("/logout", h.logout)

		api.Get("/entries", h.listEntries)
		api.Post("/entries", h.upsertEntry)
		api.Delete("/entries", h.deleteEntry)
		api.Post("/entries/new", h.createEntry)

		api.Get("/capsule", h.getCapsule)

		api.Get("/board", h.listBoard)
		api.Post("/board/upload-url", h.createUploadURL)
		api.Post("/board/confirm", h.confirmUpload)

		api.Get("/questions/suggestions", h.suggestQuestions)
	})

	return r
}
