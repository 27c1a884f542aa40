package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/server/auth"
	"github.com/dmitrijs2005/timecapsule/internal/server/clock"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	UploadURLTTL   = 15 * time.Minute
	DownloadURLTTL = 3600 * time.Second
)

// AllowedContentTypes maps the accepted image MIME types to the file
// extension used in storage paths.
var AllowedContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/heic": "heic",
}

// Presigner signs object storage URLs.
type Presigner interface {
	SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	SignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// BoardPhoto is a stored image together with a temporary download URL.
type BoardPhoto struct {
	Image *models.BoardImage
	URL   string
}

// BoardListing is the board of one year. Photos is empty while the year is
// locked.
type BoardListing struct {
	Locked bool
	Photos []BoardPhoto
}

// BoardService manages the shared photo board.
type BoardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   Presigner
	clock       *clock.Policy
	logger      logging.Logger
	newID       func() string
}

func NewBoardService(db *sql.DB, repomanager repomanager.RepositoryManager, presigner Presigner, policy *clock.Policy, logger logging.Logger) *BoardService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &BoardService{
		db:          db,
		repomanager: repomanager,
		presigner:   presigner,
		clock:       policy,
		logger:      logger,
		newID:       func() string { return uuid.NewString() },
	}
}

// StoragePrefix is the key prefix under which partner may store images
// for year.
func StoragePrefix(partner auth.Partner, year int) string {
	return fmt.Sprintf("%d/%s/", year, partner)
}

// CreateUploadURL reserves a fresh storage path for an image of the given
// content type and signs a PUT URL for it.
func (s *BoardService) CreateUploadURL(ctx context.Context, partner auth.Partner, year int, contentType string) (*models.UploadTicket, error) {
	if !partner.Valid() {
		return nil, common.ErrUnauthenticated
	}
	ext, ok := AllowedContentTypes[contentType]
	if !ok {
		return nil, common.Invalid("Unsupported file type")
	}

	path := StoragePrefix(partner, year) + s.newID() + "." + ext

	url, err := s.presigner.SignedUploadURL(ctx, path, contentType, UploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("create upload url: %w", err)
	}
	return &models.UploadTicket{UploadURL: url, StoragePath: path}, nil
}

// Confirm records an uploaded image. The path must live under the
// partner's own prefix for year.
func (s *BoardService) Confirm(ctx context.Context, partner auth.Partner, year int, storagePath string, caption *string) (*models.BoardImage, error) {
	if !partner.Valid() {
		return nil, common.ErrUnauthenticated
	}
	storagePath = strings.TrimSpace(storagePath)
	if storagePath == "" {
		return nil, common.Invalid("Missing storage_path")
	}
	if !strings.HasPrefix(storagePath, StoragePrefix(partner, year)) || strings.Contains(storagePath, "..") {
		return nil, common.Invalid("Invalid storage path")
	}

	if caption != nil {
		c := strings.TrimSpace(*caption)
		if c == "" {
			caption = nil
		} else {
			caption = &c
		}
	}

	return s.repomanager.Images(s.db).Insert(ctx, &models.BoardImage{
		ID:          s.newID(),
		Year:        year,
		UploadedBy:  partner.String(),
		StoragePath: storagePath,
		Caption:     caption,
	})
}

// List returns the board of year. A locked year yields an empty listing
// without consulting storage. Images whose URL cannot be signed are
// left out.
func (s *BoardService) List(ctx context.Context, year int) (*BoardListing, error) {
	if !s.clock.IsUnlockedNow(year) {
		return &BoardListing{Locked: true, Photos: []BoardPhoto{}}, nil
	}

	images, err := s.repomanager.Images(s.db).ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	photos := make([]BoardPhoto, 0, len(images))
	for _, img := range images {
		url, err := s.presigner.SignedDownloadURL(ctx, img.StoragePath, DownloadURLTTL)
		if err != nil {
			s.logger.Warn(ctx, "skipping board image", "id", img.ID, "path", img.StoragePath, "error", err)
			continue
		}
		photos = append(photos, BoardPhoto{Image: img, URL: url})
	}

	return &BoardListing{Photos: photos}, nil
}
