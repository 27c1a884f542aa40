package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/dbx"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/images"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/slots"
)

// --- fake repositories ---

type slotKey struct {
	partner    string
	year, slot int
}

type fakeSlotsRepo struct {
	mu     sync.Mutex
	rows   map[slotKey]*models.EntrySlot
	nextID int64

	listErr   error
	insertErr error
	upsertErr error
	deleteErr error

	// beforeInsert runs ahead of each Insert; tests use it to simulate a
	// concurrent writer grabbing the slot.
	beforeInsert func(r *fakeSlotsRepo, s *models.EntrySlot)
	inserts      int
}

func newFakeSlotsRepo() *fakeSlotsRepo {
	return &fakeSlotsRepo{rows: map[slotKey]*models.EntrySlot{}}
}

func (f *fakeSlotsRepo) put(partner string, year, slot int) {
	f.nextID++
	f.rows[slotKey{partner, year, slot}] = &models.EntrySlot{
		ID: f.nextID, Partner: partner, Year: year, Slot: slot, Question: "q", Answer: "a",
	}
}

func (f *fakeSlotsRepo) ListByPartnerYear(ctx context.Context, partner string, year int) ([]*models.EntrySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.EntrySlot
	for k, v := range f.rows {
		if k.partner == partner && k.year == year {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (f *fakeSlotsRepo) ListYear(ctx context.Context, year int) ([]*models.EntrySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.EntrySlot
	for k, v := range f.rows {
		if k.year == year {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Partner != out[j].Partner {
			return out[i].Partner < out[j].Partner
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

func (f *fakeSlotsRepo) Years(ctx context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	seen := map[int]bool{}
	var out []int
	for k := range f.rows {
		if !seen[k.year] {
			seen[k.year] = true
			out = append(out, k.year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

func (f *fakeSlotsRepo) Insert(ctx context.Context, s *models.EntrySlot) (*models.EntrySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.beforeInsert != nil {
		f.beforeInsert(f, s)
	}
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	k := slotKey{s.Partner, s.Year, s.Slot}
	if _, taken := f.rows[k]; taken {
		return nil, common.ErrSlotConflict
	}
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.rows[k] = s
	return s, nil
}

func (f *fakeSlotsRepo) Upsert(ctx context.Context, s *models.EntrySlot) (*models.EntrySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	k := slotKey{s.Partner, s.Year, s.Slot}
	if old, ok := f.rows[k]; ok {
		old.Question, old.Answer = s.Question, s.Answer
		return old, nil
	}
	f.nextID++
	s.ID = f.nextID
	f.rows[k] = s
	return s, nil
}

func (f *fakeSlotsRepo) Delete(ctx context.Context, partner string, year, slot int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, slotKey{partner, year, slot})
	return nil
}

type fakeImagesRepo struct {
	mu        sync.Mutex
	rows      []*models.BoardImage
	insertErr error
	listErr   error
	listCalls int
}

func (f *fakeImagesRepo) Insert(ctx context.Context, img *models.BoardImage) (*models.BoardImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	img.CreatedAt = time.Now()
	f.rows = append(f.rows, img)
	return img, nil
}

func (f *fakeImagesRepo) ListByYear(ctx context.Context, year int) ([]*models.BoardImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.BoardImage
	for _, r := range f.rows {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	slots  *fakeSlotsRepo
	images *fakeImagesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{slots: newFakeSlotsRepo(), images: &fakeImagesRepo{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Slots(dbx.DBTX) slots.Repository             { return m.slots }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository           { return m.images }

// --- fake presigner ---

type fakePresigner struct {
	mu        sync.Mutex
	putKeys   []string
	getKeys   []string
	putTTL    time.Duration
	getTTL    time.Duration
	putErr    error
	getErrFor map[string]error
}

func (p *fakePresigner) SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.putErr != nil {
		return "", p.putErr
	}
	p.putKeys = append(p.putKeys, key)
	p.putTTL = ttl
	return "https://storage.test/put/" + key, nil
}

func (p *fakePresigner) SignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getKeys = append(p.getKeys, key)
	p.getTTL = ttl
	if err := p.getErrFor[key]; err != nil {
		return "", err
	}
	return "https://storage.test/get/" + key, nil
}
