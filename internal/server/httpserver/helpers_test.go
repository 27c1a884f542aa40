package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/server/auth"
	"github.com/dmitrijs2005/timecapsule/internal/server/clock"
	"github.com/dmitrijs2005/timecapsule/internal/server/config"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"github.com/dmitrijs2005/timecapsule/internal/server/services"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type ledgerCall struct {
	op       string
	partner  auth.Partner
	year     int
	slot     int
	question string
	answer   string
}

type fakeLedger struct {
	mu      sync.Mutex
	calls   []ledgerCall
	entries []*models.EntrySlot
	years   []int
	err     error
}

func (f *fakeLedger) record(c ledgerCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeLedger) last() ledgerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ledgerCall{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeLedger) List(ctx context.Context, partner auth.Partner, year int) ([]*models.EntrySlot, error) {
	f.record(ledgerCall{op: "list", partner: partner, year: year})
	return f.entries, f.err
}

func (f *fakeLedger) ListYear(ctx context.Context, year int) ([]*models.EntrySlot, error) {
	f.record(ledgerCall{op: "listYear", year: year})
	return f.entries, f.err
}

func (f *fakeLedger) Years(ctx context.Context) ([]int, error) {
	return f.years, nil
}

func (f *fakeLedger) Create(ctx context.Context, partner auth.Partner, year int, question, answer string) (*models.EntrySlot, error) {
	f.record(ledgerCall{op: "create", partner: partner, year: year, question: question, answer: answer})
	if f.err != nil {
		return nil, f.err
	}
	return &models.EntrySlot{Partner: partner.String(), Year: year, Slot: 1, Question: question, Answer: answer}, nil
}

func (f *fakeLedger) Upsert(ctx context.Context, partner auth.Partner, year, slot int, question, answer string) (*models.EntrySlot, error) {
	f.record(ledgerCall{op: "upsert", partner: partner, year: year, slot: slot, question: question, answer: answer})
	if f.err != nil {
		return nil, f.err
	}
	return &models.EntrySlot{Partner: partner.String(), Year: year, Slot: slot, Question: question, Answer: answer}, nil
}

func (f *fakeLedger) Delete(ctx context.Context, partner auth.Partner, year, slot int) error {
	f.record(ledgerCall{op: "delete", partner: partner, year: year, slot: slot})
	return f.err
}

type fakeBoard struct {
	listing     *services.BoardListing
	ticket      *models.UploadTicket
	image       *models.BoardImage
	err         error
	lastYear    int
	lastType    string
	lastPath    string
	lastCaption *string
	lastPartner auth.Partner
}

func (f *fakeBoard) CreateUploadURL(ctx context.Context, partner auth.Partner, year int, contentType string) (*models.UploadTicket, error) {
	f.lastPartner, f.lastYear, f.lastType = partner, year, contentType
	return f.ticket, f.err
}

func (f *fakeBoard) Confirm(ctx context.Context, partner auth.Partner, year int, storagePath string, caption *string) (*models.BoardImage, error) {
	f.lastPartner, f.lastYear, f.lastPath, f.lastCaption = partner, year, storagePath, caption
	return f.image, f.err
}

func (f *fakeBoard) List(ctx context.Context, year int) (*services.BoardListing, error) {
	f.lastYear = year
	return f.listing, f.err
}

type fakePrompts struct{ lastCount int }

func (f *fakePrompts) Sample(count int) []string {
	f.lastCount = count
	return []string{"q1", "q2"}
}

type testEnv struct {
	router  http.Handler
	codec   *auth.Codec
	ledger  *fakeLedger
	board   *fakeBoard
	prompts *fakePrompts
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	codec, err := auth.NewCodec(testSecret, time.Hour)
	require.NoError(t, err)

	policy, err := clock.New(clock.DefaultZone)
	require.NoError(t, err)
	policy = policy.WithNow(func() time.Time { return now })

	env := &testEnv{
		codec:   codec,
		ledger:  &fakeLedger{},
		board:   &fakeBoard{},
		prompts: &fakePrompts{},
	}
	env.router = NewRouter(Deps{
		Sessions:      auth.NewCookieStore(codec, false, nil),
		Authenticator: auth.NewAuthenticator(config.Credentials{ACWPassword: "lovebirds"}),
		Clock:         policy,
		Ledger:        env.ledger,
		Board:         env.board,
		Prompts:       env.prompts,
	})
	return env
}

// do sends a request, signed in as partner unless partner is empty.
func (e *testEnv) do(t *testing.T, partner auth.Partner, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if partner != "" {
		token, err := e.codec.Issue(partner)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "vtimecapsule_session", Value: token})
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func nyDate(t *testing.T, year int, month time.Month, day, hour int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(clock.DefaultZone)
	require.NoError(t, err)
	return time.Date(year, month, day, hour, 0, 0, 0, loc)
}
