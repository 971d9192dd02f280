package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fan-arena/arena-gov/src/api/config"
	"github.com/fan-arena/arena-gov/src/ledger"
)

const testSecret = "test-secret"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupRouter(t *testing.T, rateLimit int) (*gin.Engine, *ledger.Engine, *fakeClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := ledger.NewMemoryStore()
	index := ledger.NewVoteIndex()
	clock := &fakeClock{now: time.Now()}
	eng, err := ledger.NewEngine(context.Background(), store, index, clock, ledger.NewBus())
	require.NoError(t, err)
	qry := ledger.NewQuery(store, index)

	cfg := config.Config{
		JWTSecret:     testSecret,
		AllowedOrigin: "http://localhost:3000",
		RateLimit:     rateLimit,
	}
	return New(cfg, eng, qry, nil), eng, clock
}

func bearer(t *testing.T, addr string) string {
	t.Helper()
	tok, err := issueJWT(addr, []byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func doJSON(r *gin.Engine, method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProposalEndpoint(t *testing.T) {
	r, _, _ := setupRouter(t, 100)
	auth := bearer(t, "0xCreator")

	w := doJSON(r, http.MethodPost, "/v1/proposals", auth, gin.H{
		"title":            "<b>Budget</b> 2026",
		"description":      "Raise the event budget.",
		"votingPeriodDays": 7,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p ledger.Proposal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, uint64(0), p.ID)
	assert.Equal(t, "Budget 2026", p.Title, "markup is stripped before storage")
	assert.Equal(t, "0xCreator", p.Creator)
	assert.Equal(t, p.StartTime+7*86400, p.EndTime)

	w = doJSON(r, http.MethodGet, "/v1/proposals/0", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/proposals/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProposalRejectsBadInput(t *testing.T) {
	r, _, _ := setupRouter(t, 100)
	auth := bearer(t, "0xCreator")

	// Missing auth entirely.
	w := doJSON(r, http.MethodPost, "/v1/proposals", "", gin.H{
		"title": "T", "description": "D", "votingPeriodDays": 7,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/proposals", auth, gin.H{
		"title": "", "description": "D", "votingPeriodDays": 7,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/proposals", auth, gin.H{
		"title": "T", "description": "D", "votingPeriodDays": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Whitespace-only title passes binding but fails ledger validation.
	w = doJSON(r, http.MethodPost, "/v1/proposals", auth, gin.H{
		"title": "   ", "description": "D", "votingPeriodDays": 7,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoteEndpoint(t *testing.T) {
	r, _, clock := setupRouter(t, 100)
	creator := bearer(t, "0xCreator")
	voter := bearer(t, "0xVoter")

	w := doJSON(r, http.MethodPost, "/v1/proposals", creator, gin.H{
		"title": "T", "description": "D", "votingPeriodDays": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/votes/0/status", voter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"voted": false}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/v1/votes", voter, gin.H{
		"proposalId": 0, "choice": "for",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/v1/votes/0/status", voter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"voted": true}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/v1/votes", voter, gin.H{
		"proposalId": 0, "choice": "against",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/votes", voter, gin.H{
		"proposalId": 999, "choice": "for",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/votes", voter, gin.H{
		"proposalId": 0, "choice": "abstain",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Window expiry surfaces as a conflict, tallies frozen.
	clock.Advance(25 * time.Hour)
	w = doJSON(r, http.MethodPost, "/v1/votes", bearer(t, "0xLate"), gin.H{
		"proposalId": 0, "choice": "for",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/proposals/0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p ledger.Proposal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, uint64(1), p.VoteCountFor)
	assert.Equal(t, uint64(0), p.VoteCountAgainst)
}

func TestListEndpointFilters(t *testing.T) {
	r, eng, clock := setupRouter(t, 100)
	ctx := context.Background()

	// One proposal whose window has already expired, one still open.
	_, err := eng.CreateProposal(ctx, "Old treasury plan", "D", 1, "0xCreator")
	require.NoError(t, err)
	clock.Advance(2 * 24 * time.Hour)
	_, err = eng.CreateProposal(ctx, "New marketing push", "D", 7, "0xCreator")
	require.NoError(t, err)

	var list []ledger.Proposal

	w := doJSON(r, http.MethodGet, "/v1/proposals", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, uint64(1), list[0].ID, "default order is newest first")
	assert.Equal(t, uint64(0), list[1].ID)

	w = doJSON(r, http.MethodGet, "/v1/proposals?sort=oldest", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, uint64(0), list[0].ID)

	w = doJSON(r, http.MethodGet, "/v1/proposals?status=active", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, uint64(1), list[0].ID)

	w = doJSON(r, http.MethodGet, "/v1/proposals?status=closed", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, uint64(0), list[0].ID)

	w = doJSON(r, http.MethodGet, "/v1/proposals?q=marketing", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "New marketing push", list[0].Title)

	// Most-voted first once proposal 1 has the only vote.
	w = doJSON(r, http.MethodPost, "/v1/votes", bearer(t, "0xVoter"), gin.H{
		"proposalId": 1, "choice": "for",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doJSON(r, http.MethodGet, "/v1/proposals?sort=mostVotes", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, uint64(1), list[0].ID)
}

func TestRateLimitOnMutatingRoutes(t *testing.T) {
	r, _, _ := setupRouter(t, 2)
	auth := bearer(t, "0xCreator")

	body := gin.H{"title": "T", "description": "D", "votingPeriodDays": 7}
	for range 2 {
		w := doJSON(r, http.MethodPost, "/v1/proposals", auth, body)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := doJSON(r, http.MethodPost, "/v1/proposals", auth, body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Reads are not limited.
	w = doJSON(r, http.MethodGet, "/v1/proposals", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
