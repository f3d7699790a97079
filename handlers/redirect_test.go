package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cylink/models"
	"cylink/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClicks struct {
	result     *services.RedirectResult
	err        error
	trackingID string

	mu       sync.Mutex
	calls    int
	lastMeta services.VisitorMeta
}

func (f *fakeClicks) ResolveAndRecord(shortCode string, meta *services.VisitorMeta) (*services.RedirectResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	meta.TrackingID = f.trackingID
	f.lastMeta = *meta
	return f.result, nil
}

func (f *fakeClicks) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRedirectTypes struct {
	redirectType string
	err          error
}

func (f *fakeRedirectTypes) RedirectType(shortCode string) (string, error) {
	return f.redirectType, f.err
}

type fakeImpressions struct {
	err   error
	calls int32
}

func (f *fakeImpressions) Record(urlID uint, meta services.VisitorMeta) error {
	atomic.AddInt32(&f.calls, 1)
	return f.err
}

type fakeGoals struct {
	goal *models.ConversionGoal
	err  error
}

func (f *fakeGoals) FirstGoal(urlID uint) (*models.ConversionGoal, error) {
	return f.goal, f.err
}

type fakeAttributions struct {
	mu             sync.Mutex
	calls          int
	lastTrackingID string
	lastGoalID     uint
}

func (f *fakeAttributions) Attribute(trackingID string, goalID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastTrackingID = trackingID
	f.lastGoalID = goalID
}

func (f *fakeAttributions) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type redirectFixture struct {
	clicks       *fakeClicks
	links        *fakeRedirectTypes
	impressions  *fakeImpressions
	goals        *fakeGoals
	attributions *fakeAttributions
	router       *gin.Engine
}

func newRedirectFixture() *redirectFixture {
	gin.SetMode(gin.TestMode)

	f := &redirectFixture{
		clicks: &fakeClicks{
			result: &services.RedirectResult{
				OriginalURL: "https://example.com/page?x=1",
				ClickID:     42,
				URLID:       3,
			},
			trackingID: "abc123",
		},
		links:        &fakeRedirectTypes{redirectType: models.RedirectTypeTemporary},
		impressions:  &fakeImpressions{},
		goals:        &fakeGoals{},
		attributions: &fakeAttributions{},
	}

	handler := NewRedirectHandler(f.clicks, f.links, f.impressions, f.goals, f.attributions, zap.NewNop())
	handler.attributionDelay = time.Millisecond

	router := gin.New()
	router.POST("/api/v1/conversions", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	router.NoRoute(handler.Redirect)

	f.router = router
	return f
}

func (f *redirectFixture) get(path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "192.0.2.10:52412"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRedirectAppendsTrackingParamsToExistingQuery(t *testing.T) {
	f := newRedirectFixture()

	w := f.get("/abc", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t,
		"https://example.com/page?x=1&utm_source=cylink&utm_medium=shortlink&utm_campaign=conversion&utm_content=abc123",
		w.Header().Get("Location"))
}

func TestRedirectUsesQuestionMarkWithoutExistingQuery(t *testing.T) {
	f := newRedirectFixture()
	f.clicks.result.OriginalURL = "https://example.com/page"

	w := f.get("/abc", nil)

	assert.Equal(t,
		"https://example.com/page?utm_source=cylink&utm_medium=shortlink&utm_campaign=conversion&utm_content=abc123",
		w.Header().Get("Location"))
}

func TestRedirectOmitsTrackingParamsWithoutTrackingID(t *testing.T) {
	f := newRedirectFixture()
	f.clicks.trackingID = ""

	w := f.get("/abc", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/page?x=1", w.Header().Get("Location"))
}

func TestRedirectStatusFollowsRedirectType(t *testing.T) {
	f := newRedirectFixture()
	f.links.redirectType = models.RedirectTypePermanent
	assert.Equal(t, http.StatusMovedPermanently, f.get("/abc", nil).Code)

	f = newRedirectFixture()
	f.links.redirectType = models.RedirectTypeTemporary
	assert.Equal(t, http.StatusFound, f.get("/abc", nil).Code)

	// Anything other than the permanent marker means temporary.
	f = newRedirectFixture()
	f.links.redirectType = "permanent"
	assert.Equal(t, http.StatusFound, f.get("/abc", nil).Code)

	// A failed type lookup also falls back to temporary.
	f = newRedirectFixture()
	f.links.err = errors.New("db down")
	assert.Equal(t, http.StatusFound, f.get("/abc", nil).Code)
}

func TestRedirectTypeLookupFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	f := newRedirectFixture()
	f.links.err = errors.New("db down")

	handler := NewRedirectHandler(f.clicks, f.links, f.impressions, f.goals, f.attributions, zap.New(core))
	handler.attributionDelay = time.Millisecond
	router := gin.New()
	router.NoRoute(handler.Redirect)

	req := httptest.NewRequest(http.MethodGet, "/abc", nil)
	req.RemoteAddr = "192.0.2.10:52412"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("failed to look up redirect type, using temporary").Len())
}

func TestRedirectUnknownCodeReturnsStructured404(t *testing.T) {
	f := newRedirectFixture()
	f.clicks.err = services.ErrLinkNotFound

	w := f.get("/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Status)
	assert.Equal(t, "Short URL not found or has expired", body.Message)
}

func TestRedirectResolutionFailureReturns500(t *testing.T) {
	f := newRedirectFixture()
	f.clicks.err = errors.New("database unavailable")

	w := f.get("/abc", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body.Message)
}

func TestRedirectUnaffectedByImpressionFailure(t *testing.T) {
	f := newRedirectFixture()
	f.impressions.err = errors.New("impression insert failed")

	w := f.get("/abc", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t,
		"https://example.com/page?x=1&utm_source=cylink&utm_medium=shortlink&utm_campaign=conversion&utm_content=abc123",
		w.Header().Get("Location"))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&f.impressions.calls) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRedirectUnaffectedByGoalLookupFailure(t *testing.T) {
	f := newRedirectFixture()
	f.goals.err = errors.New("goal lookup failed")

	w := f.get("/abc", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, f.attributions.callCount())
}

func TestAttributionFiresWithGoalAndTrackingID(t *testing.T) {
	f := newRedirectFixture()
	f.goals.goal = &models.ConversionGoal{ID: 9, URLID: 3, Name: "signup"}

	w := f.get("/abc", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	require.Eventually(t, func() bool {
		return f.attributions.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	f.attributions.mu.Lock()
	defer f.attributions.mu.Unlock()
	assert.Equal(t, "abc123", f.attributions.lastTrackingID)
	assert.Equal(t, uint(9), f.attributions.lastGoalID)
}

func TestAttributionSkippedWithoutGoal(t *testing.T) {
	f := newRedirectFixture()

	f.get("/abc", nil)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, f.attributions.callCount())
}

func TestAttributionSkippedWithoutTrackingID(t *testing.T) {
	f := newRedirectFixture()
	f.goals.goal = &models.ConversionGoal{ID: 9, URLID: 3, Name: "signup"}
	f.clicks.trackingID = ""

	f.get("/abc", nil)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, f.attributions.callCount())
}

func TestReservedAndMalformedPathsNeverResolve(t *testing.T) {
	paths := []string{"/api", "/api/unknown", "/a/b", "/api/v1/whatever"}
	for _, path := range paths {
		f := newRedirectFixture()
		w := f.get(path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "path %s", path)
		assert.Zero(t, f.clicks.callCount(), "path %s must not trigger resolution", path)
	}
}

func TestVisitorMetaPrefersForwardedForHeader(t *testing.T) {
	f := newRedirectFixture()

	f.get("/abc", map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
		"User-Agent":      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1",
	})

	f.clicks.mu.Lock()
	defer f.clicks.mu.Unlock()
	assert.Equal(t, "203.0.113.7", f.clicks.lastMeta.IPAddress)
	assert.Equal(t, "mobile", f.clicks.lastMeta.DeviceType)
}

func TestVisitorMetaFallsBackToRemoteAddr(t *testing.T) {
	f := newRedirectFixture()

	f.get("/abc", nil)

	f.clicks.mu.Lock()
	defer f.clicks.mu.Unlock()
	assert.Equal(t, "192.0.2.10", f.clicks.lastMeta.IPAddress)
	assert.Equal(t, "unknown", f.clicks.lastMeta.Country)
}

func TestVisitorMetaAcceptsBothReferrerSpellings(t *testing.T) {
	f := newRedirectFixture()
	f.get("/abc", map[string]string{"Referer": "https://a.example.com/"})
	f.clicks.mu.Lock()
	assert.Equal(t, "https://a.example.com/", f.clicks.lastMeta.Referrer)
	f.clicks.mu.Unlock()

	f = newRedirectFixture()
	f.get("/abc", map[string]string{"Referrer": "https://b.example.com/"})
	f.clicks.mu.Lock()
	assert.Equal(t, "https://b.example.com/", f.clicks.lastMeta.Referrer)
	f.clicks.mu.Unlock()
}

func TestCandidateShortCode(t *testing.T) {
	tests := []struct {
		path     string
		wantCode string
		wantOK   bool
	}{
		{"/abc", "abc", true},
		{"/abc123", "abc123", true},
		{"/apidocs", "apidocs", true},
		{"/", "", false},
		{"/api", "", false},
		{"/api/links", "", false},
		{"/a/b", "", false},
	}
	for _, tt := range tests {
		code, ok := candidateShortCode(tt.path)
		assert.Equal(t, tt.wantOK, ok, "path %s", tt.path)
		assert.Equal(t, tt.wantCode, code, "path %s", tt.path)
	}
}
