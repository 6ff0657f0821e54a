package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"happythings/internal/auth"
	"happythings/internal/clock"
	"happythings/internal/crypto"
	"happythings/internal/feed"
	"happythings/internal/models"
	"happythings/internal/ratelimit"
	"happythings/internal/services"
	"happythings/internal/storage"
	"happythings/internal/store"
)

// 03:00 UTC on Mar 10 is Mar 9 in the business timezone.
var testNow = time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC)

var uploadSecret = []byte("upload-secret")

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

type testServer struct {
	t *testing.T
	h http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clk := clock.Fixed(testNow)
	cal, err := clock.NewCalendar(clk, clock.DefaultTimezone)
	require.NoError(t, err)
	tokens, err := crypto.NewTokenService([]byte(strings.Repeat("s", 32)))
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	mem := store.NewMemory()
	blobs := storage.NewMemory("http://localhost:8080/blobs")
	authSvc := services.NewAuthService(mem, ratelimit.NewMemory(100, ratelimit.Policy{}, clk.Now), tokens, clk, zap.NewNop(),
		services.AuthOptions{PasswordHash: hash})
	h := NewRouter(RouterConfig{
		Entries:        services.NewEntryService(mem, authSvc, cal),
		Auth:           authSvc,
		Images:         services.NewImageService(mem, blobs, clk),
		Clock:          clk,
		Logger:         zap.NewNop(),
		Feed:           feed.Channel{Title: "Things to be Happy About", Description: "daily"},
		UploadSecret:   uploadSecret,
		AllowedOrigins: []string{"*"},
		Blobs:          blobs,
	})
	return &testServer{t: t, h: h}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if _, ok := body.([]byte); !ok && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login() string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"password": "pw"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var res services.LoginResult
	require.NoError(s.t, json.NewDecoder(rec.Body).Decode(&res))
	return res.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := s.login()
	status := decode[services.AuthStatus](t, s.do(http.MethodGet, "/api/auth/check", token, nil))
	assert.True(t, status.Authenticated)
	require.NotNil(t, status.ExpiresAt)
	assert.True(t, testNow.Add(services.DefaultSessionTTL).Equal(*status.ExpiresAt))

	rec = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	status = decode[services.AuthStatus](t, s.do(http.MethodGet, "/api/auth/check", token, nil))
	assert.False(t, status.Authenticated)
	assert.Nil(t, status.ExpiresAt)
}

func TestLogoutMalformedBodyIsNoOp(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	rec := s.do(http.MethodPost, "/api/auth/logout", "", []byte("{not json"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	status := decode[services.AuthStatus](t, s.do(http.MethodGet, "/api/auth/check", token, nil))
	assert.True(t, status.Authenticated)
}

func TestLoginLockout(t *testing.T) {
	s := newTestServer(t)
	login := func(pw string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"`+pw+`"}`))
		req.Header.Set("X-Forwarded-For", "198.51.100.1")
		rec := httptest.NewRecorder()
		s.h.ServeHTTP(rec, req)
		return rec.Code
	}
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusUnauthorized, login("wrong"))
	}
	assert.Equal(t, http.StatusTooManyRequests, login("pw"))
}

func TestAdminRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/entries/date/2024-03-01"},
		{http.MethodDelete, "/api/entries/id/abc"},
		{http.MethodPost, "/api/entries/import"},
		{http.MethodGet, "/api/admin/overview"},
		{http.MethodPost, "/api/admin/sessions/cleanup"},
	} {
		assert.Equal(t, http.StatusUnauthorized, s.do(tc.method, tc.path, "", nil).Code, tc.path)
		assert.Equal(t, http.StatusUnauthorized, s.do(tc.method, tc.path, "bogus", nil).Code, tc.path)
	}
}

func TestEntryLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	rec := s.do(http.MethodPut, "/api/entries/date/2024-03-01", token, upsertEntryRequest{Things: []string{"rain", "books"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := decode[idResponse](t, rec).ID
	require.NotEmpty(t, id)

	rec = s.do(http.MethodPut, "/api/entries/date/2024-03-01", token, upsertEntryRequest{Things: []string{"sun"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode[idResponse](t, rec).ID)

	entry := decode[models.Entry](t, s.do(http.MethodGet, "/api/entries/date/2024-03-01", "", nil))
	assert.Equal(t, models.Things{"sun"}, entry.Things)

	page := decode[services.EntryPage](t, s.do(http.MethodGet, "/api/entries?numItems=5", "", nil))
	assert.Len(t, page.Page, 1)
	assert.True(t, page.IsDone)
	assert.Empty(t, page.ContinueCursor)

	rec = s.do(http.MethodDelete, "/api/entries/id/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/entries/date/2024-03-01", "", nil).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/entries/date/March-1", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/entries?cursor=%25%25", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/entries?numItems=ten", "", nil).Code)
}

func TestUpdateBonusRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPut, "/api/entries/date/2024-03-09/bonus", "", bonusRequest{Bonus: "today is open"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPut, "/api/entries/date/2024-03-08/bonus", "", bonusRequest{Bonus: "late"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	token := s.login()
	rec = s.do(http.MethodPut, "/api/entries/date/2024-03-08/bonus", "", bonusRequest{Bonus: "late", AdminToken: token})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPut, "/api/entries/date/2024-03-07/bonus", token, bonusRequest{Bonus: "later"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/api/entries/date/2024-03-09/bonus", "", bonusRequest{Bonus: strings.Repeat("a", 251)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	entry := decode[models.Entry](t, s.do(http.MethodGet, "/api/entries/date/2024-03-08", "", nil))
	require.NotNil(t, entry.Bonus)
	assert.Equal(t, "late", *entry.Bonus)
	assert.Empty(t, entry.Things)
}

func TestWeekAndImport(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	rec := s.do(http.MethodPost, "/api/entries/import", token, importRequest{Entries: []models.EntryInput{
		{Date: "2024-03-04", Things: []string{"b"}},
		{Date: "2024-03-03", Things: []string{"a"}},
		{Date: "2024-02-20", Things: []string{"old"}},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/entries/import", token, importRequest{Entries: []models.EntryInput{{Date: "bad"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	week := decode[[]models.Entry](t, s.do(http.MethodGet, "/api/entries/week?start=2024-03-03&end=2024-03-09", "", nil))
	require.Len(t, week, 2)
	assert.Equal(t, "2024-03-03", week[0].Date)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/entries/week?start=2024-03-09&end=2024-03-03", "", nil).Code)

	overview := decode[models.Overview](t, s.do(http.MethodGet, "/api/admin/overview", token, nil))
	assert.Equal(t, 3, overview.LiveEntries)
	assert.Equal(t, 1, overview.ActiveSessions)

	cleaned := decode[map[string]int64](t, s.do(http.MethodPost, "/api/admin/sessions/cleanup", token, nil))
	assert.Equal(t, int64(0), cleaned["deleted"])
}

func TestFeedRoute(t *testing.T) {
	s := newTestServer(t)
	token := s.login()
	s.do(http.MethodPut, "/api/entries/date/2024-03-01", token, upsertEntryRequest{Things: []string{"fish & chips"}})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Host = "happy.example"
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, feed.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, feed.CacheControl, rec.Header().Get("Cache-Control"))
	body := rec.Body.String()
	assert.Contains(t, body, "<link>https://happy.example/?date=2024-03-01</link>")
	assert.Contains(t, body, "<li>fish &amp; chips</li>")
}

func TestStoreImageRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/storeImage?weekStart=2024-03-03", "", pngBytes)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	upload, err := auth.IssueUploadToken(uploadSecret, time.Minute, time.Now())
	require.NoError(t, err)

	rec = s.do(http.MethodPost, "/storeImage?weekStart=2024-03-03", upload, storeImageRequest{
		ImageData:  base64.StdEncoding.EncodeToString(pngBytes),
		Prompt:     "collage",
		ThingCount: 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	stored := decode[storeImageResponse](t, rec)
	assert.True(t, strings.HasPrefix(stored.StorageID, "weekly/2024-03-03/"))
	assert.Equal(t, "http://localhost:8080/blobs/"+stored.StorageID, stored.URL)

	served, err := url.Parse(stored.URL)
	require.NoError(t, err)
	rec = s.do(http.MethodGet, served.Path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/blobs/weekly/2024-03-03/missing.png", "", nil).Code)

	req := httptest.NewRequest(http.MethodPost, "/storeImage?weekStart=2024-03-10&thingCount=2", bytes.NewReader(pngBytes))
	req.Header.Set("Authorization", "Bearer "+upload)
	req.Header.Set("Content-Type", "image/png")
	raw := httptest.NewRecorder()
	s.h.ServeHTTP(raw, req)
	require.Equal(t, http.StatusCreated, raw.Code, raw.Body.String())

	img := decode[models.WeeklyImage](t, s.do(http.MethodGet, "/api/weekly-images/2024-03-03", "", nil))
	assert.Equal(t, "collage", img.Prompt)
	assert.Equal(t, 4, img.ThingCount)

	list := decode[[]models.WeeklyImage](t, s.do(http.MethodGet, "/api/weekly-images", "", nil))
	assert.Len(t, list, 2)

	rec = s.do(http.MethodPost, "/storeImage?weekStart=2024-03-03", upload, storeImageRequest{ImageData: "!!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/weekly-images/2023-01-01", "", nil).Code)
}

func TestBlobRouteOnlyWithInProcessStore(t *testing.T) {
	clk := clock.Fixed(testNow)
	h := NewRouter(RouterConfig{Clock: clk, Logger: zap.NewNop(), AllowedOrigins: []string{"*"}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blobs/weekly/2024-03-03/a.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
