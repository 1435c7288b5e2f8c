package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticedesk/noticedesk-backend/internal/common"
	"github.com/noticedesk/noticedesk-backend/internal/domain"
	"github.com/noticedesk/noticedesk-backend/internal/handler"
	"github.com/noticedesk/noticedesk-backend/internal/notify"
	"github.com/noticedesk/noticedesk-backend/internal/repository"
	"github.com/noticedesk/noticedesk-backend/internal/routes"
	"github.com/noticedesk/noticedesk-backend/internal/store"
	pkgjwt "github.com/noticedesk/noticedesk-backend/pkg/jwt"
)

type testServer struct {
	router     *gin.Engine
	mem        *store.MemoryClient
	jwtManager *pkgjwt.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemoryClient()
	gen, err := store.NewGenerator("")
	require.NoError(t, err)
	bus := notify.NewBus(time.Millisecond)
	jwtManager := pkgjwt.NewManager("test-secret", time.Hour)

	eventsRepo := repository.NewEventRepository(mem, bus, gen)
	postsRepo := repository.NewPostRepository(mem, bus, gen)

	router := gin.New()
	routes.Setup(router, routes.Handlers{
		Events:      handler.NewEventHandler(eventsRepo),
		Posts:       handler.NewPostHandler(postsRepo),
		Attachments: handler.NewAttachmentHandler(mem, gen),
		Health:      handler.NewHealthHandler("memory"),
	}, jwtManager)

	return &testServer{router: router, mem: mem, jwtManager: jwtManager}
}

func (s *testServer) token(t *testing.T, level int) string {
	t.Helper()
	token, err := s.jwtManager.IssueToken("admin-1", "Admin", level)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeEvents(t *testing.T, rec *httptest.ResponseRecorder) ([]domain.Event, *common.Meta) {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Data    []domain.Event `json:"data"`
		Meta    *common.Meta   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data, resp.Meta
}

func TestRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMutationsRequireAdminLevel(t *testing.T) {
	s := newTestServer(t)
	viewer := s.token(t, 1)

	rec := s.do(t, http.MethodPost, "/api/v1/events", viewer, gin.H{
		"title": "Not Allowed", "starts_at": "2025-06-01T10:00:00Z",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Reads are allowed for any authenticated user.
	rec = s.do(t, http.MethodGet, "/api/v1/events", viewer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEventAdminFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 10)

	rec := s.do(t, http.MethodPost, "/api/v1/events", admin, gin.H{
		"title":     "Team Meeting",
		"starts_at": "2025-01-10T10:00:00Z",
		"location":  "Room 4",
		"link_url":  "example.org/agenda",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var createResp struct {
		Data domain.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &createResp))
	id := createResp.Data.ID
	require.NotEmpty(t, id)
	assert.Equal(t, "https://example.org/agenda", createResp.Data.LinkURL)

	rec = s.do(t, http.MethodGet, "/api/v1/events?partition=active", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events, meta := decodeEvents(t, rec)
	require.Len(t, events, 1)
	assert.False(t, meta.Fallback)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/archive", id), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/events?partition=archived", admin, nil)
	events, _ = decodeEvents(t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, domain.StateArchived, events[0].State)

	rec = s.do(t, http.MethodGet, "/api/v1/events?partition=active", admin, nil)
	events, _ = decodeEvents(t, rec)
	assert.Empty(t, events)

	// Archiving twice is a conflict, not a crash.
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/archive", id), admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/events/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.mem.Len())
}

func TestPostArchiveReturnsNewID(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 10)

	rec := s.do(t, http.MethodPost, "/api/v1/posts", admin, gin.H{
		"title": "Announcement", "content": "Details.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var createResp struct {
		Data domain.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &createResp))

	rec = s.do(t, http.MethodPost, "/api/v1/posts/"+createResp.Data.ID+"/archive", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var archiveResp struct {
		Data domain.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &archiveResp))
	assert.NotEqual(t, createResp.Data.ID, archiveResp.Data.ID)
	assert.Equal(t, createResp.Data.Title, archiveResp.Data.Title)
}

func TestListServesFallbackOnEmptyStore(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 10)

	rec := s.do(t, http.MethodGet, "/api/v1/events", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	events, meta := decodeEvents(t, rec)
	assert.NotEmpty(t, events)
	require.NotNil(t, meta)
	assert.True(t, meta.Fallback, "an empty store serves sample data, flagged as such")
}

func TestHealthEndpointIsPublic(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memory")
}
