package controllers

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

	"github.com/wisetv/wisetv/admin"
	"github.com/wisetv/wisetv/config"
	"github.com/wisetv/wisetv/store"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.SetForTest(config.AppConfig{RedisHost: "127.0.0.1", RedisPort: 1, NoticeTTLSeconds: 4})
}

type memStore struct {
	mu      sync.Mutex
	records map[store.Collection][]store.Record
	nextID  int
}

func newMemStore() *memStore {
	return &memStore{records: map[store.Collection][]store.Record{}}
}

func (s *memStore) ListAll(ctx context.Context, c store.Collection) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Record(nil), s.records[c]...), nil
}

func (s *memStore) Create(ctx context.Context, c store.Collection, p store.Payload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := string(rune('a' + s.nextID))
	s.records[c] = append(s.records[c], store.Record{ID: id, Payload: p})
	return id, nil
}

func (s *memStore) Update(ctx context.Context, c store.Collection, id string, p store.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.records[c] {
		if rec.ID == id {
			s.records[c][i].Payload = p
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *memStore) Delete(ctx context.Context, c store.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[c][:0]
	for _, rec := range s.records[c] {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	s.records[c] = kept
	return nil
}

func newTestRouter(st store.Store, dashboard *admin.ListController) *gin.Engine {
	c := NewContentController(st, dashboard)
	r := gin.New()
	r.GET("/api/v1/posts", c.ListPosts)
	r.GET("/api/v1/posts/:id", c.GetPost)
	r.GET("/api/v1/social-links", c.ListSocialLinks)
	r.GET("/api/v1/admin/dashboard", c.Dashboard)
	r.POST("/api/v1/posts", c.CreatePost)
	r.PUT("/api/v1/posts/:id", c.UpdatePost)
	r.DELETE("/api/v1/posts/:id", c.DeletePost)
	r.POST("/api/v1/social-links", c.CreateSocialLink)
	r.PUT("/api/v1/social-links/:id", c.UpdateSocialLink)
	r.DELETE("/api/v1/social-links/:id", c.DeleteSocialLink)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func seedPosts(st *memStore) {
	st.records[store.CollectionPosts] = []store.Record{
		{ID: "p1", Payload: store.Payload{Title: "older", Category: "news", Content: "c1", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{ID: "p2", Payload: store.Payload{Title: "newer", Category: "movies", Content: "c2", Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}},
	}
}

func items(t *testing.T, envelope map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok)
	list, ok := data["items"].([]interface{})
	require.True(t, ok)
	return list
}

func TestListPosts(t *testing.T) {
	st := newMemStore()
	seedPosts(st)
	r := newTestRouter(st, nil)

	w, envelope := doJSON(t, r, http.MethodGet, "/api/v1/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := items(t, envelope)
	require.Len(t, list, 2)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "p2", first["id"], "newest first")
}

func TestListPosts_CategoryFilter(t *testing.T) {
	st := newMemStore()
	seedPosts(st)
	r := newTestRouter(st, nil)

	w, envelope := doJSON(t, r, http.MethodGet, "/api/v1/posts?category=NEWS", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := items(t, envelope)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].(map[string]interface{})["id"])
}

func TestGetPost(t *testing.T) {
	st := newMemStore()
	seedPosts(st)
	r := newTestRouter(st, nil)

	w, envelope := doJSON(t, r, http.MethodGet, "/api/v1/posts/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := envelope["data"].(map[string]interface{})
	post := data["post"].(map[string]interface{})
	assert.Equal(t, "older", post["title"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/posts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePost(t *testing.T) {
	st := newMemStore()
	r := newTestRouter(st, nil)

	w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/posts", postRequest{
		Title:    "Fresh",
		Category: "Documentaries",
		Content:  "body",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := envelope["data"].(map[string]interface{})
	assert.NotEmpty(t, data["id"])

	stored := st.records[store.CollectionPosts]
	require.Len(t, stored, 1)
	assert.Equal(t, "documentaries", stored[0].Category)
	require.NotNil(t, stored[0].Author)
	assert.Equal(t, "Anonymous", *stored[0].Author)
}

func TestCreatePost_ValidationError(t *testing.T) {
	st := newMemStore()
	r := newTestRouter(st, nil)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/posts", postRequest{Title: "only a title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, st.records[store.CollectionPosts])
}

func TestUpdatePost(t *testing.T) {
	st := newMemStore()
	seedPosts(st)
	r := newTestRouter(st, nil)

	w, _ := doJSON(t, r, http.MethodPut, "/api/v1/posts/p1", postRequest{
		Title:    "Rewritten",
		Category: "news",
		Content:  "updated body",
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored := st.records[store.CollectionPosts]
	assert.Equal(t, "Rewritten", stored[0].Title)
	assert.True(t, stored[0].Date.After(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), "date restamps on update")
}

func TestUpdatePost_NotFound(t *testing.T) {
	st := newMemStore()
	r := newTestRouter(st, nil)

	w, _ := doJSON(t, r, http.MethodPut, "/api/v1/posts/ghost", postRequest{
		Title:    "x",
		Category: "news",
		Content:  "y",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePost_Idempotent(t *testing.T) {
	st := newMemStore()
	seedPosts(st)
	r := newTestRouter(st, nil)

	w, _ := doJSON(t, r, http.MethodDelete, "/api/v1/posts/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, st.records[store.CollectionPosts], 1)

	// Deleting the same id again still succeeds.
	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/posts/p1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateSocialLink_Defaults(t *testing.T) {
	st := newMemStore()
	r := newTestRouter(st, nil)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/social-links", socialLinkRequest{
		URL: "https://instagram.com/p/xyz",
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored := st.records[store.CollectionSocialLinks]
	require.Len(t, stored, 1)
	assert.Equal(t, "instagram", stored[0].Platform)
	assert.Equal(t, "social", stored[0].Category)
	assert.Contains(t, stored[0].Title, "Social Post ")
}

func TestCreateSocialLink_MissingURL(t *testing.T) {
	st := newMemStore()
	r := newTestRouter(st, nil)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/social-links", socialLinkRequest{Platform: "youtube"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSocialLinks_PlatformFilter(t *testing.T) {
	st := newMemStore()
	st.records[store.CollectionSocialLinks] = []store.Record{
		{ID: "s1", Payload: store.Payload{Platform: "instagram", URL: "u1", Date: time.Now()}},
		{ID: "s2", Payload: store.Payload{Platform: "youtube", URL: "u2", Date: time.Now()}},
	}
	r := newTestRouter(st, nil)

	w, envelope := doJSON(t, r, http.MethodGet, "/api/v1/social-links?platform=youtube", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := items(t, envelope)
	require.Len(t, list, 1)
	assert.Equal(t, "s2", list[0].(map[string]interface{})["id"])
}

func TestDashboard(t *testing.T) {
	st := newMemStore()
	seedPosts(st)
	dashboard := admin.NewListController(st, nil, nil, time.Minute)
	defer dashboard.Close()
	require.NoError(t, dashboard.Refresh(context.Background()))

	r := newTestRouter(st, dashboard)
	w, envelope := doJSON(t, r, http.MethodGet, "/api/v1/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := envelope["data"].(map[string]interface{})
	posts := data["posts"].([]interface{})
	assert.Len(t, posts, 2)
	assert.Equal(t, false, data["loading"])
}

func TestDashboard_Unavailable(t *testing.T) {
	r := newTestRouter(newMemStore(), nil)
	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/admin/dashboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
