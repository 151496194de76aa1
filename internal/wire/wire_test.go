package wire

import (
	"HalalCalendar/internal/api/config"
	"HalalCalendar/internal/model"
	"HalalCalendar/internal/pkg/database"
	"HalalCalendar/internal/pkg/nominatim"
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memoryHost struct{}

func (memoryHost) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	_, _ = io.Copy(io.Discard, reader)
	return "https://media.example.com/" + objectName, nil
}

func (memoryHost) Remove(context.Context, string) error {
	return nil
}

type staticPlaces struct{}

func (staticPlaces) Search(_ context.Context, query string) ([]nominatim.Place, error) {
	return []nominatim.Place{{DisplayName: "Grand Mosque, " + query, Lat: "1", Lon: "2"}}, nil
}

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memoryRevoker) Revoke(_ context.Context, signature string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[signature] = true
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, signature string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[signature], nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	cfg := config.Default()
	cfg.Security.JWTSecret = "integration-secret"
	cfg.Nominatim.DebounceMillis = 1

	app, err := BuildApplication(db, cfg, Collaborators{
		MediaHost: memoryHost{},
		Places:    staticPlaces{},
		Revoker:   &memoryRevoker{revoked: map[string]bool{}},
	})
	require.NoError(t, err)
	return &testApp{t: t, router: app.Router, db: db}
}

func (a *testApp) do(method, path, token, contentType string, body io.Reader) (int, envelope) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.Equal(a.t, w.Code, env.Code)
	return w.Code, env
}

func (a *testApp) doJSON(method, path, token, body string) (int, envelope) {
	return a.do(method, path, token, "application/json", strings.NewReader(body))
}

func (a *testApp) doForm(method, path, token string, fields map[string]string) (int, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	require.NoError(a.t, mw.Close())
	return a.do(method, path, token, mw.FormDataContentType(), &buf)
}

func (a *testApp) login(email, password string) string {
	code, env := a.doJSON(http.MethodPost, "/api/user/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(a.t, http.StatusOK, code, env.Message)
	var token struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &token))
	return token.Token
}

func (a *testApp) register(email string) {
	code, env := a.doJSON(http.MethodPost, "/api/user/register", "", `{"email":"`+email+`","password":"secret123"}`)
	require.Equal(a.t, http.StatusCreated, code, env.Message)
}

func TestPostLifecycle(t *testing.T) {
	app := newTestApp(t)

	app.register("admin@example.com")
	app.register("member@example.com")
	require.NoError(t, app.db.Model(&model.User{}).Where("email = ?", "admin@example.com").Update("role", "ADMIN").Error)

	adminToken := app.login("admin@example.com", "secret123")
	memberToken := app.login("member@example.com", "secret123")

	code, _ := app.doForm(http.MethodPost, "/api/posts", memberToken, map[string]string{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = app.doForm(http.MethodPost, "/api/posts", adminToken, map[string]string{"title": " ", "content": "y"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = app.doForm(http.MethodPost, "/api/posts", adminToken, map[string]string{
		"title":   "x",
		"content": "y",
		"tags":    "prayer," + strings.Repeat("t", model.TagNameMaxLen+1),
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := app.doForm(http.MethodPost, "/api/posts", adminToken, map[string]string{
		"title":     "Eid Prayer Downtown",
		"content":   "Join us after sunrise",
		"published": "true",
		"date":      "2026-04-10",
		"location":  "Central Mosque",
		"tags":      "prayer,community",
		"image":     "https://images.example.com/eid.jpg",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var created struct {
		ID       uint64   `json:"id"`
		Slug     string   `json:"slug"`
		Location *string  `json:"location"`
		Tags     []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "eid-prayer-downtown", created.Slug)
	assert.Equal(t, []string{"prayer", "community"}, created.Tags)
	postPath := "/api/posts/" + itoa(created.ID)

	// 更新时不携带 location，原值保留
	code, env = app.doForm(http.MethodPut, postPath, adminToken, map[string]string{
		"title":     "Eid Prayer Downtown",
		"content":   "Updated",
		"published": "true",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated struct {
		Location *string `json:"location"`
		Content  string  `json:"content"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.NotNil(t, updated.Location)
	assert.Equal(t, "Central Mosque", *updated.Location)
	assert.Equal(t, "Updated", updated.Content)

	code, env = app.do(http.MethodGet, "/api/posts?search=prayer,market&sort=oldest&page=1", "", "", nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Posts []struct {
			ID    uint64 `json:"id"`
			Count struct {
				Likes int64 `json:"likes"`
			} `json:"_count"`
		} `json:"posts"`
		TotalPages int64 `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Posts, 1)
	assert.Equal(t, int64(1), list.TotalPages)

	code, _ = app.do(http.MethodPost, postPath+"/like", "", "", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = app.do(http.MethodPost, postPath+"/like", memberToken, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"liked":true,"newCount":1}`, string(env.Data))

	code, env = app.do(http.MethodGet, postPath+"/like-status", memberToken, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"liked":true}`, string(env.Data))

	code, env = app.do(http.MethodPost, postPath+"/like", memberToken, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"liked":false,"newCount":0}`, string(env.Data))

	code, _ = app.do(http.MethodDelete, postPath, memberToken, "", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = app.do(http.MethodDelete, postPath, adminToken, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"success":true}`, string(env.Data))

	code, _ = app.do(http.MethodDelete, postPath, adminToken, "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(http.MethodGet, "/api/posts/abc", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDraftsVisibleOnlyForEditing(t *testing.T) {
	app := newTestApp(t)
	app.register("admin@example.com")
	require.NoError(t, app.db.Model(&model.User{}).Where("email = ?", "admin@example.com").Update("role", "admin").Error)
	adminToken := app.login("admin@example.com", "secret123")

	code, env := app.doForm(http.MethodPost, "/api/posts", adminToken, map[string]string{"title": "Draft", "content": "wip"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, _ = app.do(http.MethodGet, "/api/posts/"+itoa(created.ID), "", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(http.MethodGet, "/api/admin/posts/"+itoa(created.ID), adminToken, "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = app.do(http.MethodGet, "/api/posts", "", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"posts":[],"totalPages":0}`, string(env.Data))
}

func TestIdentityRoutes(t *testing.T) {
	app := newTestApp(t)
	app.register("member@example.com")

	code, _ := app.doJSON(http.MethodPost, "/api/user/register", "", `{"email":"member@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = app.doJSON(http.MethodPost, "/api/user/login", "", `{"email":"member@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	token := app.login("member@example.com", "secret123")

	code, env := app.do(http.MethodGet, "/api/user/info", token, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"role":"user"`)

	code, env = app.do(http.MethodGet, "/api/places?q=cen", token, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Grand Mosque, cen")

	code, _ = app.do(http.MethodPost, "/api/user/logout", token, "", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = app.do(http.MethodGet, "/api/user/info", token, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = app.do(http.MethodGet, "/api/places?q=cen", token, "", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestMediaUpload(t *testing.T) {
	app := newTestApp(t)
	app.register("admin@example.com")
	require.NoError(t, app.db.Model(&model.User{}).Where("email = ?", "admin@example.com").Update("role", "admin").Error)
	adminToken := app.login("admin@example.com", "secret123")

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	upload := func(token string, content []byte) (int, envelope) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "poster.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return app.do(http.MethodPost, "/api/media/upload", token, mw.FormDataContentType(), &buf)
	}

	code, _ := upload("", pngBuf.Bytes())
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = upload(adminToken, []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := upload(adminToken, pngBuf.Bytes())
	require.Equal(t, http.StatusOK, code, env.Message)
	var res struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Regexp(t, `^https://media\.example\.com/\d{4}/\d{2}/\d{2}/[0-9a-f-]+\.png$`, res.URL)

	code, _ = app.do(http.MethodPost, "/api/media/upload", adminToken, "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPing(t *testing.T) {
	app := newTestApp(t)
	code, env := app.do(http.MethodGet, "/api/ping", "", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"pong"`, string(env.Data))
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
