package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkcut/auth"
	"linkcut/handlers"
	"linkcut/services"
	"linkcut/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemory()
	links := services.NewLinks(store, store, "http://sho.rt")
	authn := auth.New("test-secret", time.Hour)
	h := handlers.New(links, store, authn)

	router := gin.New()
	router.POST("/api/register", h.Register)
	router.POST("/api/login", h.Login)
	router.POST("/api/shorten", authn.OptionalMiddleware(), h.Shorten)
	router.POST("/api/validate-password", h.ValidatePassword)
	router.GET("/:code", h.Redirect)

	api := router.Group("/api")
	api.Use(authn.Middleware())
	{
		api.GET("/user-links", h.UserLinks)
		api.DELETE("/delete/:shortCode", h.Delete)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerUser(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, ok := decode(t, rec)["token"].(string)
	require.True(t, ok)
	return token
}

func TestShorten_CreatesLink(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/shorten", "", gin.H{
		"longUrl": "https://example.com/a",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	shortURL, _ := body["shortUrl"].(string)
	assert.Contains(t, shortURL, "http://sho.rt/")
	assert.Equal(t, false, body["passwordProtected"])
	assert.Contains(t, body, "qrCode")
	assert.NotContains(t, body, "expiresAt")
}

func TestShorten_MissingLongURL(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/shorten", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShorten_CustomCodeConflict(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/shorten", "", gin.H{
		"longUrl":   "https://example.com/a",
		"shortCode": "docs",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/shorten", "", gin.H{
		"longUrl":   "https://example.com/b",
		"shortCode": "docs",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedirect(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/shorten", "", gin.H{
		"longUrl":   "https://example.com/a",
		"shortCode": "docs",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/docs", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/a", rec.Header().Get("Location"))
}

func TestRedirect_UnknownCode(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/missing1", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedirect_ExpiredLink(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/shorten", "", gin.H{
		"longUrl":       "https://example.com/a",
		"shortCode":     "old",
		"expireInHours": -1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/old", "", nil)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestRedirect_PasswordProtected(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/shorten", "", gin.H{
		"longUrl":   "https://example.com/secret",
		"shortCode": "vault",
		"password":  "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decode(t, rec)["passwordProtected"])

	// The redirect path carries no password, so it must not reveal
	// the destination.
	rec = doJSON(t, router, http.MethodGet, "/vault", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "example.com/secret")
}

func TestValidatePassword(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/shorten", "", gin.H{
		"longUrl":   "https://example.com/secret",
		"shortCode": "vault",
		"password":  "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/validate-password", "", gin.H{
		"shortCode": "vault",
		"password":  "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "example.com/secret")

	rec = doJSON(t, router, http.MethodPost, "/api/validate-password", "", gin.H{
		"shortCode": "vault",
		"password":  "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/secret", decode(t, rec)["longUrl"])
}

// The click-recording goroutine outlives the handler, so it must not
// touch the request context after returning; gin recycles contexts
// between requests. Repeated hits give the race detector successive
// requests to overlap with any stragglers.
func TestValidatePassword_RepeatedHits(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/shorten", "", gin.H{
		"longUrl":   "https://example.com/secret",
		"shortCode": "vault",
		"password":  "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	for i := 0; i < 200; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/validate-password", "", gin.H{
			"shortCode": "vault",
			"password":  "hunter2",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestValidatePassword_MissingFields(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/validate-password", "", gin.H{
		"shortCode": "vault",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserLinks(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "ada")

	rec := doJSON(t, router, http.MethodGet, "/api/user-links", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/user-links", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["total"])

	rec = doJSON(t, router, http.MethodPost, "/api/shorten", token, gin.H{
		"longUrl": "https://example.com/a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/user-links", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["total"])
}

func TestDelete(t *testing.T) {
	router := newTestRouter(t)
	owner := registerUser(t, router, "ada")
	other := registerUser(t, router, "grace")

	rec := doJSON(t, router, http.MethodPost, "/api/shorten", owner, gin.H{
		"longUrl":   "https://example.com/a",
		"shortCode": "mine",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/delete/missing1", owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/delete/mine", other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/delete/mine", owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/mine", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "ada")

	rec := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"username": "ada",
		"email":    "ada2@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "ada")

	rec := doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"username": "ada",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"username": "ada",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["token"])
}
