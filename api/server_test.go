package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/webmaek/aventus/auth"
	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/database/dbtest"
	"github.com/webmaek/aventus/models"
	"github.com/webmaek/aventus/ratelimit"
)

type testApp struct {
	t       *testing.T
	db      *gorm.DB
	tokens  *auth.TokenIssuer
	handler http.Handler
}

func newTestApp(t *testing.T, opts ...func(*Router)) *testApp {
	t.Helper()

	db := dbtest.Open(t)
	tokens, err := auth.NewTokenIssuer("test-secret")
	require.NoError(t, err)

	opts = append([]func(*Router){
		withTokenIssuer(tokens),
		withStartupTime(time.Now()),
		WithPasswordHasher(auth.BcryptHasher{Cost: bcrypt.MinCost}),
	}, opts...)

	return &testApp{
		t:       t,
		db:      db,
		tokens:  tokens,
		handler: newRouter(database.New(db), opts...),
	}
}

// do sends body as JSON. A non-empty token goes into the Authorization header.
func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// upload posts content as the multipart "avatar" file.
func (a *testApp) upload(token, contentType string, content []byte) *httptest.ResponseRecorder {
	a.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="avatar"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(a.t, err)
	_, err = part.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/me/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) tokenFor(user *models.User) string {
	a.t.Helper()
	token, err := a.tokens.Issue(auth.IdentityOf(user))
	require.NoError(a.t, err)
	return token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/users", map[string]string{
		"email":    "Ada@Example.com",
		"password": "secret123",
		"name":     "Ada",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[models.User](t, rec)
	assert.Equal(t, "ada@example.com", registered.Email)
	assert.Equal(t, models.RoleUser, registered.Role)
	assert.NotContains(t, rec.Body.String(), "secret123")

	rec = app.do(http.MethodPost, "/api/users", map[string]string{
		"email":    "ada@example.com",
		"password": "another1",
		"name":     "Ada again",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(http.MethodPost, "/api/users/login", map[string]string{
		"email":    "ada@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	login := decode[loginResponse](t, rec)
	identity, err := app.tokens.Verify(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, identity.ID)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, models.RoleUser, identity.Role)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.DefaultCookieName, cookies[0].Name)
	assert.Equal(t, login.AccessToken, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	app.handler.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, registered.ID, decode[models.User](t, me).ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/users", map[string]string{
		"email":    "grace@example.com",
		"password": "secret123",
		"name":     "Grace",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPassword := app.do(http.MethodPost, "/api/users/login", map[string]string{
		"email":    "grace@example.com",
		"password": "nope-nope",
	}, "")
	unknownEmail := app.do(http.MethodPost, "/api/users/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "nope-nope",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Empty(t, wrongPassword.Result().Cookies())
}

func TestLoginIsRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := ratelimit.NewRedisLimiter(client, "test:", 2, time.Minute)
	app := newTestApp(t, WithLoginLimiter(limiter))

	creds := map[string]string{"email": "who@example.com", "password": "whatever"}
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/api/users/login", creds, "").Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/api/users/login", creds, "").Code)

	rec := app.do(http.MethodPost, "/api/users/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// other endpoints are not throttled
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/api/tags", nil, "").Code)
}

func TestLoginLimiterIgnoresForwardedForByDefault(t *testing.T) {
	login := func(app *testApp, forwardedFor string) int {
		raw, err := json.Marshal(map[string]string{"email": "who@example.com", "password": "whatever"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, req)
		return rec.Code
	}
	limiter := func() ratelimit.Limiter {
		client := redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return ratelimit.NewRedisLimiter(client, "test:", 2, time.Minute)
	}

	app := newTestApp(t, WithLoginLimiter(limiter()))
	var codes []int
	for i := 0; i < 6; i++ {
		codes = append(codes, login(app, fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, []int{401, 401, 429, 429, 429, 429}, codes)

	behindProxy := newTestApp(t,
		withConfig(map[string]string{"TRUSTED_PROXY": "true"}),
		WithLoginLimiter(limiter()),
	)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, login(behindProxy, fmt.Sprintf("10.0.1.%d", i)))
	}
	assert.Equal(t, http.StatusUnauthorized, login(behindProxy, "10.0.2.1"))
	assert.Equal(t, http.StatusUnauthorized, login(behindProxy, "10.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, login(behindProxy, "10.0.2.1"))
}

func TestLoginFailsOpenWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	app := newTestApp(t, WithLoginLimiter(ratelimit.NewRedisLimiter(client, "test:", 1, time.Minute)))

	creds := map[string]string{"email": "who@example.com", "password": "whatever"}
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/api/users/login", creds, "").Code)
	}
}

func TestMeAndLogout(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/api/users/me", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = app.do(http.MethodGet, "/api/users/me", nil, "garbage")
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	ghost := dbtest.User(t, app.db, "ghost@example.com", models.RoleUser)
	token := app.tokenFor(ghost)
	require.NoError(t, app.db.Delete(&models.User{}, "id = ?", ghost.ID).Error)
	rec = app.do(http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = app.do(http.MethodPost, "/api/users/logout", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.DefaultCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/projects"},
		{http.MethodPut, "/api/projects/some-slug"},
		{http.MethodDelete, "/api/projects/some-slug"},
		{http.MethodPost, "/api/projects/some-slug/like"},
		{http.MethodPost, "/api/projects/some-slug/bookmark"},
		{http.MethodPost, "/api/projects/some-slug/comments"},
		{http.MethodPut, "/api/users/me"},
		{http.MethodGet, "/api/users/me/projects"},
		{http.MethodGet, "/api/users/me/bookmarks"},
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/tags"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := app.do(tc.method, tc.path, nil, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t)
	admin := dbtest.User(t, app.db, "admin@example.com", models.RoleAdmin)
	user := dbtest.User(t, app.db, "user@example.com", models.RoleUser)

	rec := app.do(http.MethodGet, "/api/users", nil, app.tokenFor(user))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodGet, "/api/users", nil, app.tokenFor(admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 2)

	rec = app.do(http.MethodPost, "/api/tags", map[string]string{"name": "golang"}, app.tokenFor(user))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/api/tags", map[string]string{"name": "golang"}, app.tokenFor(admin))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = app.do(http.MethodPost, "/api/tags", map[string]string{"name": "golang"}, app.tokenFor(admin))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(http.MethodDelete, "/api/users/"+user.ID.String(), nil, app.tokenFor(admin))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(http.MethodDelete, "/api/users/"+user.ID.String(), nil, app.tokenFor(admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = app.do(http.MethodDelete, "/api/users/not-a-uuid", nil, app.tokenFor(admin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectLifecycle(t *testing.T) {
	app := newTestApp(t)
	owner := dbtest.User(t, app.db, "owner@example.com", models.RoleUser)
	other := dbtest.User(t, app.db, "other@example.com", models.RoleUser)
	tag := dbtest.Tag(t, app.db, "go")

	body := map[string]any{
		"title":       "My Great Idea",
		"description": "short",
		"content":     "<p>long</p>",
		"tags":        []string{tag.ID.String()},
	}
	rec := app.do(http.MethodPost, "/api/projects", body, app.tokenFor(owner))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Project](t, rec)
	assert.Equal(t, "my-great-idea", created.Slug)
	assert.Equal(t, owner.ID, created.UserID)
	require.Len(t, created.Tags, 1)
	assert.Equal(t, "go", created.Tags[0].Name)

	rec = app.do(http.MethodPost, "/api/projects", body, app.tokenFor(other))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(http.MethodPost, "/api/projects", map[string]any{"title": "no body"}, app.tokenFor(owner))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodGet, "/api/projects/my-great-idea", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[models.Project](t, rec).ID)

	update := map[string]any{"title": "Renamed", "description": "d", "content": "c"}
	rec = app.do(http.MethodPut, "/api/projects/my-great-idea", update, app.tokenFor(other))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.do(http.MethodPut, "/api/projects/missing", update, app.tokenFor(owner))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = app.do(http.MethodPut, "/api/projects/my-great-idea", update, app.tokenFor(owner))
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Project](t, rec)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "my-great-idea", updated.Slug)

	rec = app.do(http.MethodPost, "/api/projects/my-great-idea/like", nil, app.tokenFor(other))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[struct{ Active bool }](t, rec).Active)
	rec = app.do(http.MethodPost, "/api/projects/my-great-idea/bookmark", nil, app.tokenFor(other))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/api/projects/my-great-idea/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.ProjectStats](t, rec)
	assert.EqualValues(t, 1, stats.Count.Likes)
	assert.EqualValues(t, 1, stats.Count.Bookmarks)

	rec = app.do(http.MethodGet, "/api/users/me/bookmarks", nil, app.tokenFor(other))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Project](t, rec), 1)

	rec = app.do(http.MethodPost, "/api/projects/my-great-idea/like", nil, app.tokenFor(other))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[struct{ Active bool }](t, rec).Active)

	rec = app.do(http.MethodDelete, "/api/projects/my-great-idea", nil, app.tokenFor(other))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.do(http.MethodDelete, "/api/projects/my-great-idea", nil, app.tokenFor(owner))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(http.MethodGet, "/api/projects/my-great-idea", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectFeedPagination(t *testing.T) {
	app := newTestApp(t)
	owner := dbtest.User(t, app.db, "owner@example.com", models.RoleUser)
	oldest := dbtest.Project(t, app.db, owner, "oldest", 0)
	middle := dbtest.Project(t, app.db, owner, "middle", 1)
	newest := dbtest.Project(t, app.db, owner, "newest", 2)

	type page struct {
		Projects   []models.Project `json:"projects"`
		NextCursor *string          `json:"nextCursor"`
	}

	rec := app.do(http.MethodGet, "/api/projects?limit=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[page](t, rec)
	require.Len(t, first.Projects, 2)
	assert.Equal(t, newest.ID, first.Projects[0].ID)
	assert.Equal(t, middle.ID, first.Projects[1].ID)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, oldest.ID.String(), *first.NextCursor)

	rec = app.do(http.MethodGet, "/api/projects?limit=2&cursor="+*first.NextCursor, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[page](t, rec)
	require.Len(t, second.Projects, 1)
	assert.Equal(t, oldest.ID, second.Projects[0].ID)
	assert.Nil(t, second.NextCursor)

	rec = app.do(http.MethodGet, "/api/projects?query=MID", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[page](t, rec)
	require.Len(t, found.Projects, 1)
	assert.Equal(t, middle.ID, found.Projects[0].ID)

	rec = app.do(http.MethodGet, "/api/projects?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodGet, "/api/projects", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all struct {
		Data []models.Project `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all.Data, 3)
	assert.EqualValues(t, 3, all.Meta.Total)
}

func TestComments(t *testing.T) {
	app := newTestApp(t)
	owner := dbtest.User(t, app.db, "owner@example.com", models.RoleUser)
	other := dbtest.User(t, app.db, "other@example.com", models.RoleUser)
	dbtest.Project(t, app.db, owner, "idea", 0)

	rec := app.do(http.MethodPost, "/api/projects/idea/comments", map[string]string{"content": "nice"}, app.tokenFor(other))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[models.Comment](t, rec)
	assert.Equal(t, other.ID, comment.UserID)

	rec = app.do(http.MethodPost, "/api/projects/missing/comments", map[string]string{"content": "nice"}, app.tokenFor(other))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodPost, "/api/projects/idea/comments", map[string]string{"content": ""}, app.tokenFor(other))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodGet, "/api/projects/idea/comments/"+comment.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nice", decode[models.Comment](t, rec).Content)

	rec = app.do(http.MethodPut, "/api/projects/idea/comments/"+comment.ID.String(), map[string]string{"content": "edited"}, app.tokenFor(owner))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.do(http.MethodPut, "/api/projects/idea/comments/"+comment.ID.String(), map[string]string{"content": "edited"}, app.tokenFor(other))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", decode[models.Comment](t, rec).Content)

	rec = app.do(http.MethodGet, "/api/projects/idea/comments", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Comment](t, rec), 1)

	// a comment is only reachable under its own project
	dbtest.Project(t, app.db, owner, "other-idea", 1)
	elsewhere := "/api/projects/other-idea/comments/" + comment.ID.String()
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, elsewhere, nil, "").Code)
	rec = app.do(http.MethodPut, elsewhere, map[string]string{"content": "moved"}, app.tokenFor(other))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodDelete, elsewhere, nil, app.tokenFor(other)).Code)

	rec = app.do(http.MethodDelete, "/api/projects/idea/comments/"+comment.ID.String(), nil, app.tokenFor(owner))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.do(http.MethodDelete, "/api/projects/idea/comments/"+comment.ID.String(), nil, app.tokenFor(other))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(http.MethodGet, "/api/projects/idea/comments/"+comment.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodGet, "/api/projects/idea/comments", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Comment](t, rec))
}

func TestUpdateAndDeleteMe(t *testing.T) {
	app := newTestApp(t)
	user := dbtest.User(t, app.db, "me@example.com", models.RoleUser)
	token := app.tokenFor(user)

	rec := app.do(http.MethodPut, "/api/users/me", map[string]string{"bio": "builder", "websiteUrl": "https://me.dev"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.User](t, rec)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "builder", *updated.Bio)

	rec = app.do(http.MethodPut, "/api/users/me", map[string]string{"websiteUrl": "not a url"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodPost, "/api/users/me/avatar", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// no avatar store configured
	rec = app.upload(token, "image/png", []byte("\x89PNG"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = app.upload(token, "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = app.do(http.MethodDelete, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[healthResponse](t, rec).Status)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = app.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aventus_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}
