package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/caratemple/forum/internal/constants"
	"github.com/caratemple/forum/internal/dto"
	"github.com/caratemple/forum/internal/middleware"
	"github.com/caratemple/forum/internal/repository"
	"github.com/caratemple/forum/internal/services"
	"github.com/caratemple/forum/internal/session"
	"github.com/caratemple/forum/internal/testutil"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	server *httptest.Server
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	postRepo := repository.NewPostRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	opts := Options{}
	authService := services.NewAuthService(userRepo)
	authHandler := NewAuthHandler(authService, opts)
	discussionHandler := NewDiscussionHandler(services.NewDiscussionService(discussionRepo, postRepo), opts)
	adminHandler := NewAdminHandler(services.NewAdminService(userRepo, discussionRepo, postRepo, statsRepo), opts)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, newTestStore()))
	r.Use(middleware.Session(0))
	r.Use(middleware.LoadIdentity(authService))

	r.GET("/", discussionHandler.Home)
	r.GET("/register", authHandler.RegisterPage)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/discussion", discussionHandler.Show)
	r.POST("/discussion", discussionHandler.Act)
	r.GET("/discussions/new", discussionHandler.NewPage)
	r.POST("/discussions/new", discussionHandler.Create)
	r.GET("/admin", middleware.RequireAdminPage(authService), adminHandler.Dashboard)
	r.POST("/admin", middleware.RequireAdminPage(authService), adminHandler.Act)
	r.GET("/api/search", discussionHandler.SearchAPI)
	r.POST("/api/like", middleware.RequireAuth(""), discussionHandler.LikeAPI)
	r.POST("/api/post_reply", middleware.RequireAuth(""), discussionHandler.ReplyAPI)
	r.POST("/api/admin_delete", middleware.RequireAdmin(authService), adminHandler.DeleteAPI)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &testEnv{t: t, db: db, server: server}
}

// newTestStore is a cookie store whose cookies travel over the plain HTTP
// test server.
func newTestStore() sessions.Store {
	store := cookie.NewStore([]byte("a-32-byte-long-session-secret!!!"))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true, Secure: false})
	return store
}

// browser is one visitor with its own cookie jar. Redirects are not followed
// so tests can assert on them.
type browser struct {
	env    *testEnv
	client *http.Client
}

func (e *testEnv) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(e.t, err)

	return &browser{
		env: e,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string, out interface{}) *http.Response {
	b.env.t.Helper()

	resp, err := b.client.Get(b.env.server.URL + path)
	require.NoError(b.env.t, err)
	return b.decode(resp, out)
}

func (b *browser) post(path string, form url.Values, out interface{}) *http.Response {
	b.env.t.Helper()

	resp, err := b.client.Post(b.env.server.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(b.env.t, err)
	return b.decode(resp, out)
}

func (b *browser) decode(resp *http.Response, out interface{}) *http.Response {
	b.env.t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(b.env.t, err)
	if out != nil {
		require.NoError(b.env.t, json.Unmarshal(body, out), string(body))
	}
	return resp
}

// home loads the home page, consuming pending flashes.
func (b *browser) home() dto.HomeView {
	b.env.t.Helper()

	var view dto.HomeView
	resp := b.get("/", &view)
	require.Equal(b.env.t, http.StatusOK, resp.StatusCode)
	return view
}

func (b *browser) thread(discussionID uint64) dto.DiscussionView {
	b.env.t.Helper()

	var view dto.DiscussionView
	resp := b.get("/discussion?id="+itoa(discussionID), &view)
	require.Equal(b.env.t, http.StatusOK, resp.StatusCode)
	return view
}

func (b *browser) login(email, password string) {
	b.env.t.Helper()

	var form dto.FormView
	b.get("/login", &form)

	resp := b.post("/login", url.Values{
		"email":    {email},
		"password": {password},
		"_token":   {form.CSRF[formLogin]},
	}, nil)
	require.Equal(b.env.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(b.env.t, "/", resp.Header.Get("Location"))
}

func messages(flashes []session.Flash) []string {
	out := make([]string, 0, len(flashes))
	for _, f := range flashes {
		out = append(out, f.Message)
	}
	return out
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func TestRenderView_FailsWhenSessionCannotBeSaved(t *testing.T) {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, newTestStore()))
	r.Use(middleware.Session(0))
	oversized := func(c *gin.Context) *session.Context {
		sess := session.FromGin(c)
		sess.AddFlash(session.FlashInfo, strings.Repeat("Pika ", 1200))
		return sess
	}
	r.GET("/view", func(c *gin.Context) {
		renderView(c, oversized(c), http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/json", func(c *gin.Context) {
		renderJSON(c, oversized(c), succeed("Fait.", "/"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/view", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), `"ok"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/json", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "Fait.")
}
