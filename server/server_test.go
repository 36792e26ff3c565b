package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-attendance-portal/attendance/apifake"
	"github.com/jrsteele09/go-attendance-portal/internal/config"
	"github.com/jrsteele09/go-attendance-portal/server/loginsession"
	"github.com/jrsteele09/go-attendance-portal/users"
)

type testConfig struct {
	rateLimiting  bool
	enforceExpiry bool
	trustProxy    bool
}

var _ config.Config = testConfig{}

func (testConfig) GetPort() string    { return ":0" }
func (testConfig) GetAppName() string { return "Attendance Portal" }
func (testConfig) GetEnv() string     { return "TEST" }
func (testConfig) IsDev() bool        { return false }

func (testConfig) GetAllowedOrigins() config.AllowedOrigins {
	return config.AllowedOrigins{"http://allowed.example": {}}
}
func (testConfig) GetAllowedMethods() string { return "GET, POST, PUT" }
func (testConfig) GetAllowedHeaders() string { return "Content-Type, Authorization" }

func (testConfig) GetAPIBaseURL() string              { return "http://api.invalid" }
func (testConfig) GetAPITimeout() time.Duration       { return time.Second }
func (testConfig) GetGeocoderURL() string             { return "http://geo.invalid" }
func (testConfig) GetGeocoderUserAgent() string       { return "test" }
func (testConfig) GetDisplayTimezone() *time.Location { return time.UTC }

func (testConfig) GetMaxSessionAge() time.Duration { return time.Hour }
func (c testConfig) GetEnableRateLimiting() bool   { return c.rateLimiting }
func (testConfig) GetLoginRatePerMinute() int      { return 1 }
func (testConfig) GetLoginRateBurst() int          { return 2 }
func (c testConfig) GetEnforceTokenExpiry() bool   { return c.enforceExpiry }
func (c testConfig) GetTrustProxyHeaders() bool    { return c.trustProxy }

type fakeResolver struct {
	location string
	err      error
	calls    int
}

func (f *fakeResolver) Reverse(_ context.Context, _, _ float64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.location, nil
}

type testEnv struct {
	server   *Server
	api      *apifake.FakeAPI
	geo      *fakeResolver
	sessions *loginsession.InMemoryLoginSessionRepo

	employeeID int
	adminID    int
}

// testNow stays close to the wall clock because the session repo checks
// expiry against real time.
var testNow = time.Now().UTC().Truncate(time.Second)

func newTestEnv(t *testing.T, cfg testConfig) *testEnv {
	t.Helper()

	api := apifake.New()
	env := &testEnv{
		api:        api,
		geo:        &fakeResolver{location: "Leeds, England, United Kingdom"},
		sessions:   loginsession.NewInMemoryLoginSessionRepo(),
		employeeID: api.AddUser("alice", "alice-pw", users.RoleEmployee),
		adminID:    api.AddUser("root", "root-pw", users.RoleAdmin),
	}

	s, err := New(cfg, api, env.geo, env.sessions)
	require.NoError(t, err)
	s.now = func() time.Time { return testNow }
	env.server = s
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func newGet(path string) *http.Request {
	return newRequest(http.MethodGet, path)
}

func (e *testEnv) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := newGet(path)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return e.do(req)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return e.do(req)
}

// login signs in through the form and returns the session cookie.
func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := e.post(t, RouteLogin, url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie, "login should set the session cookie")
	return cookie
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

// redirectTarget splits the Location header into path and query.
func redirectTarget(t *testing.T, rec *httptest.ResponseRecorder) (string, url.Values) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	u, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return u.Path, u.Query()
}

func TestServer_RunJanitor(t *testing.T) {
	env := newTestEnv(t, testConfig{})
	cookie := env.login(t, "alice", "alice-pw")

	session, err := env.sessions.Get(cookie.Value)
	require.NoError(t, err)
	session.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, env.sessions.Upsert(cookie.Value, session))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	env.server.RunJanitor(ctx, 10*time.Millisecond)

	require.Zero(t, env.sessions.PurgeExpired(), "janitor should already have purged the session")
}

func TestServer_RecoverMiddleware(t *testing.T) {
	env := newTestEnv(t, testConfig{})
	h := ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}, env.server.HTMLMiddleWare()...)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_WWWRedirect(t *testing.T) {
	env := newTestEnv(t, testConfig{})
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Host = "www.portal.example"

	rec := env.do(req)
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "https://portal.example/login", rec.Header().Get("Location"))
}

func TestServer_StaticFiles(t *testing.T) {
	env := newTestEnv(t, testConfig{})

	t.Run("css", func(t *testing.T) {
		rec := env.get(t, "/css/app.css", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/css")
		require.Contains(t, rec.Header().Get("Cache-Control"), "max-age")
	})

	t.Run("js gzip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/js/app.js", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	})

	t.Run("missing", func(t *testing.T) {
		rec := env.get(t, "/css/nope.css", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestParseTemplate(t *testing.T) {
	for _, name := range []string{"layout.html", "login.html", "dashboard.html", "attendance.html", "employee_history.html", "create_employee.html"} {
		tmpl, err := ParseTemplate(name)
		require.NoError(t, err, name)
		require.Equal(t, name, tmpl.Name())
	}

	_, err := ParseTemplate("missing.html")
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist))
	require.Contains(t, err.Error(), `"missing.html"`)
}
