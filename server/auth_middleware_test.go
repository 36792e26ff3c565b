package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	t.Run("employee lands on home", func(t *testing.T) {
		env := newTestEnv(t, testConfig{})
		rec := env.post(t, RouteLogin, url.Values{"username": {"alice"}, "password": {"alice-pw"}}, nil)

		path, _ := redirectTarget(t, rec)
		require.Equal(t, RouteHome, path)

		cookie := sessionCookie(rec)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)

		session, err := env.sessions.Get(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, "alice", session.Username)
		assert.Equal(t, "access-1", session.AccessToken)
		assert.False(t, session.IsAdmin())
		assert.False(t, session.IsPunchedIn)
	})

	t.Run("admin lands on employee history", func(t *testing.T) {
		env := newTestEnv(t, testConfig{})
		rec := env.post(t, RouteLogin, url.Values{"username": {"root"}, "password": {"root-pw"}}, nil)

		path, _ := redirectTarget(t, rec)
		require.Equal(t, RouteEmployeeHistory, path)
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t, testConfig{})
		rec := env.post(t, RouteLogin, url.Values{"username": {"alice"}, "password": {"nope"}}, nil)

		path, q := redirectTarget(t, rec)
		require.Equal(t, RouteLogin, path)
		assert.Equal(t, msgInvalidCredentials, q.Get("error"))
		assert.Equal(t, "alice", q.Get("username"))
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("empty fields skip the api", func(t *testing.T) {
		env := newTestEnv(t, testConfig{})
		env.api.Err = errors.New("must not be called")
		rec := env.post(t, RouteLogin, url.Values{"username": {""}, "password": {""}}, nil)

		_, q := redirectTarget(t, rec)
		assert.Equal(t, msgInvalidCredentials, q.Get("error"))
	})

	t.Run("transport failure", func(t *testing.T) {
		env := newTestEnv(t, testConfig{})
		env.api.Err = errors.New("connection refused")
		rec := env.post(t, RouteLogin, url.Values{"username": {"alice"}, "password": {"alice-pw"}}, nil)

		_, q := redirectTarget(t, rec)
		assert.Equal(t, msgLoginFailed, q.Get("error"))
	})

	t.Run("login page shows the error", func(t *testing.T) {
		env := newTestEnv(t, testConfig{})
		rec := env.get(t, RouteLogin+"?error=Invalid+username+or+password.&username=alice", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Invalid username or password.")
		assert.Contains(t, body, `value="alice"`)
		assert.NotContains(t, body, "Logout", "no header on the login page")
	})

	t.Run("relogin replaces the old session", func(t *testing.T) {
		env := newTestEnv(t, testConfig{})
		first := env.login(t, "alice", "alice-pw")

		rec := env.post(t, RouteLogin, url.Values{"username": {"alice"}, "password": {"alice-pw"}}, first)
		second := sessionCookie(rec)
		require.NotNil(t, second)
		require.NotEqual(t, first.Value, second.Value)

		_, err := env.sessions.Get(first.Value)
		require.Error(t, err)
	})
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t, testConfig{rateLimiting: true})
	form := url.Values{"username": {"alice"}, "password": {"nope"}}

	for i := 0; i < 2; i++ {
		_, q := redirectTarget(t, env.post(t, RouteLogin, form, nil))
		require.Equal(t, msgInvalidCredentials, q.Get("error"))
	}

	rec := env.post(t, RouteLogin, form, nil)
	_, q := redirectTarget(t, rec)
	assert.Contains(t, q.Get("error"), "Too many login attempts")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestLoginRateLimit_ForwardedFor(t *testing.T) {
	form := url.Values{"username": {"alice"}, "password": {"nope"}}
	attempt := func(env *testEnv, forwardedFor string) url.Values {
		req := httptest.NewRequest(http.MethodPost, RouteLogin, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		_, q := redirectTarget(t, env.do(req))
		return q
	}

	t.Run("rotating header is still throttled", func(t *testing.T) {
		env := newTestEnv(t, testConfig{rateLimiting: true})
		for i := 0; i < 2; i++ {
			q := attempt(env, fmt.Sprintf("203.0.113.%d", i))
			require.Equal(t, msgInvalidCredentials, q.Get("error"))
		}
		q := attempt(env, "203.0.113.99")
		assert.Contains(t, q.Get("error"), "Too many login attempts")
	})

	t.Run("trusted proxy keys on the forwarded client", func(t *testing.T) {
		env := newTestEnv(t, testConfig{rateLimiting: true, trustProxy: true})
		for i := 0; i < 4; i++ {
			q := attempt(env, fmt.Sprintf("203.0.113.%d, 10.0.0.1", i))
			require.Equal(t, msgInvalidCredentials, q.Get("error"))
		}
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:5150"
	req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")

	assert.Equal(t, "198.51.100.7", clientIP(req, false))
	assert.Equal(t, "203.0.113.1", clientIP(req, true))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "198.51.100.7", clientIP(req, true))
}

func TestRequireSession_Gate(t *testing.T) {
	env := newTestEnv(t, testConfig{})
	employee := env.login(t, "alice", "alice-pw")
	admin := env.login(t, "root", "root-pw")

	tests := []struct {
		name     string
		path     string
		cookie   *http.Cookie
		redirect string // empty means the page renders
	}{
		{"anonymous home", RouteHome, nil, RouteLogin},
		{"anonymous root", RouteRoot, nil, RouteLogin},
		{"anonymous attendance", RouteAttendance, nil, RouteLogin},
		{"anonymous employee history", RouteEmployeeHistory, nil, RouteLogin},
		{"anonymous create employee", RouteCreateEmployee, nil, RouteLogin},
		{"unknown cookie", RouteHome, &http.Cookie{Name: sessionCookieName, Value: "stale"}, RouteLogin},
		{"employee home", RouteHome, employee, ""},
		{"employee root", RouteRoot, employee, ""},
		{"employee attendance", RouteAttendance, employee, ""},
		{"employee blocked from employee history", RouteEmployeeHistory, employee, RouteHome},
		{"admin redirected from home", RouteHome, admin, RouteEmployeeHistory},
		{"admin root", RouteRoot, admin, ""},
		{"admin employee history", RouteEmployeeHistory, admin, ""},
		{"admin create employee", RouteCreateEmployee, admin, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.get(t, tc.path, tc.cookie)
			if tc.redirect == "" {
				require.Equal(t, http.StatusOK, rec.Code)
				return
			}
			path, _ := redirectTarget(t, rec)
			require.Equal(t, tc.redirect, path)
		})
	}

	t.Run("stale cookie is cleared", func(t *testing.T) {
		rec := env.get(t, RouteHome, &http.Cookie{Name: sessionCookieName, Value: "stale"})
		cleared := sessionCookie(rec)
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
		assert.Less(t, cleared.MaxAge, 0)
	})

	t.Run("htmx redirect", func(t *testing.T) {
		req := newGet(RouteHome)
		req.Header.Set("HX-Request", "true")
		rec := env.do(req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, RouteLogin, rec.Header().Get("HX-Redirect"))
	})
}

func TestRequireSession_TokenExpiry(t *testing.T) {
	signed := func(exp time.Time) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("test-key"))
		require.NoError(t, err)
		return token
	}

	setup := func(t *testing.T, enforce bool, token string) (*testEnv, *http.Cookie) {
		env := newTestEnv(t, testConfig{enforceExpiry: enforce})
		cookie := env.login(t, "alice", "alice-pw")
		session, err := env.sessions.Get(cookie.Value)
		require.NoError(t, err)
		session.AccessToken = token
		require.NoError(t, env.sessions.Upsert(cookie.Value, session))
		return env, cookie
	}

	t.Run("expired jwt", func(t *testing.T) {
		env, cookie := setup(t, true, signed(testNow.Add(-time.Minute)))
		path, _ := redirectTarget(t, env.get(t, RouteHome, cookie))
		require.Equal(t, RouteLogin, path)
	})

	t.Run("valid jwt", func(t *testing.T) {
		env, cookie := setup(t, true, signed(testNow.Add(time.Hour)))
		require.Equal(t, http.StatusOK, env.get(t, RouteHome, cookie).Code)
	})

	t.Run("opaque token", func(t *testing.T) {
		env, cookie := setup(t, true, "opaque-token")
		require.Equal(t, http.StatusOK, env.get(t, RouteHome, cookie).Code)
	})

	t.Run("not enforced", func(t *testing.T) {
		env, cookie := setup(t, false, signed(testNow.Add(-time.Minute)))
		require.Equal(t, http.StatusOK, env.get(t, RouteHome, cookie).Code)
	})
}

func TestLogout(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			env := newTestEnv(t, testConfig{})
			cookie := env.login(t, "alice", "alice-pw")

			req := newRequest(method, RouteLogout)
			req.AddCookie(cookie)
			rec := env.do(req)

			path, _ := redirectTarget(t, rec)
			require.Equal(t, RouteLogin, path)
			cleared := sessionCookie(rec)
			require.NotNil(t, cleared)
			assert.Empty(t, cleared.Value)

			_, err := env.sessions.Get(cookie.Value)
			require.Error(t, err)

			path, _ = redirectTarget(t, env.get(t, RouteHome, cookie))
			require.Equal(t, RouteLogin, path)
		})
	}
}
