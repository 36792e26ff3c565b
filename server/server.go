package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-attendance-portal/attendance"
	"github.com/jrsteele09/go-attendance-portal/geocode"
	"github.com/jrsteele09/go-attendance-portal/internal/config"
	"github.com/jrsteele09/go-attendance-portal/server/loginsession"
	"github.com/jrsteele09/go-attendance-portal/server/ui"
)

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	api           attendance.API
	geocoder      geocode.Resolver
	loginSessions loginsession.Repo
	loginLimiter  *ipRateLimiter
	layout        *template.Template

	now           func() time.Time
	clockInterval time.Duration
}

func New(config config.Config, api attendance.API, geocoder geocode.Resolver, loginSessionRepo loginsession.Repo) (*Server, error) {
	layout, err := ParseTemplate("layout.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse layout template: %w", err)
	}

	s := &Server{
		env:           config.GetEnv(),
		mux:           http.NewServeMux(),
		config:        config,
		api:           api,
		geocoder:      geocoder,
		loginSessions: loginSessionRepo,
		loginLimiter:  newIPRateLimiter(config.GetLoginRatePerMinute(), config.GetLoginRateBurst()),
		layout:        layout,
		now:           time.Now,
		clockInterval: time.Second,
	}

	if err := s.initRoutes(); err != nil {
		return nil, fmt.Errorf("[Server New] failed to register routes: %w", err)
	}
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// RunJanitor drops expired sessions and idle login limiters until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if purger, ok := s.loginSessions.(interface{ PurgeExpired() int }); ok {
				if n := purger.PurgeExpired(); n > 0 {
					log.Debug().Int("sessions", n).Msg("purged expired sessions")
				}
			}
			s.loginLimiter.prune(s.now().Add(-interval))
		}
	}
}

func (s *Server) isDev() bool {
	return strings.EqualFold(s.env, "DEV")
}

func (s *Server) logRoutes() {
	if !s.isDev() {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func methodLabel(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := ui.MethodColors[method]; ok {
		return color + paddedMethod + ui.ResetColor
	}
	return ui.Gray + paddedMethod + ui.ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", methodLabel(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", methodLabel(method), path, ui.Red+error+ui.ResetColor)
}

// getScheme determines the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
