package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() error {
	loginPage, err := s.LoginPageUIHandler()
	if err != nil {
		return err
	}
	dashboard, err := s.DashboardHandler()
	if err != nil {
		return err
	}
	attendancePage, err := s.AttendanceHandler()
	if err != nil {
		return err
	}
	employeeHistory, err := s.EmployeeHistoryHandler()
	if err != nil {
		return err
	}
	createEmployee, err := s.CreateEmployeePageHandler()
	if err != nil {
		return err
	}

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(loginPage, s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare(s.LoginRateLimitMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Dashboard
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(dashboard, s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteHome, ChainMiddleware(dashboard, s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RoutePunchIn, ChainMiddleware(s.PunchInHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RoutePunchOut, ChainMiddleware(s.PunchOutHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteClock, ChainMiddleware(s.ClockStreamHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	// History tables
	s.RegisterRouteHandler("GET "+RouteAttendance, ChainMiddleware(attendancePage, s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteEmployeeHistory, ChainMiddleware(employeeHistory, s.HTMLMiddleWare(s.RequireSession())...))

	// Account creation
	s.RegisterRouteHandler("GET "+RouteCreateEmployee, ChainMiddleware(createEmployee, s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteCreateEmployee, ChainMiddleware(s.CreateEmployeeSubmissionHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPILocation, ChainMiddleware(s.LocationHandler(), s.APIMiddleware(s.RequireSession())...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	return nil
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError("GET", filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
