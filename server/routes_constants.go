package server

import "github.com/jrsteele09/go-attendance-portal/gate"

// Route path constants
const (
	RouteRoot   = "/"
	RouteLogin  = gate.PathLogin
	RouteLogout = "/logout"

	// Employee pages
	RouteHome       = gate.PathHome
	RoutePunchIn    = "/home/punch-in"
	RoutePunchOut   = "/home/punch-out"
	RouteClock      = "/home/clock"
	RouteAttendance = "/attendance"

	// Admin pages
	RouteEmployeeHistory = gate.PathEmployeeHistory
	RouteCreateEmployee  = "/create-employee"

	// API Routes
	RouteAPILocation = "/api/location"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
