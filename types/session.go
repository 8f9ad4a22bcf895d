package types

// Mode describes how the current visitor is authenticated.
type Mode string

const (
	ModeCredentialed Mode = "credentialed"
	ModeGuest        Mode = "guest"
	ModeNone         Mode = "none"
)

// Session is the resolved authentication state of the current visitor,
// derived purely from the local store. Token presence always wins over the
// guest flag.
type Session struct {
	Authenticated bool `json:"authenticated"`
	Mode          Mode `json:"mode"`
}

// Route identifies a navigable screen.
type Route string

const (
	RouteLogin            Route = "/login"
	RouteSignup           Route = "/signup"
	RouteDashboard        Route = "/dashboard"
	RouteSelectCategory   Route = "/select-category"
	RouteSocialEmail      Route = "/social-email"
	RouteGuestEntry       Route = "/guest"
	RouteInventory        Route = "/inventory"
	RouteSales            Route = "/sales"
	RouteExpenses         Route = "/expenses"
	RouteReports          Route = "/reports"
)

// Intent qualifies how a navigation was initiated.
type Intent string

const (
	// IntentDefault is a plain navigation with no special handling.
	IntentDefault Intent = ""
	// IntentGuestEntry marks an explicit "try as guest" navigation. It is the
	// only path that promotes an unauthenticated visitor to guest mode.
	IntentGuestEntry Intent = "guest-entry"
)
