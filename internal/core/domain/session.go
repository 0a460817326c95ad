package domain

import "time"

// Role is the authorization role carried by an access credential.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Routes the portal navigates to after a session transition.
const (
	LandingRoute   = "/"
	DashboardRoute = "/dashboard"
	OrdersRoute    = "/orders"
)

// Persisted credential keys. The short-lived store holds KeyToken and
// KeyRole, the long-lived store holds KeyRefreshToken.
const (
	KeyToken        = "token"
	KeyRole         = "role"
	KeyRefreshToken = "refresh_token"
)

// Claims are the display/routing claims extracted from an access credential.
// They are never an authorization decision on their own.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time // zero when the credential carries no exp claim
}

// Session is the in-memory record of the current authenticated identity.
// It is derived exclusively from a decoded access credential.
type Session struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// HomeRoute is where a freshly authenticated session is sent.
func (s *Session) HomeRoute() string {
	if s.IsAdmin() {
		return OrdersRoute
	}
	return DashboardRoute
}

// TokenPair is what the backend issues on login and registration.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
