package domain

import "time"

// AuthEventKind names a session transition.
type AuthEventKind string

const (
	EventLogin         AuthEventKind = "login"
	EventRegister      AuthEventKind = "register"
	EventLogout        AuthEventKind = "logout"
	EventRestore       AuthEventKind = "restore"
	EventRestoreFailed AuthEventKind = "restore_failed"
	EventExpired       AuthEventKind = "expired"
	EventRefresh       AuthEventKind = "refresh"
)

// AuthEvent records a session transition for the audit trail.
type AuthEvent struct {
	SessionID string
	Kind      AuthEventKind
	Email     string
	Role      Role
	At        time.Time
}
