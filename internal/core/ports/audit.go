package ports

import (
	"context"
	"time"
)

// Audit actions recorded by the identity service.
const (
	AuditUserCreated     = "user.created"
	AuditUserUpdated     = "user.updated"
	AuditPasswordChanged = "password.changed"
	AuditPasswordReset   = "password.reset"
	AuditLoginSucceeded  = "login.succeeded"
	AuditLoginFailed     = "login.failed"
)

// AuditEvent describes one identity-changing action. UserID is the subject,
// ActorID the identity that performed it (equal for self-service actions).
type AuditEvent struct {
	Action  string
	UserID  string
	ActorID string
	At      time.Time
}

// AuditRecorder accepts events for asynchronous recording. Implementations
// are best-effort: recording never blocks or fails the triggering request.
type AuditRecorder interface {
	Record(event AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event AuditEvent) error
}
