package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wasp-platform/user-service/internal/api/metrics"
	"github.com/wasp-platform/user-service/internal/core/domain"
	"github.com/wasp-platform/user-service/internal/core/password"
	"github.com/wasp-platform/user-service/internal/core/ports"
)

// UserService orchestrates the identity operations: authorize the acting
// identity, perform the domain logic, return a typed outcome. It holds no
// mutable state of its own; concurrent calls are safe and uniqueness is
// ultimately enforced by the repository's constraint.
type UserService struct {
	repo      ports.UserRepository
	hasher    ports.PasswordHasher
	authority ports.TokenAuthority
	limiter   ports.LoginLimiter   // optional
	audit     ports.AuditRecorder  // optional
	tokenName string
	tokenDays int
	logger    zerolog.Logger
}

// NewUserService wires the orchestrator. limiter and audit may be nil, in
// which case login throttling and audit recording are disabled.
func NewUserService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	authority ports.TokenAuthority,
	limiter ports.LoginLimiter,
	audit ports.AuditRecorder,
	tokenName string,
	tokenDays int,
	logger zerolog.Logger,
) *UserService {
	if tokenName == "" {
		tokenName = "login"
	}
	if tokenDays <= 0 {
		tokenDays = 1
	}
	return &UserService{
		repo:      repo,
		hasher:    hasher,
		authority: authority,
		limiter:   limiter,
		audit:     audit,
		tokenName: tokenName,
		tokenDays: tokenDays,
		logger:    logger,
	}
}

// authorize resolves the acting identity and checks op against the guard.
// Missing, malformed, unknown and under-privileged identities all collapse
// to the same ErrUnauthorized so the outcome is not an existence oracle.
func (s *UserService) authorize(ctx context.Context, actingID string, op domain.Operation) (*domain.User, error) {
	if actingID == "" {
		return nil, domain.ErrUnauthorized
	}
	if _, err := uuid.Parse(actingID); err != nil {
		return nil, domain.ErrUnauthorized
	}

	actor, err := s.repo.FindByID(ctx, actingID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if !domain.Allowed(actor, op) {
		return nil, domain.ErrUnauthorized
	}
	return actor, nil
}

// ListUsers returns all users ordered by id. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actingID string) ([]domain.User, error) {
	if _, err := s.authorize(ctx, actingID, domain.OpListUsers); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// GetCurrentUser returns the acting user's own record.
func (s *UserService) GetCurrentUser(ctx context.Context, actingID string) (*domain.User, error) {
	return s.authorize(ctx, actingID, domain.OpReadSelf)
}

// GetUser returns an arbitrary user by id. Admin only.
func (s *UserService) GetUser(ctx context.Context, actingID, targetID string) (*domain.User, error) {
	if _, err := s.authorize(ctx, actingID, domain.OpReadUser); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, targetID)
}

// CreateUser creates a user with a generated policy-compliant password and
// returns the plaintext exactly once alongside the created record. Admin only.
func (s *UserService) CreateUser(ctx context.Context, actingID string, input ports.CreateUserInput) (*ports.CreatedCredential, error) {
	actor, err := s.authorize(ctx, actingID, domain.OpCreateUser)
	if err != nil {
		return nil, err
	}

	if input.Name == "" || !input.Role.Active() {
		return nil, domain.ErrInvalidInput
	}

	plaintext := password.Generate()
	hash, err := s.hashTimed(plaintext)
	if err != nil {
		return nil, err
	}

	// Advisory pre-check for a friendlier conflict; the unique constraint in
	// the store remains authoritative under races.
	if _, err := s.repo.FindByName(ctx, input.Name); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Name:         input.Name,
		Role:         input.Role,
		PasswordHash: hash,
		CreatedBy:    actor.ID,
	})
	if err != nil {
		return nil, err
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(created.Role)).Inc()
	s.record(ports.AuditUserCreated, created.ID, actor.ID)
	s.logger.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")

	return &ports.CreatedCredential{User: *created, Password: plaintext}, nil
}

// UpdateUser patches name and/or role of an arbitrary user. Admin only.
// Re-supplying the target's current name is a no-op success, never a conflict.
func (s *UserService) UpdateUser(ctx context.Context, actingID, targetID string, input ports.UpdateUserInput) (*domain.User, error) {
	actor, err := s.authorize(ctx, actingID, domain.OpPatchUser)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, domain.ErrInvalidInput
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != target.Name {
		other, err := s.repo.FindByName(ctx, *input.Name)
		if err == nil && other.ID != target.ID {
			return nil, domain.ErrUserExists
		}
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, target.ID, ports.UserUpdate{Name: input.Name, Role: input.Role})
	if err != nil {
		return nil, err
	}

	s.record(ports.AuditUserUpdated, updated.ID, actor.ID)
	s.logger.Info().Str("user_id", updated.ID).Msg("user updated")
	return updated, nil
}

// SetOwnPassword validates the supplied password against the credential
// policy and stores its hash for the acting user. The plaintext is not
// echoed back: the caller already knows it.
func (s *UserService) SetOwnPassword(ctx context.Context, actingID, plaintext string) (*domain.User, error) {
	actor, err := s.authorize(ctx, actingID, domain.OpSetOwnPassword)
	if err != nil {
		return nil, err
	}

	if err := password.Validate(plaintext); err != nil {
		return nil, err
	}

	hash, err := s.hashTimed(plaintext)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, actor.ID, ports.UserUpdate{PasswordHash: &hash})
	if err != nil {
		return nil, err
	}

	metrics.PasswordUpdatesTotal.WithLabelValues("self").Inc()
	s.record(ports.AuditPasswordChanged, actor.ID, actor.ID)
	return updated, nil
}

// ResetPassword generates a fresh policy-compliant password for the target
// user and returns the plaintext exactly once. Admin only.
func (s *UserService) ResetPassword(ctx context.Context, actingID, targetID string) (*ports.CreatedCredential, error) {
	actor, err := s.authorize(ctx, actingID, domain.OpResetPassword)
	if err != nil {
		return nil, err
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	plaintext := password.Generate()
	hash, err := s.hashTimed(plaintext)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, target.ID, ports.UserUpdate{PasswordHash: &hash})
	if err != nil {
		return nil, err
	}

	metrics.PasswordUpdatesTotal.WithLabelValues("reset").Inc()
	s.record(ports.AuditPasswordReset, target.ID, actor.ID)
	s.logger.Info().Str("user_id", target.ID).Msg("password reset")

	return &ports.CreatedCredential{User: *updated, Password: plaintext}, nil
}

// Login verifies the credential and exchanges it for a token minted by the
// external authority. Unknown names return ErrUserNotFound; a known name
// with a wrong password, and any authority rejection or transport failure,
// return ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, name, plaintext string) (*ports.LoginResult, error) {
	if name == "" || plaintext == "" {
		return nil, domain.ErrInvalidInput
	}

	if s.limiter != nil {
		limited, err := s.limiter.TooManyAttempts(ctx, name)
		if err != nil {
			// Throttling is protective, not load-bearing: a limiter outage
			// must not take logins down with it.
			s.logger.Warn().Err(err).Msg("login limiter unavailable")
		} else if limited {
			metrics.LoginFailuresTotal.WithLabelValues("throttled").Inc()
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginFailuresTotal.WithLabelValues("unknown_user").Inc()
		}
		return nil, err
	}

	if !s.compareTimed(plaintext, user.PasswordHash) {
		if s.limiter != nil {
			if err := s.limiter.RecordFailure(ctx, name); err != nil {
				s.logger.Warn().Err(err).Msg("login limiter unavailable")
			}
		}
		metrics.LoginFailuresTotal.WithLabelValues("bad_password").Inc()
		s.record(ports.AuditLoginFailed, user.ID, user.ID)
		return nil, domain.ErrUnauthorized
	}

	expiry := time.Now().UTC().AddDate(0, 0, s.tokenDays).Unix()
	grant, err := s.authority.IssueToken(ctx, user.ID, s.tokenName, expiry)
	if err != nil {
		// Authority rejection and transport failure both collapse to 401 for
		// the caller; the log and metric keep them distinguishable.
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("token authority call failed")
		metrics.LoginFailuresTotal.WithLabelValues("authority").Inc()
		return nil, domain.ErrUnauthorized
	}

	if s.limiter != nil {
		if err := s.limiter.Clear(ctx, name); err != nil {
			s.logger.Warn().Err(err).Msg("login limiter unavailable")
		}
	}

	metrics.LoginsTotal.Inc()
	s.record(ports.AuditLoginSucceeded, user.ID, user.ID)
	s.logger.Info().Str("user_id", user.ID).Msg("login succeeded")

	return &ports.LoginResult{Token: grant.Token, Expiry: grant.Expiry}, nil
}

func (s *UserService) hashTimed(plaintext string) (string, error) {
	start := time.Now()
	hash, err := s.hasher.Hash(plaintext)
	metrics.HashDuration.Observe(time.Since(start).Seconds())
	return hash, err
}

func (s *UserService) compareTimed(plaintext, hash string) bool {
	start := time.Now()
	ok := s.hasher.Compare(plaintext, hash)
	metrics.HashDuration.Observe(time.Since(start).Seconds())
	return ok
}

func (s *UserService) record(action, userID, actorID string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ports.AuditEvent{Action: action, UserID: userID, ActorID: actorID, At: time.Now().UTC()})
}
