package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wasp-platform/user-service/internal/core/domain"
	"github.com/wasp-platform/user-service/internal/core/password"
	"github.com/wasp-platform/user-service/internal/core/ports"
)

// --- Stub collaborators ---

type stubUserRepo struct {
	users map[string]*domain.User // keyed by id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByName(_ context.Context, name string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Name == name {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Name == user.Name {
			return nil, domain.ErrUserExists
		}
	}
	stored := cloneUser(user)
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.Name != nil {
		for _, other := range r.users {
			if other.ID != id && other.Name == *update.Name {
				return nil, domain.ErrUserExists
			}
		}
		u.Name = *update.Name
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

// stubHasher avoids bcrypt's cost in unit tests; the real implementation is
// covered in its own package.
type stubHasher struct{}

func (stubHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (stubHasher) Compare(plaintext, hash string) bool   { return hash == "hashed:"+plaintext }

type stubAuthority struct {
	err        error
	lastUserID string
	lastName   string
	lastExpiry int64
}

func (a *stubAuthority) IssueToken(_ context.Context, userID, tokenName string, expiry int64) (*ports.TokenGrant, error) {
	a.lastUserID = userID
	a.lastName = tokenName
	a.lastExpiry = expiry
	if a.err != nil {
		return nil, a.err
	}
	return &ports.TokenGrant{Token: "issued-token", Expiry: expiry}, nil
}

type stubLimiter struct {
	limited  bool
	failures int
	cleared  int
}

func (l *stubLimiter) TooManyAttempts(context.Context, string) (bool, error) { return l.limited, nil }
func (l *stubLimiter) RecordFailure(context.Context, string) error           { l.failures++; return nil }
func (l *stubLimiter) Clear(context.Context, string) error                   { l.cleared++; return nil }

// --- Fixtures ---

type fixture struct {
	repo      *stubUserRepo
	authority *stubAuthority
	limiter   *stubLimiter
	svc       *UserService
	admin     *domain.User
	user      *domain.User
	removed   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubUserRepo()
	authority := &stubAuthority{}
	limiter := &stubLimiter{}
	svc := NewUserService(repo, stubHasher{}, authority, limiter, nil, "login", 1, zerolog.Nop())

	f := &fixture{repo: repo, authority: authority, limiter: limiter, svc: svc}
	f.admin = f.addUser(t, "test-admin", domain.RoleAdmin, "AdminPw0!")
	f.user = f.addUser(t, "test-user", domain.RoleUser, "Sunny!23")
	f.removed = f.addUser(t, "removed-user", domain.RoleRemoved, "Gone!234")
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role domain.Role, plaintext string) *domain.User {
	t.Helper()
	hash, _ := stubHasher{}.Hash(plaintext)
	u, err := f.repo.Create(context.Background(), &domain.User{
		Name:         name,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seeding %s failed: %v", name, err)
	}
	return u
}

// --- Authorization behaviour ---

func TestListUsers_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, err := f.svc.ListUsers(ctx, f.admin.ID)
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if !sort.SliceIsSorted(users, func(i, j int) bool { return users[i].ID < users[j].ID }) {
		t.Fatalf("list not ordered by id")
	}

	for _, actingID := range []string{f.user.ID, f.removed.ID, uuid.NewString(), "not-a-uuid", ""} {
		if _, err := f.svc.ListUsers(ctx, actingID); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("acting id %q: expected ErrUnauthorized, got %v", actingID, err)
		}
	}
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, actor := range []*domain.User{f.admin, f.user} {
		got, err := f.svc.GetCurrentUser(ctx, actor.ID)
		if err != nil {
			t.Fatalf("self read for %s failed: %v", actor.Name, err)
		}
		if got.ID != actor.ID {
			t.Fatalf("expected own record, got %s", got.ID)
		}
	}

	if _, err := f.svc.GetCurrentUser(ctx, f.removed.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("removed self read: expected ErrUnauthorized, got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetUser(ctx, f.admin.ID, f.user.ID)
	if err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
	if got.Name != "test-user" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := f.svc.GetUser(ctx, f.user.ID, f.admin.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-admin read: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.GetUser(ctx, f.admin.ID, uuid.NewString()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("unknown target: expected ErrUserNotFound, got %v", err)
	}
}

// --- Create ---

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, f.admin.ID, ports.CreateUserInput{Name: "alice", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.User.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", created.User.Role)
	}
	if created.User.CreatedBy != f.admin.ID {
		t.Fatalf("createdBy = %s, want admin id %s", created.User.CreatedBy, f.admin.ID)
	}
	if err := password.Validate(created.Password); err != nil {
		t.Fatalf("generated password %q fails policy: %v", created.Password, err)
	}

	stored, err := f.repo.FindByID(ctx, created.User.ID)
	if err != nil {
		t.Fatalf("created user not stored: %v", err)
	}
	if !(stubHasher{}).Compare(created.Password, stored.PasswordHash) {
		t.Fatalf("stored hash does not match returned plaintext")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateUser(ctx, f.admin.ID, ports.CreateUserInput{Name: "", Role: domain.RoleUser}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty name: expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, f.admin.ID, ports.CreateUserInput{Name: "bob", Role: domain.RoleRemoved}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("removed role: expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, f.user.ID, ports.CreateUserInput{Name: "bob", Role: domain.RoleUser}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-admin create: expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateUser_DuplicateName(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.CreateUser(context.Background(), f.admin.ID, ports.CreateUserInput{Name: "test-user", Role: domain.RoleUser}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

// --- Update ---

func TestUpdateUser_Rename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	name := "renamed-user"
	updated, err := f.svc.UpdateUser(ctx, f.admin.ID, f.user.ID, ports.UpdateUserInput{Name: &name})
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if updated.Name != "renamed-user" {
		t.Fatalf("name not updated: %+v", updated)
	}
}

func TestUpdateUser_RenameToTakenName(t *testing.T) {
	f := newFixture(t)
	name := "test-admin"
	if _, err := f.svc.UpdateUser(context.Background(), f.admin.ID, f.user.ID, ports.UpdateUserInput{Name: &name}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUpdateUser_OwnCurrentNameIsNoop(t *testing.T) {
	f := newFixture(t)
	name := "test-user"
	updated, err := f.svc.UpdateUser(context.Background(), f.admin.ID, f.user.ID, ports.UpdateUserInput{Name: &name})
	if err != nil {
		t.Fatalf("re-supplying current name must succeed, got %v", err)
	}
	if updated.Name != "test-user" {
		t.Fatalf("unexpected name: %s", updated.Name)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	f := newFixture(t)
	name := "ghost"
	if _, err := f.svc.UpdateUser(context.Background(), f.admin.ID, uuid.NewString(), ports.UpdateUserInput{Name: &name}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUser_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty := ""
	if _, err := f.svc.UpdateUser(ctx, f.admin.ID, f.user.ID, ports.UpdateUserInput{Name: &empty}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty name: expected ErrInvalidInput, got %v", err)
	}
	bogus := domain.Role("owner")
	if _, err := f.svc.UpdateUser(ctx, f.admin.ID, f.user.ID, ports.UpdateUserInput{Role: &bogus}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("bogus role: expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateUser_RoleChangeTakesImmediateEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role := domain.RoleAdmin
	if _, err := f.svc.UpdateUser(ctx, f.admin.ID, f.user.ID, ports.UpdateUserInput{Role: &role}); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	// No caching layer sits between authorization and the store: the
	// promoted user is admin on the very next call.
	if _, err := f.svc.ListUsers(ctx, f.user.ID); err != nil {
		t.Fatalf("promoted user denied admin operation: %v", err)
	}

	role = domain.RoleRemoved
	if _, err := f.svc.UpdateUser(ctx, f.admin.ID, f.user.ID, ports.UpdateUserInput{Role: &role}); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := f.svc.GetCurrentUser(ctx, f.user.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("removed user still authorized: %v", err)
	}
}

// --- Password operations ---

func TestSetOwnPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.svc.SetOwnPassword(ctx, f.user.ID, "NewPass1!")
	if err != nil {
		t.Fatalf("set password failed: %v", err)
	}
	if updated.ID != f.user.ID {
		t.Fatalf("unexpected record: %+v", updated)
	}

	stored, _ := f.repo.FindByID(ctx, f.user.ID)
	if !(stubHasher{}).Compare("NewPass1!", stored.PasswordHash) {
		t.Fatalf("hash not updated")
	}
}

func TestSetOwnPassword_PolicyViolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, _ := f.repo.FindByID(ctx, f.user.ID)
	_, err := f.svc.SetOwnPassword(ctx, f.user.ID, "aAa$zzzz")
	if !errors.Is(err, password.ErrNoDigit) {
		t.Fatalf("expected ErrNoDigit, got %v", err)
	}
	after, _ := f.repo.FindByID(ctx, f.user.ID)
	if before.PasswordHash != after.PasswordHash {
		t.Fatalf("hash mutated despite policy failure")
	}
}

func TestSetOwnPassword_RemovedDenied(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.SetOwnPassword(context.Background(), f.removed.ID, "NewPass1!"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.ResetPassword(ctx, f.admin.ID, f.user.ID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := password.Validate(created.Password); err != nil {
		t.Fatalf("generated password %q fails policy: %v", created.Password, err)
	}

	stored, _ := f.repo.FindByID(ctx, f.user.ID)
	if !(stubHasher{}).Compare(created.Password, stored.PasswordHash) {
		t.Fatalf("stored hash does not match returned plaintext")
	}

	if _, err := f.svc.ResetPassword(ctx, f.user.ID, f.admin.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-admin reset: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.ResetPassword(ctx, f.admin.ID, uuid.NewString()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("unknown target: expected ErrUserNotFound, got %v", err)
	}
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)

	before := time.Now().UTC().AddDate(0, 0, 1).Unix()
	result, err := f.svc.Login(context.Background(), "test-user", "Sunny!23")
	after := time.Now().UTC().AddDate(0, 0, 1).Unix()
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if result.Token != "issued-token" {
		t.Fatalf("unexpected token: %q", result.Token)
	}
	if result.Expiry < before || result.Expiry > after {
		t.Fatalf("expiry %d outside expected range [%d, %d]", result.Expiry, before, after)
	}
	if f.authority.lastUserID != f.user.ID {
		t.Fatalf("authority called with %q, want %q", f.authority.lastUserID, f.user.ID)
	}
	if f.authority.lastName != "login" {
		t.Fatalf("token name = %q, want login", f.authority.lastName)
	}
	if f.limiter.cleared != 1 {
		t.Fatalf("limiter not cleared after success")
	}
}

func TestLogin_UnknownName(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Login(context.Background(), "ghost", "Sunny!23"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Login(context.Background(), "test-user", "WrongPw1!"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if f.limiter.failures != 1 {
		t.Fatalf("failed attempt not recorded")
	}
}

func TestLogin_EmptyInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, "", "Sunny!23"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty name: expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "test-user", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty password: expected ErrInvalidInput, got %v", err)
	}
}

func TestLogin_AuthorityRejection(t *testing.T) {
	f := newFixture(t)
	f.authority.err = errors.New("authority says no")
	if _, err := f.svc.Login(context.Background(), "test-user", "Sunny!23"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLogin_Throttled(t *testing.T) {
	f := newFixture(t)
	f.limiter.limited = true
	if _, err := f.svc.Login(context.Background(), "test-user", "Sunny!23"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}
