package domain

import "testing"

var allOperations = []struct {
	name string
	op   Operation
}{
	{"list users", OpListUsers},
	{"create user", OpCreateUser},
	{"read self", OpReadSelf},
	{"read user", OpReadUser},
	{"patch user", OpPatchUser},
	{"set own password", OpSetOwnPassword},
	{"reset password", OpResetPassword},
}

func TestAllowed_Matrix(t *testing.T) {
	selfService := map[Operation]bool{
		OpReadSelf:       true,
		OpSetOwnPassword: true,
	}

	for _, tc := range allOperations {
		t.Run(tc.name, func(t *testing.T) {
			admin := &User{ID: "a", Role: RoleAdmin}
			user := &User{ID: "u", Role: RoleUser}
			removed := &User{ID: "r", Role: RoleRemoved}

			if !Allowed(admin, tc.op) {
				t.Fatalf("admin denied %q", tc.name)
			}
			if got, want := Allowed(user, tc.op), selfService[tc.op]; got != want {
				t.Fatalf("user %q = %v, want %v", tc.name, got, want)
			}
			if Allowed(removed, tc.op) {
				t.Fatalf("removed actor allowed %q", tc.name)
			}
		})
	}
}

func TestAllowed_FailsClosed(t *testing.T) {
	for _, tc := range allOperations {
		if Allowed(nil, tc.op) {
			t.Fatalf("nil actor allowed %q", tc.name)
		}
	}
	// An unrecognized role value must never slip through as a capability.
	if Allowed(&User{ID: "x", Role: Role("superadmin")}, OpReadSelf) {
		t.Fatalf("unknown role allowed read self")
	}
}

func TestRole_Validity(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAdmin, RoleRemoved} {
		if !r.Valid() {
			t.Fatalf("expected %q to be valid", r)
		}
	}
	if Role("guest").Valid() {
		t.Fatalf("unexpected valid role")
	}
	if RoleRemoved.Active() {
		t.Fatalf("removed must not be active")
	}
}
