package domain

// Operation enumerates the actions the authorization guard decides over.
type Operation int

const (
	OpListUsers Operation = iota
	OpCreateUser
	OpReadSelf
	OpReadUser
	OpPatchUser
	OpSetOwnPassword
	OpResetPassword
)

// Allowed reports whether actor may perform op. A nil actor (missing,
// malformed or unknown identity) is always denied, as is any actor whose
// role is not active — the guard fails closed and callers surface a single
// uniform denial so the outcome never reveals why.
func Allowed(actor *User, op Operation) bool {
	if actor == nil || !actor.Role.Active() {
		return false
	}

	switch op {
	case OpReadSelf, OpSetOwnPassword:
		return true
	case OpListUsers, OpCreateUser, OpReadUser, OpPatchUser, OpResetPassword:
		return actor.Role == RoleAdmin
	default:
		return false
	}
}
