package ports

import "context"

// PasswordHasher is the one-way credential hashing contract. Compare is
// expected to be constant-time with respect to the plaintext.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) bool
}

// LoginLimiter throttles repeated failed password attempts per user name.
type LoginLimiter interface {
	// TooManyAttempts reports whether the name has exhausted its attempt
	// budget for the current window.
	TooManyAttempts(ctx context.Context, name string) (bool, error)
	// RecordFailure counts one failed attempt against the name.
	RecordFailure(ctx context.Context, name string) error
	// Clear resets the counter, called after a successful login.
	Clear(ctx context.Context, name string) error
}
