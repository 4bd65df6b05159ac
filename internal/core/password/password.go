// Package password implements the credential policy: validation of candidate
// passwords against the rule set, and generation of random passwords that are
// guaranteed to satisfy it.
package password

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strings"
)

// MinLength is the policy minimum. Generated passwords are exactly this long
// while the number of required character classes stays below it.
const MinLength = 8

// SpecialChars is the fixed set counted as special characters.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

var (
	ErrTooShort  = errors.New("password must be at least 8 characters")
	ErrNoDigit   = errors.New("password must contain at least one number")
	ErrNoLower   = errors.New("password must contain at least one lowercase letter")
	ErrNoUpper   = errors.New("password must contain at least one uppercase letter")
	ErrNoSpecial = errors.New("password must contain at least one special character")
)

// Validate checks pw against the policy, short-circuiting on the first
// failing rule so the returned error names exactly one missing class.
func Validate(pw string) error {
	switch {
	case len(pw) < MinLength:
		return ErrTooShort
	case !containsRange(pw, '0', '9'):
		return ErrNoDigit
	case !containsRange(pw, 'a', 'z'):
		return ErrNoLower
	case !containsRange(pw, 'A', 'Z'):
		return ErrNoUpper
	case !strings.ContainsAny(pw, SpecialChars):
		return ErrNoSpecial
	}
	return nil
}

// IsPolicyViolation reports whether err is one of the policy rule errors.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, ErrTooShort) ||
		errors.Is(err, ErrNoDigit) ||
		errors.Is(err, ErrNoLower) ||
		errors.Is(err, ErrNoUpper) ||
		errors.Is(err, ErrNoSpecial)
}

func containsRange(s string, lo, hi byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= lo && s[i] <= hi {
			return true
		}
	}
	return false
}

type charGenerator func(random io.Reader) byte

// One generator per required character class.
var classGenerators = [...]charGenerator{
	func(r io.Reader) byte { return byte('A' + randInt(r, 26)) },
	func(r io.Reader) byte { return byte('a' + randInt(r, 26)) },
	func(r io.Reader) byte { return SpecialChars[randInt(r, len(SpecialChars))] },
	func(r io.Reader) byte { return byte('0' + randInt(r, 10)) },
}

// Generate returns a random password that always passes Validate. The
// sequence starts with one generator per required class, is padded with
// generators drawn uniformly from the same set up to MinLength, and is then
// shuffled (Fisher–Yates) before any character is produced. Class coverage
// is therefore deterministic while character order stays uniform.
func Generate() string {
	return generate(rand.Reader)
}

func generate(random io.Reader) string {
	gens := append([]charGenerator(nil), classGenerators[:]...)
	for len(gens) < MinLength {
		gens = append(gens, classGenerators[randInt(random, len(classGenerators))])
	}

	for i := len(gens) - 1; i > 0; i-- {
		j := randInt(random, i+1)
		gens[i], gens[j] = gens[j], gens[i]
	}

	out := make([]byte, len(gens))
	for i, gen := range gens {
		out[i] = gen(random)
	}
	return string(out)
}

func randInt(random io.Reader, n int) int {
	v, err := rand.Int(random, big.NewInt(int64(n)))
	if err != nil {
		// The platform CSPRNG failing is not a recoverable condition for
		// credential generation.
		panic("password: random source failed: " + err.Error())
	}
	return int(v.Int64())
}
