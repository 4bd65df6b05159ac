package ports

import "context"

// TokenGrant is the payload minted by the token authority.
type TokenGrant struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

// TokenAuthority is the external service that mints access tokens for
// verified identities. Any non-success response is a rejection; the service
// does not distinguish authority-side validation failure from authority-side
// authorization failure.
type TokenAuthority interface {
	IssueToken(ctx context.Context, userID, tokenName string, expiry int64) (*TokenGrant, error)
}
