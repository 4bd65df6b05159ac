// Package authority implements the HTTP client for the external token
// authority, the service that mints access tokens for verified identities.
package authority

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wasp-platform/user-service/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// ErrTokenRejected marks any non-success response from the authority. The
// service treats it the same as a transport failure; it exists so logs can
// carry the status code.
var ErrTokenRejected = errors.New("token authority rejected the request")

// Config captures the settings for reaching the token authority.
type Config struct {
	// BaseURL is the authority's root, e.g. http://wasp-authentication-service.
	BaseURL string
	// APIVersion is the path version segment, e.g. "v1".
	APIVersion string
	// Timeout bounds each token call. Defaults to 10s.
	Timeout time.Duration
}

// Client issues tokens against POST /{version}/user/{id}/token. The resolved
// user id is asserted as the caller identity via the user-id header, which
// the authority cross-checks against the path.
type Client struct {
	http       *resty.Client
	apiVersion string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout)

	return &Client{http: httpClient, apiVersion: cfg.APIVersion}
}

type issueTokenRequest struct {
	Name   string `json:"name"`
	Expiry int64  `json:"expiry"`
}

// IssueToken requests a token for userID with the given name and expiry
// (Unix seconds). Anything but a 201 is a rejection.
func (c *Client) IssueToken(ctx context.Context, userID, tokenName string, expiry int64) (*ports.TokenGrant, error) {
	var grant ports.TokenGrant
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("user-id", userID).
		SetBody(issueTokenRequest{Name: tokenName, Expiry: expiry}).
		SetResult(&grant).
		Post(fmt.Sprintf("/%s/user/%s/token", c.apiVersion, userID))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d", ErrTokenRejected, resp.StatusCode())
	}
	return &grant, nil
}
