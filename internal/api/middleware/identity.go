package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderUserID is the header the gateway uses to assert the caller identity.
const HeaderUserID = "user-id"

// ContextUserID is the echo context key the resolved candidate id is stored
// under.
const ContextUserID = "user_id"

// Identity extracts the caller's claimed identity and stores it in the
// request context: the user-id header when present, otherwise the sub claim
// of an authority-minted bearer token (when a secret is configured).
//
// Only a syntactically valid UUID is kept; anything else resolves to the
// empty id. The request still proceeds — resolution against the directory
// and authorization happen in the service so every denial path collapses to
// the same 401 there.
func Identity(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderUserID)
			if id == "" && jwtSecret != "" {
				id = subjectFromBearer(c.Request().Header.Get("Authorization"), jwtSecret)
			}

			if _, err := uuid.Parse(id); err != nil {
				id = ""
			}

			c.Set(ContextUserID, id)
			return next(c)
		}
	}
}

// subjectFromBearer returns the sub claim of a valid HS256 bearer token, or
// empty. The token only identifies the caller; it never carries roles this
// service would trust.
func subjectFromBearer(authHeader, secret string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return ""
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// ActingUserID returns the candidate acting identity stored by Identity.
func ActingUserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}
