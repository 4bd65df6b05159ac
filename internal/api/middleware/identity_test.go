package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testUserID = "4b4b5c9c-55b1-4ffa-9cb2-1e02c5356ba0"

func resolve(t *testing.T, secret string, decorate func(*http.Request)) string {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	decorate(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got string
	handler := Identity(secret)(func(c echo.Context) error {
		got = ActingUserID(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return got
}

func TestIdentity_UserIDHeader(t *testing.T) {
	got := resolve(t, "", func(r *http.Request) {
		r.Header.Set(HeaderUserID, testUserID)
	})
	if got != testUserID {
		t.Fatalf("acting id = %q, want %q", got, testUserID)
	}
}

func TestIdentity_InvalidHeaderResolvesEmpty(t *testing.T) {
	for _, header := range []string{"not-a-uuid", " ", "123"} {
		got := resolve(t, "", func(r *http.Request) {
			r.Header.Set(HeaderUserID, header)
		})
		if got != "" {
			t.Fatalf("header %q resolved to %q, want empty", header, got)
		}
	}
}

func TestIdentity_MissingHeaderResolvesEmpty(t *testing.T) {
	if got := resolve(t, "", func(*http.Request) {}); got != "" {
		t.Fatalf("acting id = %q, want empty", got)
	}
}

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tkn.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestIdentity_BearerToken(t *testing.T) {
	got := resolve(t, "secret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+signToken(t, "secret", testUserID))
	})
	if got != testUserID {
		t.Fatalf("acting id = %q, want %q", got, testUserID)
	}
}

func TestIdentity_BearerWrongSecret(t *testing.T) {
	got := resolve(t, "secret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", testUserID))
	})
	if got != "" {
		t.Fatalf("forged token resolved to %q, want empty", got)
	}
}

func TestIdentity_HeaderWinsOverBearer(t *testing.T) {
	got := resolve(t, "secret", func(r *http.Request) {
		r.Header.Set(HeaderUserID, testUserID)
		r.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "0c6d1aa1-17f5-4b1e-8a55-111111111111"))
	})
	if got != testUserID {
		t.Fatalf("acting id = %q, want header value %q", got, testUserID)
	}
}

func TestIdentity_BearerDisabledWithoutSecret(t *testing.T) {
	got := resolve(t, "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+signToken(t, "secret", testUserID))
	})
	if got != "" {
		t.Fatalf("bearer resolution should be disabled, got %q", got)
	}
}
