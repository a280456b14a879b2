package middleware // middleware provides shared request processing for handlers

import (
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Identity is the authenticated caller attached to the request
// context. Handlers receive it as a typed optional: absence means the
// request is anonymous and each operation decides whether that is an
// error (delete answers 401, list does not).
type Identity struct {
	ID      uint64 // user id from the token subject
	IsAdmin bool   // elevated privilege flag from the adm claim
}

const identityKey = "identity"

// Identify returns a middleware that parses a Bearer access token when
// one is present and stores the resulting Identity in the context. It
// never rejects a request on its own: a missing or invalid token
// simply leaves the request anonymous so handlers can produce their
// operation-specific authentication failures.
func Identify(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return next(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return next(c)
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return next(c)
			}
			id, ok := subjectID(claims["sub"])
			if !ok {
				return next(c)
			}
			isAdmin, _ := claims["adm"].(bool)
			c.Set(identityKey, &Identity{ID: id, IsAdmin: isAdmin})
			return next(c)
		}
	}
}

// IdentityFrom extracts the caller identity stored by Identify. The
// second return value is false for anonymous requests.
func IdentityFrom(c echo.Context) (*Identity, bool) {
	ident, ok := c.Get(identityKey).(*Identity)
	return ident, ok && ident != nil
}

// subjectID converts the sub claim to a user id. JWT numeric values
// decode as float64; string subjects are parsed as decimal.
func subjectID(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		return uint64(t), true
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
