package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
)

const ctxClientID = "client_id"

// ClientIDFromCtx returns the caller identity set by APIKeyMiddleware.
func ClientIDFromCtx(c echo.Context) (string, bool) {
	id, ok := c.Get(ctxClientID).(string)
	return id, ok && id != ""
}

// keyID is a short, stable, non-reversible label for an API key, used in rate-limit
// keys and logs instead of the key itself.
func keyID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:6])
}

// APIKeyMiddleware authenticates requests using the X-API-Key header against keys.
// With no keys configured authentication is off and callers are identified by IP.
func APIKeyMiddleware(keys []string) echo.MiddlewareFunc {
	allowed := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			allowed = append(allowed, []byte(k))
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(allowed) == 0 {
				c.Set(ctxClientID, "ip:"+c.RealIP())
				return next(c)
			}

			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}

			match := 0
			for _, k := range allowed {
				match |= subtle.ConstantTimeCompare(k, []byte(key))
			}
			if match != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}

			c.Set(ctxClientID, "key:"+keyID(key))
			return next(c)
		}
	}
}
