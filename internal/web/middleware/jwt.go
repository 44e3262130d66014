package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/storefront/internal/config"
	"github.com/JonMunkholm/storefront/internal/core"
)

// UserClaims are the claims of a customer token. Tokens are issued by the
// account service; this service only verifies them. The user id is read
// from user.id and falls back to the standard sub claim.
type UserClaims struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's id.
func (c *UserClaims) UserID() (uuid.UUID, error) {
	raw := c.User.ID
	if raw == "" {
		raw = c.Subject
	}
	if raw == "" {
		return uuid.Nil, errors.New("token has no user id")
	}
	return uuid.Parse(raw)
}

// ParseToken verifies an HMAC-signed token and returns its claims.
func ParseToken(tokenString, secret, issuer string) (*UserClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// bearerToken reads "Authorization: Bearer <token>", or the bare "token"
// header older clients send.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("token"))
}

// UserAuth returns middleware that requires a valid customer token and
// stores the user id in the request context (see core.UserIDFromContext).
func UserAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token", "AUTH_MISSING_TOKEN")
				return
			}

			if cfg.JWTSecret == "" {
				slog.Error("auth: JWT_SECRET is not configured, rejecting user request", "path", r.URL.Path)
				writeAuthError(w, http.StatusUnauthorized, "authentication unavailable", "AUTH_UNAVAILABLE")
				return
			}

			claims, err := ParseToken(tokenString, cfg.JWTSecret, cfg.JWTIssuer)
			if err != nil {
				slog.Warn("auth: invalid token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token", "AUTH_INVALID_TOKEN")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token", "AUTH_INVALID_TOKEN")
				return
			}

			noteUser(r.Context(), userID)
			ctx := core.ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
