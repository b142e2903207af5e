package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/eduymaz/aller-mind/internal/http/response"
	"github.com/eduymaz/aller-mind/internal/platform/apierr"
	"github.com/eduymaz/aller-mind/internal/platform/ctxutil"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

var errMissingToken = errors.New("missing or invalid token")

// AuthMiddleware verifies HS256 bearer tokens issued to API clients. The
// token subject becomes the client id.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
	issuer string
}

func NewAuthMiddleware(log *logger.Logger, secret, issuer string) *AuthMiddleware {
	return &AuthMiddleware{
		log:    log.With("Middleware", "AuthMiddleware"),
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.RespondError(c, apierr.New(http.StatusUnauthorized, "unauthorized", errMissingToken))
			return
		}
		subject, err := am.verify(tokenString)
		if err != nil {
			am.log.Debug("rejected token", "error", err)
			response.RespondError(c, apierr.New(http.StatusUnauthorized, "unauthorized", err))
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithClientID(c.Request.Context(), subject))
		c.Next()
	}
}

func (am *AuthMiddleware) verify(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if am.issuer != "" {
		opts = append(opts, jwt.WithIssuer(am.issuer))
	}
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !tok.Valid {
		return "", errors.New("invalid or expired token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
