package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/pverdier/go-gestion-locative/shared/utils"
)

// AuthMiddleware issues and validates the backend's own HMAC-signed JWTs.
// A token is only honoured while its Redis session is alive, so logout and
// server-side revocation take effect immediately.
type AuthMiddleware struct {
	secret     []byte
	sessionTTL time.Duration
}

// Claims are the JWT claims carried by an access token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(secret string, sessionTTL time.Duration) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), sessionTTL: sessionTTL}
}

// IssueToken signs an access token for a user and opens its session.
func (am *AuthMiddleware) IssueToken(userID, email string, profile utils.SessionProfile) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(am.sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(am.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if _, err := utils.CreateTokenSession(token, profile, am.sessionTTL); err != nil {
		return "", err
	}
	return token, nil
}

// RequireAuth middleware validates JWT tokens
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c)
		if tokenString == "" {
			utils.UnauthorizedResponse(c, "Authorization token required")
			c.Abort()
			return
		}

		claims, err := am.parseToken(tokenString)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid token")
			c.Abort()
			return
		}

		session, err := utils.GetTokenSession(tokenString)
		if err != nil {
			utils.UnauthorizedResponse(c, "Session expired")
			c.Abort()
			return
		}

		if err := utils.TouchTokenSession(tokenString); err != nil {
			logrus.WithError(err).Debug("failed to touch token session")
		}

		c.Set("user_id", claims.Subject)
		c.Set("email", claims.Email)
		c.Set("session_id", session.SessionID)
		c.Next()
	}
}

func (am *AuthMiddleware) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return am.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractToken extracts the bearer token from the Authorization header.
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// CurrentUserID returns the authenticated user's ID from the request context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
