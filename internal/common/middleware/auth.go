package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"nftclicks-backend/internal/common/config"
	"nftclicks-backend/internal/common/errors"
)

const (
	ContextUserEmail = "user_email"
	ContextIsAdmin   = "is_admin"

	roleUser  = "user"
	roleAdmin = "admin"
)

// Claims is the session token payload. The email is the identity every
// workflow keys on.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for an authenticated user.
func IssueToken(cfg *config.Config, email string) (string, error) {
	return issue(cfg, email, roleUser)
}

// IssueAdminToken signs a session token for the admin panel.
func IssueAdminToken(cfg *config.Config, email string) (string, error) {
	return issue(cfg, email, roleAdmin)
}

func issue(cfg *config.Config, email, role string) (string, error) {
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.Auth.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "nftclicks",
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Auth.JWTSecret))
}

func parseToken(cfg *config.Config, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// RequireAuth validates the bearer token and stores the caller's email in
// the request context.
func RequireAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, appErr := claimsFromRequest(cfg, c)
		if appErr != nil {
			abort(c, appErr)
			return
		}

		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextIsAdmin, claims.Role == roleAdmin)
		c.Next()
	}
}

// RequireAdmin only admits admin-panel tokens.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, appErr := claimsFromRequest(cfg, c)
		if appErr != nil {
			abort(c, appErr)
			return
		}

		if claims.Role != roleAdmin {
			abort(c, errors.New(errors.ErrCodeForbidden, "Admin access required"))
			return
		}

		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextIsAdmin, true)
		c.Next()
	}
}

func claimsFromRequest(cfg *config.Config, c *gin.Context) (*Claims, *errors.AppError) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, errors.NewUnauthorizedError("missing Authorization header")
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header {
		return nil, errors.NewUnauthorizedError("malformed Authorization header")
	}

	claims, err := parseToken(cfg, tokenString)
	if err != nil {
		return nil, errors.NewUnauthorizedError("invalid session token")
	}
	return claims, nil
}

// UserEmail returns the authenticated email set by RequireAuth.
func UserEmail(c *gin.Context) string {
	if email, exists := c.Get(ContextUserEmail); exists {
		if s, ok := email.(string); ok {
			return s
		}
	}
	return ""
}

func abort(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(getHTTPStatusCode(appErr), AlertResponse{
		AlertType: appErr.AlertType(),
		Alert:     "true",
		Message:   appErr.Message,
		Code:      string(appErr.Code),
		RequestID: getRequestID(c),
	})
}
