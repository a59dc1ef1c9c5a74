package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"gateway-shim/pkg/shim"
)

// UserRole represents user roles in the system
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleOperator UserRole = "operator"
	RoleViewer   UserRole = "viewer"
)

// Annotation keys set on authenticated requests
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RolesKey    = "roles"
	ClaimsKey   = "claims"
)

// UserIDHeader carries the authenticated user on to the next function, since
// request annotations do not leave the invocation
const UserIDHeader = "X-User-ID"

// Claims represents JWT claims
type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
}

// AuthService handles authentication operations
type AuthService struct {
	config *AuthConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(config *AuthConfig) *AuthService {
	if config.TokenDuration == 0 {
		config.TokenDuration = 24 * time.Hour // Default to 24 hours
	}
	if config.Issuer == "" {
		config.Issuer = "gateway-shim"
	}
	return &AuthService{config: config}
}

// GenerateToken generates a JWT token for a user
func (a *AuthService) GenerateToken(userID, username, email string, roles []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Email:    email,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    a.config.Issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.JWTSecret), nil
	}, jwt.WithIssuer(a.config.Issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(req *shim.Request) (string, error) {
	authHeader := req.Header("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is required")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header format, expected: Bearer <token>")
	}
	return tokenParts[1], nil
}

// Authentication answers 401 unless the request carries a valid bearer token.
// Authenticated requests are annotated and passed on with the user id header set.
func Authentication(authService *AuthService) shim.HandlerFunc {
	return func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		tokenString, err := bearerToken(req)
		if err != nil {
			respond(res, http.StatusUnauthorized, newErrorResponse(req, "Unauthorized", err.Error()))
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err.Error(),
				"path":  req.Path,
			}).Warn("Token validation failed")

			respond(res, http.StatusUnauthorized, newErrorResponse(req, "Unauthorized", "Invalid or expired token"))
			return
		}

		req.Set(UserIDKey, claims.UserID)
		req.Set(UsernameKey, claims.Username)
		req.Set(RolesKey, claims.Roles)
		req.Set(ClaimsKey, claims)
		setHeader(req, UserIDHeader, claims.UserID)

		logrus.WithFields(logrus.Fields{
			"user_id":  claims.UserID,
			"username": claims.Username,
			"path":     req.Path,
		}).Debug("User authenticated successfully")

		next()
	}
}

// Authorization answers 403 unless the token carries one of requiredRoles
func Authorization(authService *AuthService, requiredRoles ...UserRole) shim.HandlerFunc {
	authenticate := Authentication(authService)

	return func(req *shim.Request, res *shim.Response, next shim.NextFunc) {
		authenticate(req, res, func() {
			roles, _ := req.Get(RolesKey)
			userRoles, _ := roles.([]string)

			if !hasAnyRole(userRoles, requiredRoles) {
				logrus.WithFields(logrus.Fields{
					"user_id":        req.GetString(UserIDKey),
					"user_roles":     userRoles,
					"required_roles": requiredRoles,
					"path":           req.Path,
				}).Warn("Authorization failed - insufficient permissions")

				respond(res, http.StatusForbidden, newErrorResponse(req, "Forbidden", "Insufficient permissions"))
				return
			}

			next()
		})
	}
}

func hasAnyRole(userRoles []string, requiredRoles []UserRole) bool {
	if len(requiredRoles) == 0 {
		return true
	}
	for _, required := range requiredRoles {
		for _, role := range userRoles {
			if role == string(required) {
				return true
			}
		}
	}
	return false
}
