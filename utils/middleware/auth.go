package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkruczek/course-system/model"
	"github.com/pkruczek/course-system/services"
	"github.com/pkruczek/course-system/utils/auth"
	"github.com/pkruczek/course-system/utils/response"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		tokenString := parts[1]

		// Validate token
		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		// Check if it's an access token
		if claims.TokenType != "access" {
			return response.Unauthorized(c, "Invalid token type")
		}

		// Check if token is revoked (blacklisted)
		isRevoked, err := m.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
		if err != nil {
			return response.InternalServerError(c, "Failed to check token status")
		}
		if isRevoked {
			return response.Unauthorized(c, "Token has been revoked")
		}

		// Load user from database and verify token version
		var user model.User
		if err := m.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.Unauthorized(c, "User not found")
			}
			return response.InternalServerError(c, "Failed to load user")
		}

		// Check if token version matches
		if user.TokenVersion != claims.TokenVersion {
			return response.Unauthorized(c, "Token has been invalidated")
		}

		// Store principal and full user object in context
		c.Locals("principal", services.Principal{UserID: user.ID, Role: user.Role})
		c.Locals("user", &user)
		c.Locals("token_jti", claims.ID)

		return c.Next()
	}
}

// RequireRole is middleware that requires one of the given roles. It must run
// after Required; services still re-check roles against fresh state.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return response.Forbidden(c, "Access denied")
		}

		for _, r := range roles {
			if principal.Role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// GetPrincipal extracts the authenticated principal from context
func GetPrincipal(c *fiber.Ctx) (services.Principal, bool) {
	p := c.Locals("principal")
	if p == nil {
		return services.Principal{}, false
	}
	principal, ok := p.(services.Principal)
	return principal, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti := c.Locals("token_jti")
	if jti == nil {
		return "", false
	}
	j, ok := jti.(string)
	return j, ok
}
