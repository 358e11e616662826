// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/jphish/campaign-service/app/dto"
	"github.com/jphish/campaign-service/app/services"
)

// Locals keys populated by AuthMiddleware for downstream handlers.
const (
	LocalsIdentity  = "identity"
	LocalsToken     = "token"
	LocalsClearance = "clearance"
)

const clearanceHeader = "clearance"

// AuthMiddleware resolves the caller's bearer token and clearance level
// into a tenant identity before any handler runs
type AuthMiddleware struct {
	resolver services.AuthResolver
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(resolver services.AuthResolver) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
	}
}

// Authenticate is the middleware function that resolves caller identity
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authorization header is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_AUTHORIZATION_HEADER",
				},
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid authorization header format. Expected 'Bearer <token>'",
				Error: dto.ErrorDetail{
					Code: "INVALID_AUTHORIZATION_FORMAT",
				},
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Access token is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_ACCESS_TOKEN",
				},
			})
		}

		clearance := c.Get(clearanceHeader)
		identity, err := m.resolver.Resolve(c.Context(), token, clearance)
		if err != nil {
			var errorCode string
			var message string

			if errors.Is(err, services.ErrTokenExpired) {
				errorCode = "TOKEN_EXPIRED"
				message = "Access token has expired"
			} else if errors.Is(err, services.ErrTokenInvalid) {
				errorCode = "TOKEN_INVALID"
				message = "Invalid access token"
			} else if errors.Is(err, services.ErrUnauthorized) {
				errorCode = "UNAUTHORIZED"
				message = "Unauthorized"
			} else {
				errorCode = "TOKEN_VALIDATION_FAILED"
				message = "Token validation failed"
			}

			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: message,
				Error: dto.ErrorDetail{
					Code: errorCode,
				},
			})
		}

		// Store caller information in context for downstream handlers
		c.Locals(LocalsIdentity, identity)
		c.Locals(LocalsToken, token)
		c.Locals(LocalsClearance, clearance)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// IdentityFromLocals extracts the identity stored by Authenticate.
func IdentityFromLocals(c fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(LocalsIdentity).(services.Identity)
	return identity, ok
}
