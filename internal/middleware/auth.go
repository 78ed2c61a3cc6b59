// Package middleware provides authentication and request middleware for the application.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"folio/internal/config"
	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ActorKey is the Fiber locals key holding the resolved models.Actor.
const ActorKey = "actor"

const tokenIssuer = "folio-api"

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// ActorFrom returns the actor resolved for the request, or models.Anonymous.
func ActorFrom(c *fiber.Ctx) models.Actor {
	if actor, ok := c.Locals(ActorKey).(models.Actor); ok {
		return actor
	}
	return models.Anonymous
}

// OptionalAuth resolves the actor from a Bearer token when one is presented.
// Requests without an Authorization header continue as anonymous; a header
// that does not carry a valid token is rejected.
func OptionalAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		c.Locals(ActorKey, models.Anonymous)
		return c.Next()
	}
	return authenticate(c, authHeader)
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return models.RespondWithError(c, models.NewUnauthorizedError("Authorization header required"))
	}
	return authenticate(c, authHeader)
}

func authenticate(c *fiber.Ctx, authHeader string) error {
	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return models.RespondWithError(c, models.NewUnauthorizedError("Invalid authorization header format"))
	}

	actor, err := ParseActorToken(cfg.JWTSecret, parts[1])
	if err != nil {
		return models.RespondWithError(c, models.NewUnauthorizedError(err.Error()))
	}

	c.Locals(ActorKey, actor)
	c.SetUserContext(context.WithValue(c.UserContext(), ActorCtxKey, actor))
	return c.Next()
}

// ParseActorToken validates an HS256 token and extracts the actor from its
// "sub" and "role" claims.
func ParseActorToken(secret, tokenString string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.Anonymous, errors.New("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Anonymous, errors.New("Invalid token claims")
	}

	// Extract user ID from "sub" claim (subject claim per RFC 7519)
	subStr, err := claims.GetSubject()
	if err != nil || subStr == "" {
		return models.Anonymous, errors.New("Invalid token structure - missing subject")
	}
	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil || userIDVal == 0 {
		return models.Anonymous, errors.New("Invalid user ID in token")
	}

	roleStr, _ := claims["role"].(string)
	role := models.Role(roleStr)
	if !role.Valid() {
		return models.Anonymous, errors.New("Invalid role in token")
	}

	return models.Actor{UserID: uint(userIDVal), Role: role}, nil
}

// SignActorToken mints a token for actor. Token issuance is not exposed over
// HTTP; tests and the admin command use it.
func SignActorToken(secret string, actor models.Actor, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}
	if !actor.Authenticated() {
		return "", fmt.Errorf("cannot sign a token for an anonymous actor")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(actor.UserID), 10),
		"role": string(actor.Role),
		"iss":  tokenIssuer,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
