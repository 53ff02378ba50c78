// Package middleware contains HTTP middleware functions for the league ledger API.
// Middleware sits between the HTTP server and route handlers. It runs on every
// request that passes through it, making it the right place for cross-cutting
// concerns like authentication and role checks.
package middleware

import (
	"errors"
	"strings"
	"time"

	// fiber is the HTTP framework; fiber.Handler is the function signature for middleware
	"github.com/gofiber/fiber/v2"
	// jwt is used to verify JSON Web Tokens (JWTs) from the Authorization header
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles carried in the token's "role" claim.
const (
	RoleAdmin   = "admin"   // League officials: may submit, edit and delete results
	RoleManager = "manager" // Score keepers: same write access as admins
	RoleUser    = "user"    // Players and scoreboards: read-only
)

// Keys under which Auth stores the caller's identity in c.Locals.
const (
	LocalUserID   = "userID"
	LocalUserRole = "userRole"
	LocalLeagueID = "leagueID"
)

// Claims defines the data we expect inside a token issued for the admin console.
//
//	"sub":       the user's id in the league management system
//	"role":      "admin", "manager" or "user"
//	"league_id": the league this token may act on
//
// A token is scoped to exactly one league, so a route never takes the league id
// from the URL and one league's officials can't touch another league's ledger.
type Claims struct {
	// Standard JWT fields: Subject (user ID), ExpiresAt, IssuedAt, etc.
	jwt.RegisteredClaims
	Role     string `json:"role"`
	LeagueID string `json:"league_id"`
}

// Auth returns a Fiber middleware handler that:
//  1. Verifies the HMAC-SHA256 signature and expiry of the "Authorization: Bearer <token>" JWT
//  2. Checks the token names a user and a league
//  3. Stores the user id, role and league id in the request context (c.Locals)
//     so downstream handlers can read them without re-parsing the token
//
// This is a closure: a function that returns another function, capturing secret
// in its scope so it is available every time a request comes in.
func Auth(secret string) fiber.Handler {
	key := []byte(secret)
	// WithValidMethods pins the algorithm so a token can't pick "none" or an
	// asymmetric method and slip past the HMAC check.
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(c *fiber.Ctx) error {
		// --- Step 1: Extract the token from the Authorization header ---
		// Browsers' EventSource can't set headers, so the live stream passes the
		// token as ?access_token= instead.
		authHeader := c.Get("Authorization")
		var tokenStr string
		switch {
		case strings.HasPrefix(authHeader, "Bearer "):
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
		case authHeader == "" && c.Query("access_token") != "":
			tokenStr = c.Query("access_token")
		default:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}

		// --- Step 2: Verify and parse the JWT ---
		claims := &Claims{}
		_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}

		if claims.Subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token missing subject",
			})
		}
		leagueID, err := uuid.Parse(claims.LeagueID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token missing league",
			})
		}

		// --- Step 3: Store the caller in the request context ---
		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalUserRole, roleFromClaim(claims.Role))
		c.Locals(LocalLeagueID, leagueID)

		// Pass control to the next middleware or route handler
		return c.Next()
	}
}

// IssueToken signs a token for userID acting on leagueID. The admin console's
// backend does this in production; the server itself only uses it to hand out a
// development token.
func IssueToken(secret, userID, role string, leagueID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:     role,
		LeagueID: leagueID.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// roleFromClaim normalises the raw role string from the JWT.
// If the claim is missing or unrecognised, it defaults to "user" (least privileged).
func roleFromClaim(s string) string {
	switch s {
	case RoleAdmin, RoleManager:
		return s
	default:
		return RoleUser
	}
}
