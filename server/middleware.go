package server

import (
	"strings"

	"chatline/auth"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// protect rejects requests without a valid bearer token and stores the
// parsed claims in the request locals.
func protect(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{
			Error: "missing bearer token",
		})
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{
			Error: "invalid token",
		})
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// claimsFrom returns the claims stored by protect. Only callable behind
// the middleware.
func claimsFrom(c *fiber.Ctx) *auth.Claims {
	return c.Locals(claimsKey).(*auth.Claims)
}
