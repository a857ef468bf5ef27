package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"mavi-fit-game/internal/domain"
)

const actorKey = "actor"

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (domain.Actor, error)
}

// requireAuth resolves the bearer token into the request's actor.
func requireAuth(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return domain.ErrUnauthorized
		}
		actor, err := tokens.Parse(raw)
		if err != nil {
			return domain.ErrUnauthorized
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// requireRole lets only the listed roles through.
func requireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := actorOf(c)
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return domain.ErrForbidden
	}
}

func actorOf(c *fiber.Ctx) domain.Actor {
	actor, _ := c.Locals(actorKey).(domain.Actor)
	return actor
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
