package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing token"))
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid claims"))
	}

	ctx.Locals("user_id", claims["user_id"])
	if role, exists := claims["role"]; exists {
		ctx.Locals("role", role)
	}
	return ctx.Next()
}

// RequireAdmin gates routes behind the admin role claim. Must run after
// JwtMiddleware.
func RequireAdmin(ctx *fiber.Ctx) error {
	if role, _ := ctx.Locals("role").(string); role != "admin" {
		return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(403, "Admin access required"))
	}
	return ctx.Next()
}
