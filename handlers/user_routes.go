// handlers/user_routes.go
package handlers

import (
	"movie-review-system/middleware"
	"movie-review-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	app.Get("/users", userService.ListUsers)

	// Session-derived routes: identity comes from the Gateway headers, not
	// from the path.
	securedGroup := app.Group("/user", middleware.UserContextMiddleware())

	securedGroup.Get("/me", userService.Me)
	securedGroup.Put("/profile", userService.UpdateProfile)
	securedGroup.Post("/profile-picture", userService.UploadProfilePicture)
	securedGroup.Post("/upsert-discord", userService.UpsertDiscord)
	securedGroup.Post("/guidelines", userService.AcceptGuidelines)
	securedGroup.Post("/follow", userService.Follow)
	securedGroup.Post("/unfollow", userService.Unfollow)
}
