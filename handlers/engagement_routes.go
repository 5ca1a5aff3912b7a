// handlers/engagement_routes.go
package handlers

import (
	"movie-review-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupEngagementRoutes wires notifications, points and invite codes.
func SetupEngagementRoutes(app *fiber.App, notificationService *services.NotificationService, pointsService *services.PointsService, inviteService *services.InviteService) {
	app.Get("/notifications/:userId", notificationService.List)
	app.Get("/notifications/unread-count/:userId", notificationService.UnreadCount)
	app.Post("/notifications/read", notificationService.MarkRead)

	app.Get("/points/summary/:userId", pointsService.GetPointsSummary)

	app.Get("/invite/:userId", inviteService.GetInviteCode)
	app.Post("/invite/redeem", inviteService.RedeemInviteCode)
	app.Post("/invite/:userId", inviteService.CreateInviteCode)
}
