// handlers/review_routes.go
package handlers

import (
	"movie-review-system/middleware"
	"movie-review-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupReviewRoutes(app *fiber.App, reviewService *services.ReviewService, supportService *services.SupportService) {
	app.Get("/reviews", reviewService.ListReviews)
	app.Get("/reviews/count", reviewService.GetDailyReviewCount)
	app.Get("/reviews/numeric-id/:objectId", reviewService.GetNumericID)
	app.Get("/reviews/:reviewId/supports", supportService.ListSupports)

	app.Post("/reviews", middleware.UserContextMiddleware(), reviewService.CreateReview)

	app.Post("/support", supportService.CreateSupport)
}
