// services/supports.go
package services

import (
	"errors"
	"log"

	"movie-review-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupportService struct {
	DB     *gorm.DB
	Points *PointsService
	Notify *NotificationService
}

func NewSupportService(db *gorm.DB, points *PointsService, notify *NotificationService) *SupportService {
	return &SupportService{DB: db, Points: points, Notify: notify}
}

// CreateSupport records an on-chain payment pledge against a review. The
// transaction itself is verified upstream; here we only persist the pledge,
// notify the review's author and issue their support_received points.
// Replays of the same txHash are rejected by the unique index.
func (s *SupportService) CreateSupport(c *fiber.Ctx) error {
	var req struct {
		TxHash   string `json:"txHash"`
		UserID   string `json:"userId"`
		ReviewID string `json:"reviewId"`
		Amount   string `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.TxHash == "" || req.UserID == "" || req.ReviewID == "" || req.Amount == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "txHash, userId, reviewId and amount are required"})
	}

	var review models.Review
	if err := s.DB.First(&review, "id = ?", req.ReviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Review not found"})
		}
		log.Printf("DB Error loading review %s: %v", req.ReviewID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record support"})
	}

	support := models.Support{
		ID:       uuid.NewString(),
		TxHash:   req.TxHash,
		UserID:   req.UserID,
		ReviewID: req.ReviewID,
		Amount:   req.Amount,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&support).Error; err != nil {
			return err
		}
		return s.Points.Award(tx, review.UserID, models.PointTypeSupportReceived, SupportReceivedPoints)
	})
	if err != nil {
		var prior models.Support
		if s.DB.Where("tx_hash = ?", req.TxHash).First(&prior).Error == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Support already recorded for this transaction"})
		}
		log.Printf("DB Error recording support %s: %v", req.TxHash, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record support"})
	}

	s.Notify.Notify(review.UserID, req.UserID, models.NotificationTypeSupport, support.ID,
		"sent support for your review of "+review.MovieTitle)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "support": support})
}

// ListSupports returns the supports recorded against one review.
func (s *SupportService) ListSupports(c *fiber.Ctx) error {
	reviewID := c.Params("reviewId")
	if !objectIDPattern.MatchString(reviewID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review ID"})
	}

	var supports []models.Support
	if err := s.DB.Where("review_id = ?", reviewID).
		Order("created_at DESC").
		Find(&supports).Error; err != nil {
		log.Printf("DB Error fetching supports for review %s: %v", reviewID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch supports"})
	}

	return c.JSON(fiber.Map{"supports": supports})
}
