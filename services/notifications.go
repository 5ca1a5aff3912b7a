// services/notifications.go
package services

import (
	"log"

	"movie-review-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// MarkRead flips is_read on the given notifications, but only those owned
// by the requesting user — the recipient check lives in the UPDATE predicate
// so ID guessing can never touch someone else's inbox. Idempotent: already
// read or foreign IDs match zero rows and that is still a success.
func (s *NotificationService) MarkRead(c *fiber.Ctx) error {
	var req struct {
		NotificationIDs []string `json:"notificationIds"`
		UserID          string   `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil {
		// Covers notificationIds sent as a non-array too.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}
	if req.NotificationIDs == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if len(req.NotificationIDs) > 0 {
		result := s.DB.Model(&models.Notification{}).
			Where("id IN ? AND recipient_id = ?", req.NotificationIDs, req.UserID).
			Update("is_read", true)
		if result.Error != nil {
			log.Printf("DB Error marking notifications read for %s: %v", req.UserID, result.Error)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark notifications read"})
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

// UnreadCount returns how many unread notifications the recipient has.
func (s *NotificationService) UnreadCount(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	var count int64
	if err := s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		log.Printf("DB Error counting unread notifications for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count notifications"})
	}

	return c.JSON(fiber.Map{"unreadCount": count})
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	var notifications []models.Notification
	if err := s.DB.Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		log.Printf("DB Error fetching notifications for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

// Notify writes one inbox row for the recipient. Failures are logged and
// swallowed — a lost notification never fails the action that triggered it.
func (s *NotificationService) Notify(recipientID, triggeredByID, nType, entityID, message string) {
	n := models.Notification{
		ID:            uuid.NewString(),
		RecipientID:   recipientID,
		TriggeredByID: triggeredByID,
		Type:          nType,
		EntityID:      entityID,
		Message:       message,
	}
	if err := s.DB.Create(&n).Error; err != nil {
		log.Printf("Failed to create %s notification for %s: %v", nType, recipientID, err)
	}
}

// NotifyFollowers fans one message out to everyone following the actor.
func (s *NotificationService) NotifyFollowers(db *gorm.DB, actorID, nType, entityID, message string) error {
	var follows []models.Follow
	if err := db.Where("followed_id = ?", actorID).Find(&follows).Error; err != nil {
		return err
	}
	if len(follows) == 0 {
		return nil
	}

	notifications := make([]models.Notification, len(follows))
	for i, f := range follows {
		notifications[i] = models.Notification{
			ID:            uuid.NewString(),
			RecipientID:   f.FollowerID,
			TriggeredByID: actorID,
			Type:          nType,
			EntityID:      entityID,
			Message:       message,
		}
	}
	return db.Create(&notifications).Error
}
