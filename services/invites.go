// services/invites.go
package services

import (
	"errors"
	"log"
	"math/rand"
	"time"

	"movie-review-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InviteService struct {
	DB     *gorm.DB
	Points *PointsService
	Notify *NotificationService
}

func NewInviteService(db *gorm.DB, points *PointsService, notify *NotificationService) *InviteService {
	return &InviteService{DB: db, Points: points, Notify: notify}
}

const (
	inviteCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	inviteCodeLength   = 8

	// Collision odds are ~1/36^8 per attempt; a handful of retries against
	// the unique index is plenty.
	inviteCodeMaxAttempts = 5
)

// GenerateInviteCode returns a random 8-character code over [0-9A-Z].
// It does not check uniqueness — callers persist against the unique index
// and retry on collision.
func GenerateInviteCode() string {
	b := make([]byte, inviteCodeLength)
	for i := range b {
		b[i] = inviteCodeAlphabet[rand.Intn(len(inviteCodeAlphabet))]
	}
	return string(b)
}

// GetInviteCode returns the user's invite code, or a null code with a hint
// message when they haven't minted one yet.
func (s *InviteService) GetInviteCode(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	var invite models.InviteCode
	if err := s.DB.Where("user_id = ?", userID).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"code": nil, "message": "No invite code yet"})
		}
		log.Printf("DB Error fetching invite code for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch invite code"})
	}

	return c.JSON(fiber.Map{"code": invite.Code, "message": "OK"})
}

// CreateInviteCode mints an invite code for the user if they have none.
// Idempotent: a second call returns the existing code.
func (s *InviteService) CreateInviteCode(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	var existing models.InviteCode
	err := s.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{"code": existing.Code, "message": "Already minted"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("DB Error checking invite code for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mint invite code"})
	}

	for attempt := 0; attempt < inviteCodeMaxAttempts; attempt++ {
		invite := models.InviteCode{
			ID:     uuid.NewString(),
			UserID: userID,
			Code:   GenerateInviteCode(),
		}
		if err := s.DB.Create(&invite).Error; err != nil {
			// Unique index hit: either a code collision (retry with a fresh
			// code) or a concurrent mint for the same user (return theirs).
			if s.DB.Where("user_id = ?", userID).First(&existing).Error == nil {
				return c.JSON(fiber.Map{"code": existing.Code, "message": "Already minted"})
			}
			continue
		}
		return c.JSON(fiber.Map{"code": invite.Code, "message": "OK"})
	}

	log.Printf("Failed to mint a unique invite code for %s after %d attempts", userID, inviteCodeMaxAttempts)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mint invite code"})
}

// RedeemInviteCode links the redeeming user to the code's owner and awards
// referral points to the owner. A user can only ever be referred once.
func (s *InviteService) RedeemInviteCode(c *fiber.Ctx) error {
	var req struct {
		Code   string `json:"code"`
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Code == "" || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Code and user ID are required"})
	}

	var invite models.InviteCode
	if err := s.DB.Where("code = ?", req.Code).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invite code not found"})
		}
		log.Printf("DB Error looking up invite code %s: %v", req.Code, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to redeem invite code"})
	}

	if invite.UserID == req.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot redeem your own invite code"})
	}

	now := time.Now()
	referral := models.Referral{
		ID:            uuid.NewString(),
		ReferrerID:    invite.UserID,
		ReferredID:    req.UserID,
		CodeUsed:      invite.Code,
		PointsAwarded: ReferralPoints,
		AwardedAt:     &now,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&referral).Error; err != nil {
			return err
		}
		return s.Points.Award(tx, invite.UserID, models.PointTypeReferral, ReferralPoints)
	})
	if err != nil {
		// Unique index on referred_id: this user was already referred.
		var prior models.Referral
		if s.DB.Where("referred_id = ?", req.UserID).First(&prior).Error == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User already redeemed an invite code"})
		}
		log.Printf("DB Error redeeming invite code %s for %s: %v", req.Code, req.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to redeem invite code"})
	}

	s.Notify.Notify(invite.UserID, req.UserID, models.NotificationTypeReferral, referral.ID,
		"Someone joined with your invite code")

	return c.JSON(fiber.Map{"success": true, "referral": referral})
}
