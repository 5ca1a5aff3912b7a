// services/points.go
package services

import (
	"log"

	"movie-review-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PointsService struct {
	DB *gorm.DB
}

func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{DB: db}
}

// Point amounts per reward-granting action (tunable via config/env later)
const (
	FirstReviewPoints     int64 = 10
	DailyReviewPoints     int64 = 2
	ReferralPoints        int64 = 25
	SupportReceivedPoints int64 = 5
	GuidelinesPoints      int64 = 3
)

// GetPointsSummary returns the user's total points plus a map of completed
// one-time tasks. A task counts as completed when at least one transaction
// of that type exists; types never seen are simply absent from the map.
func (s *PointsService) GetPointsSummary(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID is required"})
	}

	var txs []models.PointTransaction
	if err := s.DB.Where("user_id = ?", userID).Find(&txs).Error; err != nil {
		log.Printf("DB Error fetching point transactions for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch points"})
	}

	var total int64
	completed := map[string]bool{}
	for _, tx := range txs {
		total += tx.Points
		completed[tx.Type] = true
	}

	return c.JSON(fiber.Map{
		"ok":             true,
		"totalPoints":    total,
		"completedTasks": completed,
	})
}

// Award appends a point transaction for a repeatable action.
func (s *PointsService) Award(db *gorm.DB, userID, txType string, points int64) error {
	tx := models.PointTransaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   txType,
		Points: points,
	}
	return db.Create(&tx).Error
}

// AwardOnce appends a point transaction only if the user has no transaction
// of that type yet. Returns true when points were actually issued. Keeps the
// "presence of type == task completed" reading of the ledger sound for
// one-time task types.
func (s *PointsService) AwardOnce(db *gorm.DB, userID, txType string, points int64) (bool, error) {
	tx := models.PointTransaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   txType,
		Points: points,
	}
	res := db.Where("user_id = ? AND type = ?", userID, txType).FirstOrCreate(&tx)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
