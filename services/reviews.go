// services/reviews.go
package services

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"movie-review-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// DailyReviewCap is the maximum number of reviews a user may submit per
// calendar day.
const DailyReviewCap = 5

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

type ReviewService struct {
	DB       *gorm.DB
	Points   *PointsService
	Notify   *NotificationService
	Location *time.Location
}

func NewReviewService(db *gorm.DB, points *PointsService, notify *NotificationService) *ReviewService {
	// Day boundary defaults to the server-local clock; DAY_BOUNDARY_TZ pins
	// it to an explicit IANA zone so the limit doesn't silently follow
	// wherever the server happens to run.
	loc := time.Local
	if tz := os.Getenv("DAY_BOUNDARY_TZ"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			log.Printf("⚠️  Invalid DAY_BOUNDARY_TZ %q, falling back to server-local time: %v", tz, err)
		} else {
			loc = parsed
		}
	}
	return &ReviewService{DB: db, Points: points, Notify: notify, Location: loc}
}

// dayWindow returns [midnight, 23:59:59.999] of now's calendar day in loc.
func dayWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// CountToday counts the user's reviews in today's day window.
func (s *ReviewService) CountToday(userID string) (int64, error) {
	start, end := dayWindow(time.Now(), s.Location)
	var count int64
	err := s.DB.Model(&models.Review{}).
		Where("user_id = ? AND created_at BETWEEN ? AND ?", userID, start, end).
		Count(&count).Error
	return count, err
}

// GetDailyReviewCount returns today's review count for the user plus the
// raw remaining quota. remaining is deliberately unclamped (it goes
// negative past the cap) so callers can see overshoot; clamp for display
// only.
func (s *ReviewService) GetDailyReviewCount(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	count, err := s.CountToday(userID)
	if err != nil {
		log.Printf("DB Error counting today's reviews for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count reviews"})
	}

	return c.JSON(fiber.Map{
		"count":     count,
		"cap":       DailyReviewCap,
		"remaining": DailyReviewCap - count,
	})
}

// GetNumericID resolves a review's legacy 24-hex object identifier to its
// short display ID.
func (s *ReviewService) GetNumericID(c *fiber.Ctx) error {
	objectID := c.Params("objectId")
	if !objectIDPattern.MatchString(objectID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review ID"})
	}

	var review models.Review
	if err := s.DB.Select("numeric_id").Where("id = ?", strings.ToLower(objectID)).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Review not found"})
		}
		log.Printf("DB Error resolving review %s: %v", objectID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve review"})
	}

	return c.JSON(fiber.Map{"numericId": review.NumericID})
}

// CreateReview submits a new review for the authenticated user: enforces
// the daily cap, allocates the display ID, issues points (first_review once,
// daily_review always) and fans a notification out to followers.
func (s *ReviewService) CreateReview(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var req struct {
		MovieTitle string `json:"movieTitle"`
		Rating     int    `json:"rating"`
		Body       string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.MovieTitle) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Movie title is required"})
	}
	if req.Rating < 1 || req.Rating > 10 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Rating must be between 1 and 10"})
	}

	count, err := s.CountToday(userID)
	if err != nil {
		log.Printf("DB Error counting today's reviews for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count reviews"})
	}
	if count >= DailyReviewCap {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Daily review limit reached",
			"cap":   DailyReviewCap,
		})
	}

	review := models.Review{
		ID:         NewObjectID(),
		UserID:     userID,
		MovieTitle: strings.TrimSpace(req.MovieTitle),
		MovieSlug:  slug.Make(req.MovieTitle),
		Rating:     req.Rating,
		Body:       req.Body,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Display IDs are dense and human-readable; max+1 is good enough,
		// duplicates lose to the unique index and fail the transaction.
		var maxID int64
		if err := tx.Model(&models.Review{}).
			Select("COALESCE(MAX(numeric_id), 0)").
			Scan(&maxID).Error; err != nil {
			return err
		}
		review.NumericID = maxID + 1

		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		if _, err := s.Points.AwardOnce(tx, userID, models.PointTypeFirstReview, FirstReviewPoints); err != nil {
			return err
		}
		if err := s.Points.Award(tx, userID, models.PointTypeDailyReview, DailyReviewPoints); err != nil {
			return err
		}

		return s.Notify.NotifyFollowers(tx, userID, models.NotificationTypeReview, review.ID,
			"posted a new review of "+review.MovieTitle)
	})
	if err != nil {
		log.Printf("DB Error creating review for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create review"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "review": review})
}

// ListReviews returns the feed, newest first, paginated.
func (s *ReviewService) ListReviews(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := s.DB.Model(&models.Review{})
	if userID := c.Query("userId"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("DB Error counting reviews: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch reviews"})
	}

	var reviews []models.Review
	if err := query.Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&reviews).Error; err != nil {
		log.Printf("DB Error fetching reviews: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch reviews"})
	}

	return c.JSON(fiber.Map{
		"reviews":     reviews,
		"page":        page,
		"size":        size,
		"total_items": total,
	})
}

// NewObjectID builds a 24-hex-char identifier in the legacy document-store
// format: 4-byte big-endian unix timestamp followed by 8 random bytes.
func NewObjectID() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(b[4:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
