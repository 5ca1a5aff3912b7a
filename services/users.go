// services/users.go
package services

import (
	"errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"movie-review-system/models"
	"movie-review-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	DB     *gorm.DB
	Points *PointsService
	Notify *NotificationService
}

func NewUserService(db *gorm.DB, points *PointsService, notify *NotificationService) *UserService {
	return &UserService{DB: db, Points: points, Notify: notify}
}

// activityScore is a saturating weighted sum over a user's raw counts.
// The cap at 100 normalizes the value for display; it is not a ceiling on
// underlying activity, so two "100" users can differ wildly.
func activityScore(reviews, supports, referrals int64) int64 {
	score := reviews*5 + supports*2 + referrals*10
	if score > 100 {
		return 100
	}
	return score
}

// UserSummary is one row of the public user directory.
type UserSummary struct {
	ID                string  `json:"id"`
	Username          string  `json:"username"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	Reviews           int64   `json:"reviews"`
	Supports          int64   `json:"supports"`
	Referrals         int64   `json:"referrals"`
	ActivityScore     int64   `json:"activityScore"`
}

// ListUsers returns the directory ordered by review count descending, each
// row carrying raw counts plus the derived activity score.
func (s *UserService) ListUsers(c *fiber.Ctx) error {
	var rows []UserSummary
	if err := s.DB.Raw(`
		SELECT u.id, u.username, u.profile_picture_url,
		       (SELECT COUNT(*) FROM reviews r WHERE r.user_id = u.id) AS reviews,
		       (SELECT COUNT(*) FROM supports sp
		          INNER JOIN reviews r2 ON r2.id = sp.review_id
		          WHERE r2.user_id = u.id) AS supports,
		       (SELECT COUNT(*) FROM referrals rf
		          WHERE rf.referrer_id = u.id AND rf.deleted_at IS NULL) AS referrals
		FROM users u
		WHERE u.deleted_at IS NULL
		ORDER BY reviews DESC
	`).Scan(&rows).Error; err != nil {
		log.Printf("DB Error listing users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list users"})
	}

	for i := range rows {
		rows[i].ActivityScore = activityScore(rows[i].Reviews, rows[i].Supports, rows[i].Referrals)
	}

	return c.JSON(fiber.Map{"users": rows})
}

// Me returns the authenticated user's own profile, creating the record on
// first sight of a gateway-authenticated wallet.
func (s *UserService) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	wallet, _ := c.Locals("wallet_address").(string)
	if userID == "" && wallet == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var user models.User
	query := s.DB
	if userID != "" {
		query = query.Where("id = ?", userID)
	} else {
		query = query.Where("wallet_address = ?", strings.ToLower(wallet))
	}

	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) && wallet != "" {
			created, createErr := s.ensureUser(userID, wallet)
			if createErr != nil {
				log.Printf("DB Error creating user for wallet %s: %v", wallet, createErr)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load profile"})
			}
			return c.JSON(created)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
		}
		log.Printf("DB Error loading profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load profile"})
	}

	return c.JSON(user)
}

// ensureUser creates the identity record for a wallet on first sight.
// The Gateway's user ID is what every write path keys on (reviews, points,
// follows), so when forwarded it must become the primary key — a locally
// minted ID would orphan the user's activity from their directory row.
// Username defaults to a short wallet-derived handle the user can change.
func (s *UserService) ensureUser(userID, wallet string) (*models.User, error) {
	wallet = strings.ToLower(wallet)
	if userID == "" {
		userID = uuid.NewString()
	}
	user := models.User{
		ID:            userID,
		WalletAddress: wallet,
		Username:      "user_" + wallet[max(0, len(wallet)-8):],
	}
	if err := s.DB.Where("wallet_address = ?", wallet).FirstOrCreate(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertDiscord attaches a Discord username to the user owning the wallet.
// The wallet is matched case-insensitively since clients send checksummed
// addresses.
func (s *UserService) UpsertDiscord(c *fiber.Ctx) error {
	var req struct {
		DiscordUsername   string `json:"discordUsername"`
		UserWalletAddress string `json:"userWalletAddress"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.DiscordUsername == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Discord username is required"})
	}
	if req.UserWalletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Wallet address is required"})
	}

	var user models.User
	if err := s.DB.Where("wallet_address = LOWER(?)", req.UserWalletAddress).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("DB Error loading user for wallet %s: %v", req.UserWalletAddress, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update Discord username"})
	}

	user.DiscordUsername = &req.DiscordUsername
	if err := s.DB.Save(&user).Error; err != nil {
		log.Printf("DB Error saving Discord username for %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update Discord username"})
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// AcceptGuidelines stamps the community-guidelines acknowledgement and
// issues the one-time guidelines points.
func (s *UserService) AcceptGuidelines(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	now := time.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Points are only ever issued against an existing user row.
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		if user.GuidelinesAcceptedAt == nil {
			if err := tx.Model(&user).Update("guidelines_accepted_at", now).Error; err != nil {
				return err
			}
		}
		_, err := s.Points.AwardOnce(tx, userID, models.PointTypeGuidelines, GuidelinesPoints)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("DB Error accepting guidelines for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record acknowledgement"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// UpdateProfile applies partial profile edits for the authenticated user.
func (s *UserService) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var req struct {
		Username      *string `json:"username"`
		TwitterHandle *string `json:"twitterHandle"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if len(name) < 3 || len(name) > 32 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username must be 3-32 characters"})
		}
		user.Username = name
	}
	if req.TwitterHandle != nil {
		user.TwitterHandle = req.TwitterHandle
	}

	if err := s.DB.Save(&user).Error; err != nil {
		log.Printf("DB Error updating profile for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// UploadProfilePicture stores a new avatar in R2 and records its public URL.
func (s *UserService) UploadProfilePicture(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Picture file is required"})
	}
	if !utils.IsAllowedImage(fileHeader) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported image type"})
	}

	key := "avatars/" + userID + filepath.Ext(fileHeader.Filename)
	url, err := utils.UploadFileToR2(fileHeader, key)
	if err != nil {
		log.Printf("R2 upload failed for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload picture"})
	}

	if err := s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("profile_picture_url", url).Error; err != nil {
		log.Printf("DB Error saving avatar URL for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save picture"})
	}

	return c.JSON(fiber.Map{"success": true, "profile_picture_url": url})
}

// Follow adds an edge from the authenticated user to the target and
// notifies them. Double-follows bounce off the unique edge index.
func (s *UserService) Follow(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var req struct {
		FollowedID string `json:"followedId"`
	}
	if err := c.BodyParser(&req); err != nil || req.FollowedID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Followed user ID is required"})
	}
	if req.FollowedID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot follow yourself"})
	}

	follow := models.Follow{
		ID:         uuid.NewString(),
		FollowerID: userID,
		FollowedID: req.FollowedID,
	}
	if err := s.DB.Create(&follow).Error; err != nil {
		var existing models.Follow
		if s.DB.Where("follower_id = ? AND followed_id = ?", userID, req.FollowedID).
			First(&existing).Error == nil {
			return c.JSON(fiber.Map{"success": true}) // already following
		}
		log.Printf("DB Error creating follow %s -> %s: %v", userID, req.FollowedID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to follow user"})
	}

	s.Notify.Notify(req.FollowedID, userID, models.NotificationTypeFollow, userID, "started following you")

	return c.JSON(fiber.Map{"success": true})
}

// Unfollow removes the edge; removing a missing edge is a no-op success.
func (s *UserService) Unfollow(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var req struct {
		FollowedID string `json:"followedId"`
	}
	if err := c.BodyParser(&req); err != nil || req.FollowedID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Followed user ID is required"})
	}

	if err := s.DB.Unscoped().
		Where("follower_id = ? AND followed_id = ?", userID, req.FollowedID).
		Delete(&models.Follow{}).Error; err != nil {
		log.Printf("DB Error deleting follow %s -> %s: %v", userID, req.FollowedID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unfollow user"})
	}

	return c.JSON(fiber.Map{"success": true})
}
