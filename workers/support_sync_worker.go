package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"movie-review-system/models"
	"movie-review-system/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfirmedSupport matches the JSON the payments service returns for each
// confirmed on-chain support transaction.
type ConfirmedSupport struct {
	TxHash      string    `json:"tx_hash"`
	FromUserID  string    `json:"from_user_id"`
	ReviewID    string    `json:"review_id"`
	Amount      string    `json:"amount"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// SupportSyncClient polls the payments service for supports confirmed
// on-chain outside the request path (e.g. submitted directly to the
// contract) and records them locally.
type SupportSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
	Points     *services.PointsService
	Notify     *services.NotificationService
}

func NewSupportSyncClient(db *gorm.DB, points *services.PointsService, notify *services.NotificationService) *SupportSyncClient {
	baseURL := os.Getenv("PAYMENTS_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("PAYMENTS_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("REVIEW_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("REVIEW_SERVICE_TOKEN environment variable is required for support sync")
	}

	return &SupportSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		Points:  points,
		Notify:  notify,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *SupportSyncClient) GetConfirmedSupports(ctx context.Context, since time.Time) ([]ConfirmedSupport, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/supports", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payments service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("payments service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Supports []ConfirmedSupport `json:"supports"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode payments service response: %w", err)
	}

	return response.Supports, nil
}

// PollSupports polls for confirmed support transactions and records the
// ones we haven't seen. tx_hash is the dedup key: the OnConflict DoNothing
// insert makes replays across poll windows harmless, and points plus the
// author notification are only issued when a row was actually inserted.
func PollSupports(ctx context.Context, client *SupportSyncClient, pollInterval time.Duration) {
	log.Println("Starting support payment polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Support polling stopped.")
			return
		case <-ticker.C:
			pollStart := time.Now().UTC()

			confirmed, err := client.GetConfirmedSupports(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling supports: %v", err)
				continue
			}

			if len(confirmed) == 0 {
				lastSyncTime = pollStart
				continue
			}
			log.Printf("📥 Received %d confirmed support(s) from payments service.", len(confirmed))

			failed := false
			for _, cs := range confirmed {
				if err := client.recordSupport(cs); err != nil {
					log.Printf("❌ Failed to record support %s: %v", cs.TxHash, err)
					failed = true
				}
			}

			// Do NOT advance lastSyncTime on failure — retry same window next tick
			if !failed {
				lastSyncTime = pollStart
			}
		}
	}
}

func (c *SupportSyncClient) recordSupport(cs ConfirmedSupport) error {
	var review models.Review
	if err := c.DB.First(&review, "id = ?", cs.ReviewID).Error; err != nil {
		return fmt.Errorf("review %s not found: %w", cs.ReviewID, err)
	}

	support := models.Support{
		ID:       uuid.NewString(),
		TxHash:   cs.TxHash,
		UserID:   cs.FromUserID,
		ReviewID: cs.ReviewID,
		Amount:   cs.Amount,
	}

	// Insert and award share one transaction: if the award fails the row is
	// rolled back too, so the retried poll window reattempts the whole
	// record instead of tripping over the dedup with the points lost.
	inserted := false
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}},
			DoNothing: true,
		}).Create(&support)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil // already recorded
		}
		inserted = true
		return c.Points.Award(tx, review.UserID, models.PointTypeSupportReceived, services.SupportReceivedPoints)
	})
	if err != nil || !inserted {
		return err
	}

	c.Notify.Notify(review.UserID, cs.FromUserID, models.NotificationTypeSupport, support.ID,
		"sent support for your review of "+review.MovieTitle)
	return nil
}
