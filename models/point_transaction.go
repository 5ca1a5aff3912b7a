package models

import "time"

// PointTransaction is one append-only entry in the points ledger.
// A user's balance is always recomputed as the sum over their entries;
// there is no stored total and no decay or expiry.
//
// One-time types (first_review, referral, ...) must have at most one row
// per user. That invariant is enforced by the issuing side (see
// PointsService.AwardOnce), not by readers.
type PointTransaction struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"index:idx_point_tx_user;not null" json:"user_id"`
	Type   string `gorm:"index:idx_point_tx_user;not null" json:"type"`
	Points int64  `gorm:"not null" json:"points"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Point transaction types. One-time types award at most once per user.
const (
	PointTypeFirstReview     = "first_review"     // one-time
	PointTypeDailyReview     = "daily_review"     // repeatable
	PointTypeReferral        = "referral"         // repeatable (once per referred user)
	PointTypeSupportReceived = "support_received" // repeatable
	PointTypeGuidelines      = "guidelines"       // one-time
)
