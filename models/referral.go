package models

import "time"

// Referral records one redeemed invite code. ReferredID is unique — a user
// can only ever be referred once, no matter how many codes they try.
type Referral struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReferrerID string `gorm:"index;not null" json:"referrer_id"`
	ReferredID string `gorm:"uniqueIndex;not null" json:"referred_id"`

	CodeUsed      string     `gorm:"not null" json:"code_used"`
	PointsAwarded int64      `gorm:"default:0" json:"points_awarded"`
	AwardedAt     *time.Time `json:"awarded_at,omitempty"`

	Timestamps
}
