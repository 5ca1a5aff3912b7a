package models

import "time"

// Notification is one per-recipient inbox entry. Rows are written by
// whatever action triggers them (follow, support, ...) and mutated only
// by the mark-as-read flow, which is one-directional — there is no unread.
type Notification struct {
	ID            string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	RecipientID   string `gorm:"index;not null" json:"recipient_id"`
	TriggeredByID string `json:"triggered_by_id"`
	Type          string `gorm:"size:30" json:"type"` // follow, support, review, referral
	EntityID      string `json:"entity_id"`           // review ID, support ID, user ID, ...
	Message       string `json:"message"`
	IsRead        bool   `gorm:"default:false;index" json:"is_read"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// Notification types
const (
	NotificationTypeFollow   = "follow"
	NotificationTypeSupport  = "support"
	NotificationTypeReview   = "review"
	NotificationTypeReferral = "referral"
)
