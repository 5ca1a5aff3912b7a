package models

// InviteCode associates a user with their referral code. A user owns at
// most one active code; both columns are unique so a code can never be
// shared and a user can never mint twice.
type InviteCode struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`
	Code   string `gorm:"uniqueIndex;size:8;not null" json:"code"`

	Timestamps
}
