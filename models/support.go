package models

import "time"

// Support is a recorded on-chain payment pledge from a user to a review's
// author. Append-only; the chain transaction itself is verified upstream
// (trusted input here), we only record the pledge. TxHash is unique so a
// replayed webhook or double-submit cannot record the same payment twice.
type Support struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TxHash   string `gorm:"uniqueIndex;not null" json:"tx_hash"`
	UserID   string `gorm:"index;not null" json:"user_id"`
	ReviewID string `gorm:"index;size:24;not null" json:"review_id"`
	Amount   string `gorm:"type:decimal(38,18);not null" json:"amount"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
