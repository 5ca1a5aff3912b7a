package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the canonical identity record for a wallet-authenticated user.
// Created on first authenticated request forwarded by the Gateway; never
// hard-deleted (soft delete only, to keep review/points history intact).
type User struct {
	ID            string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	WalletAddress string `gorm:"uniqueIndex;not null" json:"wallet_address"` // always stored lowercase
	Username      string `gorm:"uniqueIndex;not null" json:"username"`

	DiscordUsername   *string `json:"discord_username,omitempty"`
	TwitterHandle     *string `json:"twitter_handle,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`

	IsAdmin              bool       `gorm:"default:false" json:"is_admin"`
	GuidelinesAcceptedAt *time.Time `json:"guidelines_accepted_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
