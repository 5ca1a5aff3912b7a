package models

// Follow is one edge in the follower graph. The composite unique index
// makes a double-follow a constraint violation rather than a duplicate edge.
type Follow struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FollowerID string `gorm:"uniqueIndex:uk_follow_edge;not null" json:"follower_id"`
	FollowedID string `gorm:"uniqueIndex:uk_follow_edge;not null" json:"followed_id"`

	Timestamps
}
