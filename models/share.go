package models

import "time"

// Share is a repost of someone else's post. The (user, post) pair is unique,
// and the interaction layer rejects shares of the user's own posts.
type Share struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_share_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_share_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
}
