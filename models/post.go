package models

import "time"

// Post represents a feed post created by a user.
//
// LikeCount, ShareCount and CommentCount are denormalized aggregates of the
// live Like/Share/Comment rows referencing this post. They are adjusted only
// inside the same transaction that creates or deletes the interaction row,
// never set directly by clients.
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	LikeCount    uint      `gorm:"not null;default:0" json:"like_count"`
	ShareCount   uint      `gorm:"not null;default:0" json:"share_count"`
	CommentCount uint      `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	User         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments     []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
