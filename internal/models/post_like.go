package models

import "time"

// PostLike records that a user liked a post. The pair is the primary key, so
// a user likes a given post at most once.
type PostLike struct {
	PostID    uint64    `gorm:"primarykey" json:"post_id"`
	UserID    uint64    `gorm:"primarykey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Post Post `gorm:"foreignKey:PostID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
