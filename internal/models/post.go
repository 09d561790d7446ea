package models

import "time"

type Post struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	DiscussionID uint64    `gorm:"not null;index" json:"discussion_id"`
	UserID       uint64    `gorm:"not null;index" json:"user_id"`
	Body         string    `gorm:"type:text;not null" json:"body"`
	IsRoot       bool      `gorm:"not null;default:false" json:"is_root"`
	IsDeleted    bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	User       User       `gorm:"foreignKey:UserID" json:"-"`
	Discussion Discussion `gorm:"foreignKey:DiscussionID" json:"-"`
	Likes      []PostLike `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Post) TableName() string {
	return "discussion_posts"
}
