package models

import "time"

type Category string

const (
	CategoryGeneral     Category = "Général"
	CategoryStrategy    Category = "Stratégie"
	CategoryCollection  Category = "Collection"
	CategoryCompetitive Category = "Compétitif"
	CategoryEvent       Category = "Événement"
)

// Categories lists the allowed categories in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryStrategy,
	CategoryCollection,
	CategoryCompetitive,
	CategoryEvent,
}

// ParseCategory returns the matching category, falling back to CategoryGeneral.
func ParseCategory(value string) Category {
	for _, c := range Categories {
		if string(c) == value {
			return c
		}
	}
	return CategoryGeneral
}

type Discussion struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	UserID     uint64    `gorm:"not null;index" json:"user_id"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	Category   Category  `gorm:"type:varchar(50);not null" json:"category"`
	TagLine    *string   `gorm:"type:varchar(120)" json:"tag_line"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	ViewsCount uint64    `gorm:"not null;default:0" json:"views_count"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`

	// Relations
	User  User   `gorm:"foreignKey:UserID" json:"-"`
	Posts []Post `gorm:"foreignKey:DiscussionID;constraint:OnDelete:CASCADE" json:"-"`
}
