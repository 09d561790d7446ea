package dto

import (
	"time"

	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/repository"
)

// AdminUserDTO represents a user row on the dashboard
type AdminUserDTO struct {
	ID               uint64    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	IsAdmin          bool      `json:"is_admin"`
	CreatedAt        time.Time `json:"created_at"`
	DiscussionsCount int64     `json:"discussions_count"`
	PostsCount       int64     `json:"posts_count"`
	IsSelf           bool      `json:"is_self"`
	CSRFKey          string    `json:"csrf_key"`
	CSRFToken        string    `json:"csrf_token"`
}

// AdminDiscussionDTO represents a discussion row on the dashboard
type AdminDiscussionDTO struct {
	ID         uint64          `json:"id"`
	Title      string          `json:"title"`
	Category   models.Category `json:"category"`
	Username   string          `json:"username"`
	PostsCount int64           `json:"posts_count"`
	CreatedAt  time.Time       `json:"created_at"`
	URL        string          `json:"url"`
	CSRFKey    string          `json:"csrf_key"`
	CSRFToken  string          `json:"csrf_token"`
}

// AdminPostDTO represents a post row on the dashboard
type AdminPostDTO struct {
	ID              uint64    `json:"id"`
	DiscussionID    uint64    `json:"discussion_id"`
	DiscussionTitle string    `json:"discussion_title"`
	Username        string    `json:"username"`
	Excerpt         string    `json:"excerpt"`
	IsRoot          bool      `json:"is_root"`
	IsDeleted       bool      `json:"is_deleted"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	CSRFKey         string    `json:"csrf_key,omitempty"`
	CSRFToken       string    `json:"csrf_token,omitempty"`
}

// ToAdminUserDTO converts a user activity row
func ToAdminUserDTO(u repository.UserActivity, actorID uint64) AdminUserDTO {
	return AdminUserDTO{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		IsAdmin:          u.IsAdmin,
		CreatedAt:        u.CreatedAt,
		DiscussionsCount: u.DiscussionsCount,
		PostsCount:       u.PostsCount,
		IsSelf:           u.ID == actorID,
	}
}

// ToAdminDiscussionDTO converts a discussion summary
func ToAdminDiscussionDTO(s repository.DiscussionSummary, baseURL string) AdminDiscussionDTO {
	return AdminDiscussionDTO{
		ID:         s.ID,
		Title:      s.Title,
		Category:   s.Category,
		Username:   s.Username,
		PostsCount: s.PostsCount,
		CreatedAt:  s.CreatedAt,
		URL:        DiscussionURL(baseURL, s.ID),
	}
}

// ToAdminPostDTO converts a post activity row
func ToAdminPostDTO(p repository.PostActivity) AdminPostDTO {
	status := "Actif"
	switch {
	case p.IsDeleted:
		status = "Supprimé"
	case p.IsRoot:
		status = "Message initial"
	}

	return AdminPostDTO{
		ID:              p.ID,
		DiscussionID:    p.DiscussionID,
		DiscussionTitle: p.DiscussionTitle,
		Username:        p.Username,
		Excerpt:         excerpt(p.Body),
		IsRoot:          p.IsRoot,
		IsDeleted:       p.IsDeleted,
		Status:          status,
		CreatedAt:       p.CreatedAt,
	}
}
