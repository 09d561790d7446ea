package repository

import (
	"time"

	"github.com/caratemple/forum/internal/models"
)

// DiscussionSummary is a listing row.
type DiscussionSummary struct {
	ID         uint64
	Title      string
	Category   models.Category
	TagLine    *string
	Body       string
	ViewsCount uint64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Username   string
	PostsCount int64
}

// RepliesCount is the number of visible posts besides the root post.
func (s DiscussionSummary) RepliesCount() int64 {
	return repliesFromPosts(s.PostsCount)
}

// DiscussionDetail is a discussion joined with its author.
type DiscussionDetail struct {
	ID         uint64
	UserID     uint64
	Title      string
	Category   models.Category
	TagLine    *string
	Body       string
	ViewsCount uint64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Username   string
	PostsCount int64
}

func (d DiscussionDetail) RepliesCount() int64 {
	return repliesFromPosts(d.PostsCount)
}

// PostView is a post as shown in a thread.
type PostView struct {
	ID            uint64
	DiscussionID  uint64
	UserID        uint64
	Body          string
	IsRoot        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Username      string
	LikesCount    int64
	LikedByViewer bool
}

// LikeState is the outcome of a like toggle.
type LikeState struct {
	Liked      bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}

// UserActivity is a user row on the admin dashboard.
type UserActivity struct {
	ID               uint64
	Username         string
	Email            string
	IsAdmin          bool
	CreatedAt        time.Time
	DiscussionsCount int64
	PostsCount       int64
}

// PostActivity is a post row on the admin dashboard.
type PostActivity struct {
	ID              uint64
	DiscussionID    uint64
	DiscussionTitle string
	Body            string
	IsRoot          bool
	IsDeleted       bool
	CreatedAt       time.Time
	Username        string
}

// Stats holds the dashboard counters.
type Stats struct {
	Users       int64 `json:"users"`
	Discussions int64 `json:"discussions"`
	Posts       int64 `json:"posts"`
	Likes       int64 `json:"likes"`
}

func repliesFromPosts(posts int64) int64 {
	if posts <= 1 {
		return 0
	}
	return posts - 1
}
