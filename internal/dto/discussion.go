package dto

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/repository"
	"github.com/caratemple/forum/internal/utils"
)

const excerptLength = 180

// DiscussionListItemDTO represents a discussion in the home listing
type DiscussionListItemDTO struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Category     models.Category `json:"category"`
	TagLine      *string         `json:"tag_line"`
	Excerpt      string          `json:"excerpt"`
	Username     string          `json:"username"`
	RepliesCount int64           `json:"replies_count"`
	ViewsCount   uint64          `json:"views_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	RelativeTime string          `json:"relative_time"`
	URL          string          `json:"url"`
}

// SearchResultDTO represents a discussion in instant search results
type SearchResultDTO struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Category     models.Category `json:"category"`
	Username     string          `json:"username"`
	RepliesCount int64           `json:"replies_count"`
	ViewsCount   uint64          `json:"views_count"`
	CreatedAt    time.Time       `json:"created_at"`
	URL          string          `json:"url"`
}

// DiscussionDTO represents the discussion shown on its thread page
type DiscussionDTO struct {
	ID           uint64          `json:"id"`
	UserID       uint64          `json:"user_id"`
	Title        string          `json:"title"`
	Category     models.Category `json:"category"`
	TagLine      *string         `json:"tag_line"`
	Body         string          `json:"body"`
	Username     string          `json:"username"`
	ViewsCount   uint64          `json:"views_count"`
	RepliesCount int64           `json:"replies_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	RelativeTime string          `json:"relative_time"`
}

// PostTokensDTO holds the CSRF tokens behind a post's buttons. The posts of
// a thread share them.
type PostTokensDTO struct {
	Like   string `json:"like,omitempty"`
	Delete string `json:"delete,omitempty"`
}

// PostDTO represents a post in a thread
type PostDTO struct {
	ID           uint64         `json:"id"`
	UserID       uint64         `json:"user_id"`
	Username     string         `json:"username"`
	Body         string         `json:"body"`
	IsRoot       bool           `json:"is_root"`
	LikesCount   int64          `json:"likes_count"`
	IsLiked      bool           `json:"is_liked"`
	CreatedAt    time.Time      `json:"created_at"`
	RelativeTime string         `json:"relative_time"`
	Tokens       *PostTokensDTO `json:"tokens,omitempty"`
}

// ReplyDTO represents a freshly created reply
type ReplyDTO struct {
	ID           uint64    `json:"id"`
	Body         string    `json:"body"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"created_at"`
	RelativeTime string    `json:"relative_time"`
}

// DiscussionURL is the thread page address of a discussion
func DiscussionURL(baseURL string, id uint64) string {
	return strings.TrimRight(baseURL, "/") + "/discussion?id=" + strconv.FormatUint(id, 10)
}

// ToDiscussionListItemDTO converts a listing row
func ToDiscussionListItemDTO(s repository.DiscussionSummary, baseURL string, now time.Time) DiscussionListItemDTO {
	return DiscussionListItemDTO{
		ID:           s.ID,
		Title:        s.Title,
		Category:     s.Category,
		TagLine:      s.TagLine,
		Excerpt:      excerpt(s.Body),
		Username:     s.Username,
		RepliesCount: s.RepliesCount(),
		ViewsCount:   s.ViewsCount,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		RelativeTime: utils.FormatRelativeTime(s.UpdatedAt, now),
		URL:          DiscussionURL(baseURL, s.ID),
	}
}

// ToDiscussionListDTO converts listing rows, never returning nil
func ToDiscussionListDTO(summaries []repository.DiscussionSummary, baseURL string, now time.Time) []DiscussionListItemDTO {
	items := make([]DiscussionListItemDTO, len(summaries))
	for i, s := range summaries {
		items[i] = ToDiscussionListItemDTO(s, baseURL, now)
	}
	return items
}

// ToSearchResultsDTO converts search rows, never returning nil
func ToSearchResultsDTO(summaries []repository.DiscussionSummary, baseURL string) []SearchResultDTO {
	results := make([]SearchResultDTO, len(summaries))
	for i, s := range summaries {
		results[i] = SearchResultDTO{
			ID:           s.ID,
			Title:        s.Title,
			Category:     s.Category,
			Username:     s.Username,
			RepliesCount: s.RepliesCount(),
			ViewsCount:   s.ViewsCount,
			CreatedAt:    s.CreatedAt,
			URL:          DiscussionURL(baseURL, s.ID),
		}
	}
	return results
}

// ToDiscussionDTO converts a discussion detail
func ToDiscussionDTO(d repository.DiscussionDetail, now time.Time) DiscussionDTO {
	return DiscussionDTO{
		ID:           d.ID,
		UserID:       d.UserID,
		Title:        d.Title,
		Category:     d.Category,
		TagLine:      d.TagLine,
		Body:         d.Body,
		Username:     d.Username,
		ViewsCount:   d.ViewsCount,
		RepliesCount: d.RepliesCount(),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		RelativeTime: utils.FormatRelativeTime(d.CreatedAt, now),
	}
}

// ToPostDTO converts a thread post
func ToPostDTO(p repository.PostView, now time.Time) PostDTO {
	return PostDTO{
		ID:           p.ID,
		UserID:       p.UserID,
		Username:     p.Username,
		Body:         p.Body,
		IsRoot:       p.IsRoot,
		LikesCount:   p.LikesCount,
		IsLiked:      p.LikedByViewer,
		CreatedAt:    p.CreatedAt,
		RelativeTime: utils.FormatRelativeTime(p.CreatedAt, now),
	}
}

// ToReplyDTO converts a created reply whose author is loaded
func ToReplyDTO(post models.Post, now time.Time) ReplyDTO {
	return ReplyDTO{
		ID:           post.ID,
		Body:         post.Body,
		Username:     post.User.Username,
		CreatedAt:    post.CreatedAt,
		RelativeTime: utils.FormatRelativeTime(post.CreatedAt, now),
	}
}

func excerpt(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(body) <= excerptLength {
		return body
	}
	runes := []rune(body)
	return strings.TrimSpace(string(runes[:excerptLength])) + "…"
}
