package repository

import (
	"errors"

	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/utils"
)

var (
	// ErrNotOwner is returned when a mutation targets a discussion owned by another user.
	ErrNotOwner = errors.New("repository: discussion not owned by user")
	// ErrLastAdmin is returned when deleting the only remaining administrator.
	ErrLastAdmin = errors.New("repository: cannot delete the last administrator")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email, ignoring case
	FindByEmail(email string) (*models.User, error)

	// FindConflicts reports, in one query, whether the username or the email
	// is already used by another account, ignoring case
	FindConflicts(username, email string) (usernameTaken, emailTaken bool, err error)

	// ListRecent lists the newest accounts with their activity counters
	ListRecent(limit int) ([]UserActivity, error)

	// DeleteWithContent deletes a user with their discussions, posts and
	// likes. It refuses to delete the last administrator.
	DeleteWithContent(id uint64) error
}

// DiscussionRepository defines the interface for discussion data access
type DiscussionRepository interface {
	// CreateWithRootPost inserts the discussion and its root post atomically
	CreateWithRootPost(discussion *models.Discussion) error

	// FindByID finds a discussion by ID
	FindByID(id uint64) (*models.Discussion, error)

	// FindDetail loads a discussion with its author
	FindDetail(id uint64) (*DiscussionDetail, error)

	// UpdateWithRootPost updates an owned discussion and mirrors the body on
	// its root post
	UpdateWithRootPost(id, ownerID uint64, fields DiscussionFields) error

	// DeleteOwned deletes the discussion when ownerID owns it
	DeleteOwned(id, ownerID uint64) (bool, error)

	// Delete deletes a discussion with its posts and likes
	Delete(id uint64) (bool, error)

	// IncrementViews bumps the view counter without touching updated_at
	IncrementViews(id uint64) error

	// List lists discussion summaries, most recently active first
	List(filter DiscussionFilter) ([]DiscussionSummary, error)
}

// DiscussionFields holds the editable discussion columns
type DiscussionFields struct {
	Title    string
	Category models.Category
	TagLine  *string
	Body     string
}

// DiscussionFilter holds filtering options for listing discussions. Page
// takes precedence over Limit.
type DiscussionFilter struct {
	Query          string
	OrderByCreated bool
	Page           *utils.PaginationParams
	Limit          int
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	// CreateReply inserts a reply and touches its discussion. The author is
	// loaded into post.User.
	CreateReply(post *models.Post) error

	// FindByID finds a post by ID
	FindByID(id uint64) (*models.Post, error)

	// SoftDeleteOwned flags a visible, non-root post owned by userID as deleted
	SoftDeleteOwned(id, userID uint64) (bool, error)

	// SoftDelete flags a visible post as deleted
	SoftDelete(id uint64) (bool, error)

	// ListVisible lists the visible posts of a discussion, oldest first
	ListVisible(discussionID, viewerID uint64) ([]PostView, error)

	// ToggleLike adds or removes the user's like on a visible post
	ToggleLike(postID, userID uint64) (LikeState, error)

	// ListRecent lists the newest posts, deleted ones included
	ListRecent(limit int) ([]PostActivity, error)
}

// StatsRepository defines the interface for dashboard counters
type StatsRepository interface {
	// Stats counts users, discussions, visible posts and likes
	Stats() (Stats, error)
}
