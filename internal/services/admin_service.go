package services

import (
	"errors"
	"fmt"

	"github.com/caratemple/forum/internal/constants"
	"github.com/caratemple/forum/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCannotDeleteSelf   = errors.New("administrators cannot delete their own account")
	ErrLastAdmin          = errors.New("cannot delete the last administrator")
	ErrPostAlreadyDeleted = errors.New("post already deleted")
)

// AdminService handles moderation and dashboard logic
type AdminService struct {
	userRepo       repository.UserRepository
	discussionRepo repository.DiscussionRepository
	postRepo       repository.PostRepository
	statsRepo      repository.StatsRepository
}

// NewAdminService creates a new AdminService
func NewAdminService(
	userRepo repository.UserRepository,
	discussionRepo repository.DiscussionRepository,
	postRepo repository.PostRepository,
	statsRepo repository.StatsRepository,
) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		discussionRepo: discussionRepo,
		postRepo:       postRepo,
		statsRepo:      statsRepo,
	}
}

// PostDeletion reports what an admin post deletion removed.
type PostDeletion struct {
	DiscussionID      uint64
	DiscussionDeleted bool
}

// Dashboard is everything the admin page lists.
type Dashboard struct {
	Stats       repository.Stats
	Users       []repository.UserActivity
	Discussions []repository.DiscussionSummary
	Posts       []repository.PostActivity
}

// DeleteUser removes targetID and their content on behalf of actorID
func (s *AdminService) DeleteUser(actorID, targetID uint64) error {
	if _, err := s.userRepo.FindByID(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if actorID == targetID {
		return ErrCannotDeleteSelf
	}

	err := s.userRepo.DeleteWithContent(targetID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrLastAdmin):
		return ErrLastAdmin
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrUserNotFound
	default:
		return fmt.Errorf("failed to delete user: %w", err)
	}
}

// DeletePost soft deletes a post. A root post takes its whole discussion
// with it.
func (s *AdminService) DeletePost(postID uint64) (PostDeletion, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PostDeletion{}, ErrPostNotFound
		}
		return PostDeletion{}, fmt.Errorf("failed to find post: %w", err)
	}

	outcome := PostDeletion{DiscussionID: post.DiscussionID}

	if post.IsRoot {
		if _, err := s.discussionRepo.Delete(post.DiscussionID); err != nil {
			return PostDeletion{}, fmt.Errorf("failed to delete discussion: %w", err)
		}
		outcome.DiscussionDeleted = true
		return outcome, nil
	}

	if post.IsDeleted {
		return outcome, ErrPostAlreadyDeleted
	}

	deleted, err := s.postRepo.SoftDelete(postID)
	if err != nil {
		return PostDeletion{}, fmt.Errorf("failed to delete post: %w", err)
	}
	if !deleted {
		return outcome, ErrPostAlreadyDeleted
	}
	return outcome, nil
}

// DeleteDiscussion deletes any discussion
func (s *AdminService) DeleteDiscussion(discussionID uint64) error {
	deleted, err := s.discussionRepo.Delete(discussionID)
	if err != nil {
		return fmt.Errorf("failed to delete discussion: %w", err)
	}
	if !deleted {
		return ErrDiscussionNotFound
	}
	return nil
}

// DashboardStats counts users, discussions, visible posts and likes
func (s *AdminService) DashboardStats() (repository.Stats, error) {
	stats, err := s.statsRepo.Stats()
	if err != nil {
		return repository.Stats{}, fmt.Errorf("failed to load stats: %w", err)
	}
	return stats, nil
}

// Dashboard loads the counters and the recent activity lists
func (s *AdminService) Dashboard() (*Dashboard, error) {
	stats, err := s.DashboardStats()
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListRecent(constants.AdminRecentUsersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	discussions, err := s.discussionRepo.List(repository.DiscussionFilter{
		OrderByCreated: true,
		Limit:          constants.AdminRecentDiscussionsLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list discussions: %w", err)
	}

	posts, err := s.postRepo.ListRecent(constants.AdminRecentPostsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &Dashboard{
		Stats:       stats,
		Users:       users,
		Discussions: discussions,
		Posts:       posts,
	}, nil
}
