package repository

import (
	"github.com/caratemple/forum/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPostRepository is a GORM implementation of PostRepository
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &GormPostRepository{db: db}
}

// CreateReply inserts a reply and touches the discussion's updated_at. It
// returns gorm.ErrRecordNotFound when the discussion does not exist.
func (r *GormPostRepository) CreateReply(post *models.Post) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var discussion models.Discussion
		if err := tx.Select("id").First(&discussion, post.DiscussionID).Error; err != nil {
			return err
		}

		post.IsRoot = false
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Discussion{}).
			Where("id = ?", post.DiscussionID).
			UpdateColumn("updated_at", post.CreatedAt).Error; err != nil {
			return err
		}

		return tx.First(&post.User, post.UserID).Error
	})
}

// FindByID finds a post by ID
func (r *GormPostRepository) FindByID(id uint64) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// SoftDeleteOwned hides a reply written by userID
func (r *GormPostRepository) SoftDeleteOwned(id, userID uint64) (bool, error) {
	result := r.db.Model(&models.Post{}).
		Where("id = ? AND user_id = ? AND is_root = ? AND is_deleted = ?", id, userID, false, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SoftDelete hides any visible post
func (r *GormPostRepository) SoftDelete(id uint64) (bool, error) {
	result := r.db.Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListVisible lists the thread with like counters and the viewer's likes.
// viewerID 0 matches no like.
func (r *GormPostRepository) ListVisible(discussionID, viewerID uint64) ([]PostView, error) {
	var posts []PostView
	err := r.db.Table("discussion_posts").
		Select(`discussion_posts.id, discussion_posts.discussion_id, discussion_posts.user_id,
			discussion_posts.body, discussion_posts.is_root, discussion_posts.created_at,
			discussion_posts.updated_at, users.username,
			(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = discussion_posts.id) AS likes_count,
			EXISTS (SELECT 1 FROM post_likes v WHERE v.post_id = discussion_posts.id AND v.user_id = ?) AS liked_by_viewer`, viewerID).
		Joins("INNER JOIN users ON users.id = discussion_posts.user_id").
		Where("discussion_posts.discussion_id = ? AND discussion_posts.is_deleted = ?", discussionID, false).
		Order("discussion_posts.created_at ASC, discussion_posts.id ASC").
		Scan(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ToggleLike removes the like when present and adds it otherwise. It
// returns gorm.ErrRecordNotFound for missing or deleted posts.
func (r *GormPostRepository) ToggleLike(postID, userID uint64) (LikeState, error) {
	var state LikeState
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").Where("id = ? AND is_deleted = ?", postID, false).First(&post).Error; err != nil {
			return err
		}

		removed := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if removed.Error != nil {
			return removed.Error
		}

		if removed.RowsAffected == 0 {
			like := &models.PostLike{PostID: postID, UserID: userID}
			if err := tx.Omit(clause.Associations).Create(like).Error; err != nil {
				return err
			}
			state.Liked = true
		}

		return tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&state.LikesCount).Error
	})
	if err != nil {
		return LikeState{}, err
	}
	return state, nil
}

// ListRecent lists the newest posts for moderation
func (r *GormPostRepository) ListRecent(limit int) ([]PostActivity, error) {
	var posts []PostActivity
	err := r.db.Table("discussion_posts").
		Select(`discussion_posts.id, discussion_posts.discussion_id, discussions.title AS discussion_title,
			discussion_posts.body, discussion_posts.is_root, discussion_posts.is_deleted,
			discussion_posts.created_at, users.username`).
		Joins("INNER JOIN discussions ON discussions.id = discussion_posts.discussion_id").
		Joins("INNER JOIN users ON users.id = discussion_posts.user_id").
		Order("discussion_posts.created_at DESC, discussion_posts.id DESC").
		Limit(limit).
		Scan(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
