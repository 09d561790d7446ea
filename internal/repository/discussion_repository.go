package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caratemple/forum/internal/database"
	"github.com/caratemple/forum/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateDiscussion is returned when inserting the discussion row fails.
	ErrCreateDiscussion = errors.New("discussion repository: create discussion failed")
	// ErrCreateRootPost is returned when inserting the root post fails.
	ErrCreateRootPost = errors.New("discussion repository: create root post failed")
)

const discussionColumns = `discussions.id, discussions.user_id, discussions.title, discussions.category,
	discussions.tag_line, discussions.body, discussions.views_count, discussions.created_at,
	discussions.updated_at, users.username,
	(SELECT COUNT(*) FROM discussion_posts p WHERE p.discussion_id = discussions.id AND p.is_deleted = ?) AS posts_count`

// GormDiscussionRepository is a GORM implementation of DiscussionRepository
type GormDiscussionRepository struct {
	db *gorm.DB
}

// NewDiscussionRepository creates a new DiscussionRepository
func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &GormDiscussionRepository{db: db}
}

// CreateWithRootPost inserts the discussion, its root post and stamps the
// discussion's activity time in one transaction.
func (r *GormDiscussionRepository) CreateWithRootPost(discussion *models.Discussion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(discussion).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateDiscussion, err)
		}

		root := &models.Post{
			DiscussionID: discussion.ID,
			UserID:       discussion.UserID,
			Body:         discussion.Body,
			IsRoot:       true,
		}
		if err := tx.Omit(clause.Associations).Create(root).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateRootPost, err)
		}

		if err := tx.Model(&models.Discussion{}).
			Where("id = ?", discussion.ID).
			UpdateColumn("updated_at", root.CreatedAt).Error; err != nil {
			return err
		}
		discussion.UpdatedAt = root.CreatedAt

		return nil
	})
}

// FindByID finds a discussion by ID
func (r *GormDiscussionRepository) FindByID(id uint64) (*models.Discussion, error) {
	var discussion models.Discussion
	if err := r.db.First(&discussion, id).Error; err != nil {
		return nil, err
	}
	return &discussion, nil
}

// FindDetail loads a discussion with its author name and visible post count
func (r *GormDiscussionRepository) FindDetail(id uint64) (*DiscussionDetail, error) {
	var detail DiscussionDetail
	err := r.db.Table("discussions").
		Select(discussionColumns, false).
		Joins("INNER JOIN users ON users.id = discussions.user_id").
		Where("discussions.id = ?", id).
		Take(&detail).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateWithRootPost updates the discussion when ownerID owns it and copies
// the new body onto the root post.
func (r *GormDiscussionRepository) UpdateWithRootPost(id, ownerID uint64, fields DiscussionFields) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var discussion models.Discussion
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&discussion, id).Error; err != nil {
			return err
		}
		if discussion.UserID != ownerID {
			return ErrNotOwner
		}

		err := tx.Model(&discussion).Updates(map[string]interface{}{
			"title":    fields.Title,
			"category": fields.Category,
			"tag_line": fields.TagLine,
			"body":     fields.Body,
		}).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.Post{}).
			Where("discussion_id = ? AND is_root = ?", id, true).
			Update("body", fields.Body).Error
	})
}

// DeleteOwned deletes the discussion when ownerID owns it
func (r *GormDiscussionRepository) DeleteOwned(id, ownerID uint64) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var discussion models.Discussion
		err := tx.Select("id").Where("id = ? AND user_id = ?", id, ownerID).First(&discussion).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		deleted, err = deleteDiscussionTree(tx, id)
		return err
	})
	return deleted, err
}

// Delete deletes a discussion with its posts and likes
func (r *GormDiscussionRepository) Delete(id uint64) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = deleteDiscussionTree(tx, id)
		return err
	})
	return deleted, err
}

// IncrementViews bumps views_count; UpdateColumn leaves updated_at alone so
// reading a thread does not move it up the listing.
func (r *GormDiscussionRepository) IncrementViews(id uint64) error {
	return r.db.Model(&models.Discussion{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
}

// List lists discussion summaries with optional text search and paging
func (r *GormDiscussionRepository) List(filter DiscussionFilter) ([]DiscussionSummary, error) {
	query := r.db.Table("discussions").
		Select(discussionColumns, false).
		Joins("INNER JOIN users ON users.id = discussions.user_id")

	if term := strings.TrimSpace(filter.Query); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(discussions.title) LIKE ? OR LOWER(discussions.body) LIKE ?", pattern, pattern)
	}

	if filter.OrderByCreated {
		query = query.Order("discussions.created_at DESC")
	} else {
		query = query.Order("COALESCE(discussions.updated_at, discussions.created_at) DESC")
	}
	query = query.Order("discussions.id DESC")

	switch {
	case filter.Page != nil:
		query = query.Scopes(database.Paginate(*filter.Page))
	case filter.Limit > 0:
		query = query.Limit(filter.Limit)
	}

	var discussions []DiscussionSummary
	if err := query.Scan(&discussions).Error; err != nil {
		return nil, err
	}
	return discussions, nil
}
