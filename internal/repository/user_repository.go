package repository

import (
	"strings"

	"github.com/caratemple/forum/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Omit(clause.Associations).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type identityRow struct {
	Username string
	Email    string
}

// FindConflicts checks username and email uniqueness in a single query
func (r *GormUserRepository) FindConflicts(username, email string) (bool, bool, error) {
	var rows []identityRow
	err := r.db.Model(&models.User{}).
		Select("username, email").
		Where("LOWER(username) = ? OR LOWER(email) = ?", strings.ToLower(username), strings.ToLower(email)).
		Scan(&rows).Error
	if err != nil {
		return false, false, err
	}

	var usernameTaken, emailTaken bool
	for _, row := range rows {
		if strings.EqualFold(row.Username, username) {
			usernameTaken = true
		}
		if strings.EqualFold(row.Email, email) {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

// ListRecent lists the newest users with their discussion and post counts
func (r *GormUserRepository) ListRecent(limit int) ([]UserActivity, error) {
	var users []UserActivity
	err := r.db.Model(&models.User{}).
		Select(`users.id, users.username, users.email, users.is_admin, users.created_at,
			(SELECT COUNT(*) FROM discussions d WHERE d.user_id = users.id) AS discussions_count,
			(SELECT COUNT(*) FROM discussion_posts p WHERE p.user_id = users.id AND p.is_deleted = ?) AS posts_count`, false).
		Order("users.created_at DESC, users.id DESC").
		Limit(limit).
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteWithContent deletes the user and everything they wrote. The target
// and the admin rows are locked so two concurrent deletions cannot remove
// the last two administrators.
func (r *GormUserRepository) DeleteWithContent(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&target, id).Error; err != nil {
			return err
		}

		if target.IsAdmin {
			var adminIDs []uint64
			err := tx.Model(&models.User{}).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("is_admin = ?", true).
				Pluck("id", &adminIDs).Error
			if err != nil {
				return err
			}
			if len(adminIDs) <= 1 {
				return ErrLastAdmin
			}
		}

		return deleteUserTree(tx, id)
	})
}
