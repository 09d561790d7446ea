package repository

import (
	"github.com/caratemple/forum/internal/models"
	"gorm.io/gorm"
)

// Deletes run child tables first so they do not depend on foreign key
// cascades being enabled (SQLite leaves them off by default).

func deleteDiscussionTree(tx *gorm.DB, discussionID uint64) (bool, error) {
	posts := tx.Model(&models.Post{}).Select("id").Where("discussion_id = ?", discussionID)
	if err := tx.Where("post_id IN (?)", posts).Delete(&models.PostLike{}).Error; err != nil {
		return false, err
	}

	if err := tx.Where("discussion_id = ?", discussionID).Delete(&models.Post{}).Error; err != nil {
		return false, err
	}

	result := tx.Where("id = ?", discussionID).Delete(&models.Discussion{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func deleteUserTree(tx *gorm.DB, userID uint64) error {
	discussions := tx.Model(&models.Discussion{}).Select("id").Where("user_id = ?", userID)
	posts := tx.Model(&models.Post{}).Select("id").Where("discussion_id IN (?) OR user_id = ?", discussions, userID)

	if err := tx.Where("user_id = ? OR post_id IN (?)", userID, posts).Delete(&models.PostLike{}).Error; err != nil {
		return err
	}

	if err := tx.Where("discussion_id IN (?) OR user_id = ?", discussions, userID).Delete(&models.Post{}).Error; err != nil {
		return err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.Discussion{}).Error; err != nil {
		return err
	}

	return tx.Delete(&models.User{}, userID).Error
}
