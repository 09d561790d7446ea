package database

import (
	"fmt"
	"strings"

	"github.com/caratemple/forum/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type compositeIndex struct {
	model   interface{}
	name    string
	columns string
}

// compositeIndexes are the multi-column indexes the listing and thread
// queries rely on. Single-column indexes come from struct tags.
var compositeIndexes = []compositeIndex{
	{&models.Post{}, "idx_discussion_posts_thread", "discussion_id, is_deleted, created_at"},
	{&models.Post{}, "idx_discussion_posts_author", "user_id, is_deleted"},
	{&models.PostLike{}, "idx_post_likes_user", "user_id"},
}

// AddIndexes creates the composite indexes that do not exist yet.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			logrus.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to resolve table for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logrus.WithFields(logrus.Fields{
			"index":   idx.name,
			"table":   stmt.Schema.Table,
			"columns": idx.columns,
		}).Info("Created index")
	}

	return nil
}

// MigrateDatabase runs the migrations that AutoMigrate cannot express.
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}

// PromoteAdmin grants administrator rights to the account with the given
// email. It returns false when no such account exists.
func PromoteAdmin(db *gorm.DB, email string) (bool, error) {
	result := db.Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Update("is_admin", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to promote admin: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
