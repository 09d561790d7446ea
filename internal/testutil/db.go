// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"testing"

	"github.com/caratemple/forum/internal/database"
	"github.com/caratemple/forum/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database. The pool is capped at one
// connection so every query sees the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...))
	require.NoError(t, database.MigrateDatabase(db))

	database.SetDB(db)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, username string, isAdmin bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateDiscussion inserts a discussion with its root post.
func CreateDiscussion(t *testing.T, db *gorm.DB, userID uint64, title string) (*models.Discussion, *models.Post) {
	t.Helper()

	discussion := &models.Discussion{
		UserID:   userID,
		Title:    title,
		Category: models.CategoryGeneral,
		Body:     "Un message d'ouverture suffisamment long.",
	}
	require.NoError(t, db.Create(discussion).Error)

	root := &models.Post{
		DiscussionID: discussion.ID,
		UserID:       userID,
		Body:         discussion.Body,
		IsRoot:       true,
	}
	require.NoError(t, db.Create(root).Error)
	return discussion, root
}

// CreateReply inserts a reply post.
func CreateReply(t *testing.T, db *gorm.DB, discussionID, userID uint64, body string) *models.Post {
	t.Helper()

	post := &models.Post{
		DiscussionID: discussionID,
		UserID:       userID,
		Body:         body,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
