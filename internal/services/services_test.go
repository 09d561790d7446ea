package services

import (
	"testing"

	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/repository"
	"github.com/caratemple/forum/internal/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	auth        *AuthService
	discussions *DiscussionService
	admin       *AdminService
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	postRepo := repository.NewPostRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	auth := NewAuthService(userRepo)
	auth.hashCost = bcrypt.MinCost

	return testEnv{
		db:          db,
		auth:        auth,
		discussions: NewDiscussionService(discussionRepo, postRepo),
		admin:       NewAdminService(userRepo, discussionRepo, postRepo, statsRepo),
	}
}

func requireValidation(t *testing.T, err error) *ValidationError {
	t.Helper()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}

func validDiscussion() DiscussionInput {
	return DiscussionInput{
		Title:    "Best starter?",
		Category: string(models.CategoryStrategy),
		Body:     "Which starter is best in Kanto?",
	}
}

type stubTracker struct {
	allow bool
	seen  []uint64
}

func (s *stubTracker) ShouldCountView(id uint64) bool {
	s.seen = append(s.seen, id)
	return s.allow
}
