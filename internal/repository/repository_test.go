package repository

import (
	"testing"

	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/testutil"
	"github.com/caratemple/forum/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_FindConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	testutil.CreateUser(t, db, "Ash", false)

	usernameTaken, emailTaken, err := repo.FindConflicts("ASH", "someone@example.com")
	require.NoError(t, err)
	assert.True(t, usernameTaken)
	assert.False(t, emailTaken)

	usernameTaken, emailTaken, err = repo.FindConflicts("misty", "Ash@Example.com")
	require.NoError(t, err)
	assert.False(t, usernameTaken)
	assert.True(t, emailTaken)

	usernameTaken, emailTaken, err = repo.FindConflicts("misty", "misty@example.com")
	require.NoError(t, err)
	assert.False(t, usernameTaken)
	assert.False(t, emailTaken)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	user := testutil.CreateUser(t, db, "brock", false)

	found, err := repo.FindByEmail("BROCK@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ListRecent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	author := testutil.CreateUser(t, db, "author", false)
	replier := testutil.CreateUser(t, db, "replier", false)
	discussion, _ := testutil.CreateDiscussion(t, db, author.ID, "Premier sujet")
	testutil.CreateReply(t, db, discussion.ID, replier.ID, "Bonne idée")
	hidden := testutil.CreateReply(t, db, discussion.ID, replier.ID, "Oups")
	require.NoError(t, db.Model(hidden).Update("is_deleted", true).Error)

	users, err := repo.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, users, 2)

	byName := map[string]UserActivity{}
	for _, u := range users {
		byName[u.Username] = u
	}
	assert.Equal(t, int64(1), byName["author"].DiscussionsCount)
	assert.Equal(t, int64(1), byName["author"].PostsCount)
	assert.Equal(t, int64(0), byName["replier"].DiscussionsCount)
	assert.Equal(t, int64(1), byName["replier"].PostsCount)
}

func TestUserRepository_DeleteWithContent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	postRepo := NewPostRepository(db)

	victim := testutil.CreateUser(t, db, "victim", false)
	other := testutil.CreateUser(t, db, "other", false)

	ownDiscussion, ownRoot := testutil.CreateDiscussion(t, db, victim.ID, "Sujet du membre")
	otherReply := testutil.CreateReply(t, db, ownDiscussion.ID, other.ID, "Réponse externe")
	foreignDiscussion, foreignRoot := testutil.CreateDiscussion(t, db, other.ID, "Sujet d'un autre")
	victimReply := testutil.CreateReply(t, db, foreignDiscussion.ID, victim.ID, "Réponse du membre")

	_, err := postRepo.ToggleLike(otherReply.ID, other.ID)
	require.NoError(t, err)
	_, err = postRepo.ToggleLike(victimReply.ID, other.ID)
	require.NoError(t, err)
	_, err = postRepo.ToggleLike(foreignRoot.ID, victim.ID)
	require.NoError(t, err)
	_, err = postRepo.ToggleLike(foreignRoot.ID, other.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteWithContent(victim.ID))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", victim.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Discussion{}).Where("id = ?", ownDiscussion.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Post{}).Where("id IN ?", []uint64{ownRoot.ID, otherReply.ID, victimReply.ID}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, db.Model(&models.PostLike{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "only the other user's like on their own root post remains")
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", foreignRoot.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_DeleteWithContentKeepsLastAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	admin := testutil.CreateUser(t, db, "admin", true)
	err := repo.DeleteWithContent(admin.ID)
	require.ErrorIs(t, err, ErrLastAdmin)

	second := testutil.CreateUser(t, db, "second", true)
	require.NoError(t, repo.DeleteWithContent(second.ID))

	err = repo.DeleteWithContent(second.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDiscussionRepository_CreateWithRootPost(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewDiscussionRepository(db)
	user := testutil.CreateUser(t, db, "ash", false)

	discussion := &models.Discussion{
		UserID:   user.ID,
		Title:    "Best starter?",
		Category: models.CategoryStrategy,
		Body:     "Which starter should I pick first?",
	}
	require.NoError(t, repo.CreateWithRootPost(discussion))
	require.NotZero(t, discussion.ID)

	var posts []models.Post
	require.NoError(t, db.Where("discussion_id = ?", discussion.ID).Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].IsRoot)
	assert.Equal(t, discussion.Body, posts[0].Body)
}

func TestDiscussionRepository_UpdateWithRootPost(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewDiscussionRepository(db)
	owner := testutil.CreateUser(t, db, "owner", false)
	intruder := testutil.CreateUser(t, db, "intruder", false)
	discussion, root := testutil.CreateDiscussion(t, db, owner.ID, "Sujet initial")

	tagLine := "Nouveau résumé"
	fields := DiscussionFields{
		Title:    "Sujet modifié",
		Category: models.CategoryEvent,
		TagLine:  &tagLine,
		Body:     "Un corps entièrement réécrit pour le test.",
	}

	err := repo.UpdateWithRootPost(discussion.ID, intruder.ID, fields)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = repo.UpdateWithRootPost(discussion.ID+100, owner.ID, fields)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpdateWithRootPost(discussion.ID, owner.ID, fields))

	updated, err := repo.FindByID(discussion.ID)
	require.NoError(t, err)
	assert.Equal(t, fields.Title, updated.Title)
	assert.Equal(t, models.CategoryEvent, updated.Category)
	require.NotNil(t, updated.TagLine)
	assert.Equal(t, tagLine, *updated.TagLine)

	var posts []models.Post
	require.NoError(t, db.Where("discussion_id = ?", discussion.ID).Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.Equal(t, root.ID, posts[0].ID)
	assert.Equal(t, fields.Body, posts[0].Body)
}

func TestDiscussionRepository_DeleteOwned(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewDiscussionRepository(db)
	postRepo := NewPostRepository(db)
	owner := testutil.CreateUser(t, db, "owner", false)
	other := testutil.CreateUser(t, db, "other", false)
	discussion, root := testutil.CreateDiscussion(t, db, owner.ID, "À supprimer")
	reply := testutil.CreateReply(t, db, discussion.ID, other.ID, "Réponse")
	_, err := postRepo.ToggleLike(root.ID, other.ID)
	require.NoError(t, err)
	_, err = postRepo.ToggleLike(reply.ID, owner.ID)
	require.NoError(t, err)

	deleted, err := repo.DeleteOwned(discussion.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.DeleteOwned(discussion.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Where("discussion_id = ?", discussion.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.PostLike{}).Count(&count).Error)
	assert.Zero(t, count)

	deleted, err = repo.Delete(discussion.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDiscussionRepository_IncrementViewsKeepsActivity(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewDiscussionRepository(db)
	user := testutil.CreateUser(t, db, "viewer", false)
	discussion, _ := testutil.CreateDiscussion(t, db, user.ID, "Sujet populaire")

	before, err := repo.FindByID(discussion.ID)
	require.NoError(t, err)

	require.NoError(t, repo.IncrementViews(discussion.ID))
	require.NoError(t, repo.IncrementViews(discussion.ID))

	after, err := repo.FindByID(discussion.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), after.ViewsCount)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
}

func TestDiscussionRepository_List(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewDiscussionRepository(db)
	postRepo := NewPostRepository(db)
	user := testutil.CreateUser(t, db, "lister", false)

	first, _ := testutil.CreateDiscussion(t, db, user.ID, "Pikachu contre Évoli")
	second, _ := testutil.CreateDiscussion(t, db, user.ID, "Tournoi régional")
	third, _ := testutil.CreateDiscussion(t, db, user.ID, "Collection de cartes")

	// A reply bumps the oldest discussion to the top.
	require.NoError(t, postRepo.CreateReply(&models.Post{DiscussionID: first.ID, UserID: user.ID, Body: "Je relance"}))

	summaries, err := repo.List(DiscussionFilter{})
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, first.ID, summaries[0].ID)
	assert.Equal(t, int64(1), summaries[0].RepliesCount())
	assert.Equal(t, "lister", summaries[0].Username)

	created, err := repo.List(DiscussionFilter{OrderByCreated: true})
	require.NoError(t, err)
	assert.Equal(t, third.ID, created[0].ID)

	found, err := repo.List(DiscussionFilter{Query: "TOURNOI"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, second.ID, found[0].ID)
	assert.Equal(t, int64(0), found[0].RepliesCount())

	page := utils.NewPaginationParams(1, 2)
	paged, err := repo.List(DiscussionFilter{Page: &page})
	require.NoError(t, err)
	assert.Len(t, paged, 3, "one lookahead row is fetched")
	assert.True(t, page.Response(len(paged)).HasNext)

	limited, err := repo.List(DiscussionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDiscussionRepository_FindDetail(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewDiscussionRepository(db)
	user := testutil.CreateUser(t, db, "detail", false)
	discussion, _ := testutil.CreateDiscussion(t, db, user.ID, "Sujet détaillé")
	testutil.CreateReply(t, db, discussion.ID, user.ID, "Une réponse")

	detail, err := repo.FindDetail(discussion.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, detail.UserID)
	assert.Equal(t, "detail", detail.Username)
	assert.Equal(t, int64(1), detail.RepliesCount())

	_, err = repo.FindDetail(discussion.ID + 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostRepository_CreateReply(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	user := testutil.CreateUser(t, db, "replier", false)
	discussion, _ := testutil.CreateDiscussion(t, db, user.ID, "Sujet ouvert")

	post := &models.Post{DiscussionID: discussion.ID, UserID: user.ID, Body: "Great pick!"}
	require.NoError(t, repo.CreateReply(post))
	assert.NotZero(t, post.ID)
	assert.False(t, post.IsRoot)
	assert.Equal(t, "replier", post.User.Username)

	err := repo.CreateReply(&models.Post{DiscussionID: discussion.ID + 1, UserID: user.ID, Body: "Perdu"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostRepository_SoftDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	owner := testutil.CreateUser(t, db, "owner", false)
	other := testutil.CreateUser(t, db, "other", false)
	discussion, root := testutil.CreateDiscussion(t, db, owner.ID, "Sujet modéré")
	reply := testutil.CreateReply(t, db, discussion.ID, owner.ID, "Ma réponse")

	deleted, err := repo.SoftDeleteOwned(root.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "root posts are never soft deleted on their own")

	deleted, err = repo.SoftDeleteOwned(reply.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.SoftDeleteOwned(reply.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.SoftDeleteOwned(reply.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.SoftDelete(reply.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	posts, err := repo.ListVisible(discussion.ID, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, root.ID, posts[0].ID)
}

func TestPostRepository_ToggleLike(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	author := testutil.CreateUser(t, db, "author", false)
	fan := testutil.CreateUser(t, db, "fan", false)
	discussion, _ := testutil.CreateDiscussion(t, db, author.ID, "Sujet aimé")
	reply := testutil.CreateReply(t, db, discussion.ID, author.ID, "Great pick!")

	state, err := repo.ToggleLike(reply.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: true, LikesCount: 1}, state)

	posts, err := repo.ListVisible(discussion.ID, fan.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.True(t, posts[1].LikedByViewer)
	assert.Equal(t, int64(1), posts[1].LikesCount)
	assert.False(t, posts[0].LikedByViewer)

	state, err = repo.ToggleLike(reply.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: false, LikesCount: 0}, state)

	require.NoError(t, db.Model(reply).Update("is_deleted", true).Error)
	_, err = repo.ToggleLike(reply.ID, fan.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostRepository_ListRecent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	user := testutil.CreateUser(t, db, "mod", false)
	discussion, _ := testutil.CreateDiscussion(t, db, user.ID, "Sujet récent")
	reply := testutil.CreateReply(t, db, discussion.ID, user.ID, "Supprimée")
	_, err := repo.SoftDelete(reply.ID)
	require.NoError(t, err)

	posts, err := repo.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, reply.ID, posts[0].ID)
	assert.True(t, posts[0].IsDeleted)
	assert.Equal(t, "Sujet récent", posts[0].DiscussionTitle)
	assert.True(t, posts[1].IsRoot)
}

func TestStatsRepository_Stats(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStatsRepository(db)
	postRepo := NewPostRepository(db)
	user := testutil.CreateUser(t, db, "stats", false)
	discussion, root := testutil.CreateDiscussion(t, db, user.ID, "Sujet compté")
	reply := testutil.CreateReply(t, db, discussion.ID, user.ID, "Cachée")
	_, err := postRepo.SoftDelete(reply.ID)
	require.NoError(t, err)
	_, err = postRepo.ToggleLike(root.ID, user.ID)
	require.NoError(t, err)

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 1, Discussions: 1, Posts: 1, Likes: 1}, stats)
}
