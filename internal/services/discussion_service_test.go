package services

import (
	"strings"
	"testing"

	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/session"
	"github.com/caratemple/forum/internal/testutil"
	"github.com/caratemple/forum/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscussionService_CreateDiscussionHasOneRootPost(t *testing.T) {
	env := setupTestEnv(t)
	user := testutil.CreateUser(t, env.db, "ash", false)

	input := validDiscussion()
	input.TagLine = "   "
	input.Category = "Inconnue"

	discussion, err := env.discussions.CreateDiscussion(user.ID, input)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryGeneral, discussion.Category)
	assert.Nil(t, discussion.TagLine)

	var posts []models.Post
	require.NoError(t, env.db.Where("discussion_id = ?", discussion.ID).Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].IsRoot)
	assert.Equal(t, discussion.Body, posts[0].Body)
}

func TestDiscussionService_ValidateDiscussion(t *testing.T) {
	env := setupTestEnv(t)
	user := testutil.CreateUser(t, env.db, "ash", false)

	_, err := env.discussions.CreateDiscussion(user.ID, DiscussionInput{})
	verr := requireValidation(t, err)
	assert.Equal(t, "Le titre est requis.", verr.Fields[FieldTitle])
	assert.Equal(t, "Le contenu est requis.", verr.Fields[FieldBody])

	_, err = env.discussions.CreateDiscussion(user.ID, DiscussionInput{
		Title:   "Court",
		TagLine: strings.Repeat("é", 121),
		Body:    "Trop court",
	})
	verr = requireValidation(t, err)
	assert.Equal(t, "Le titre doit comporter au moins 6 caractères.", verr.Fields[FieldTitle])
	assert.Equal(t, "Le résumé doit contenir 120 caractères maximum.", verr.Fields[FieldTagLine])
	assert.Equal(t, "Développe ta question en au moins 20 caractères.", verr.Fields[FieldBody])

	input := validDiscussion()
	input.TagLine = strings.Repeat("é", 120)
	_, err = env.discussions.CreateDiscussion(user.ID, input)
	require.NoError(t, err, "the tag line limit counts characters, not bytes")

	var count int64
	require.NoError(t, env.db.Model(&models.Discussion{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDiscussionService_UpdateDiscussionKeepsSingleRootPost(t *testing.T) {
	env := setupTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner", false)
	other := testutil.CreateUser(t, env.db, "other", false)

	discussion, err := env.discussions.CreateDiscussion(owner.ID, validDiscussion())
	require.NoError(t, err)

	update := DiscussionInput{
		Title:    "Meilleur starter ?",
		Category: string(models.CategoryCompetitive),
		TagLine:  "Débat ouvert",
		Body:     "Bulbizarre reste le choix le plus sûr.",
	}

	assert.ErrorIs(t, env.discussions.UpdateDiscussion(discussion.ID, other.ID, update), ErrNotPermitted)
	assert.ErrorIs(t, env.discussions.UpdateDiscussion(discussion.ID+50, owner.ID, update), ErrNotPermitted)

	require.NoError(t, env.discussions.UpdateDiscussion(discussion.ID, owner.ID, update))

	var posts []models.Post
	require.NoError(t, env.db.Where("discussion_id = ?", discussion.ID).Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].IsRoot)
	assert.Equal(t, update.Body, posts[0].Body)

	detail, err := env.discussions.FetchDiscussion(discussion.ID)
	require.NoError(t, err)
	assert.Equal(t, update.Title, detail.Title)
	require.NotNil(t, detail.TagLine)
	assert.Equal(t, "Débat ouvert", *detail.TagLine)

	err = env.discussions.UpdateDiscussion(discussion.ID, owner.ID, DiscussionInput{Title: "x"})
	requireValidation(t, err)
}

func TestDiscussionService_DeleteDiscussion(t *testing.T) {
	env := setupTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner", false)
	other := testutil.CreateUser(t, env.db, "other", false)
	discussion, _ := testutil.CreateDiscussion(t, env.db, owner.ID, "Sujet éphémère")

	deleted, err := env.discussions.DeleteDiscussion(discussion.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = env.discussions.DeleteDiscussion(discussion.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = env.discussions.FetchDiscussion(discussion.ID)
	assert.ErrorIs(t, err, ErrDiscussionNotFound)
}

func TestDiscussionService_CreatePost(t *testing.T) {
	env := setupTestEnv(t)
	user := testutil.CreateUser(t, env.db, "replier", false)
	discussion, _ := testutil.CreateDiscussion(t, env.db, user.ID, "Sujet ouvert")

	_, err := env.discussions.CreatePost(discussion.ID, user.ID, "   ")
	verr := requireValidation(t, err)
	assert.Equal(t, "Le message est requis.", verr.Fields[FieldMessage])

	_, err = env.discussions.CreatePost(discussion.ID, user.ID, " ok ")
	verr = requireValidation(t, err)
	assert.Equal(t, "Le message doit contenir au moins 3 caractères.", verr.Fields[FieldMessage])

	_, err = env.discussions.CreatePost(discussion.ID+9, user.ID, "Bonjour")
	assert.ErrorIs(t, err, ErrDiscussionNotFound)

	post, err := env.discussions.CreatePost(discussion.ID, user.ID, "  Great pick!  ")
	require.NoError(t, err)
	assert.Equal(t, "Great pick!", post.Body)
	assert.Equal(t, "replier", post.User.Username)
}

func TestDiscussionService_DeletePost(t *testing.T) {
	env := setupTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner", false)
	discussion, root := testutil.CreateDiscussion(t, env.db, owner.ID, "Sujet modéré")
	reply := testutil.CreateReply(t, env.db, discussion.ID, owner.ID, "À retirer")

	other, _ := testutil.CreateDiscussion(t, env.db, owner.ID, "Autre sujet")

	deleted, err := env.discussions.DeletePost(discussion.ID, root.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = env.discussions.DeletePost(other.ID, reply.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "the reply lives in another discussion")

	deleted, err = env.discussions.DeletePost(discussion.ID, reply.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	posts, err := env.discussions.FetchDiscussionPosts(discussion.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].IsRoot)
}

func TestDiscussionService_ToggleLikeTwiceRestoresState(t *testing.T) {
	env := setupTestEnv(t)
	user := testutil.CreateUser(t, env.db, "fan", false)
	discussion, root := testutil.CreateDiscussion(t, env.db, user.ID, "Sujet aimé")

	first, err := env.discussions.ToggleLike(discussion.ID, root.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, int64(1), first.LikesCount)

	second, err := env.discussions.ToggleLike(discussion.ID, root.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Zero(t, second.LikesCount)

	_, err = env.discussions.ToggleLike(discussion.ID, root.ID+100, user.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = env.discussions.ToggleLike(discussion.ID+100, root.ID, user.ID)
	assert.ErrorIs(t, err, ErrPostNotFound, "the post must belong to the discussion")

	posts, err := env.discussions.FetchDiscussionPosts(discussion.ID, user.ID)
	require.NoError(t, err)
	assert.Zero(t, posts[0].LikesCount)
}

func TestDiscussionService_RegisterView(t *testing.T) {
	env := setupTestEnv(t)
	user := testutil.CreateUser(t, env.db, "viewer", false)
	discussion, _ := testutil.CreateDiscussion(t, env.db, user.ID, "Sujet consulté")

	blocked := &stubTracker{allow: false}
	counted, err := env.discussions.RegisterView(blocked, discussion.ID)
	require.NoError(t, err)
	assert.False(t, counted)
	assert.Equal(t, []uint64{discussion.ID}, blocked.seen)

	sc := session.New(session.NewMemoryValues())
	counted, err = env.discussions.RegisterView(sc, discussion.ID)
	require.NoError(t, err)
	assert.True(t, counted)
	counted, err = env.discussions.RegisterView(sc, discussion.ID)
	require.NoError(t, err)
	assert.False(t, counted)

	detail, err := env.discussions.FetchDiscussion(discussion.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), detail.ViewsCount)
}

func TestDiscussionService_FetchLatestDiscussions(t *testing.T) {
	env := setupTestEnv(t)
	user := testutil.CreateUser(t, env.db, "author", false)
	for _, title := range []string{"Sujet numéro un", "Sujet numéro deux", "Tournoi de Jadielle"} {
		testutil.CreateDiscussion(t, env.db, user.ID, title)
	}

	discussions, pagination, err := env.discussions.FetchLatestDiscussions(LatestFilter{Page: utils.NewPaginationParams(1, 2)})
	require.NoError(t, err)
	assert.Len(t, discussions, 2)
	assert.True(t, pagination.HasNext)
	assert.False(t, pagination.HasPrev)

	discussions, pagination, err = env.discussions.FetchLatestDiscussions(LatestFilter{Page: utils.NewPaginationParams(2, 2)})
	require.NoError(t, err)
	assert.Len(t, discussions, 1)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)

	discussions, _, err = env.discussions.FetchLatestDiscussions(LatestFilter{Query: "tournoi", Page: utils.NewPaginationParams(1, 12)})
	require.NoError(t, err)
	require.Len(t, discussions, 1)
	assert.Equal(t, "Tournoi de Jadielle", discussions[0].Title)
}

func TestDiscussionService_SearchDiscussions(t *testing.T) {
	env := setupTestEnv(t)
	user := testutil.CreateUser(t, env.db, "author", false)
	testutil.CreateDiscussion(t, env.db, user.ID, "Stratégie Dracaufeu")

	result, err := env.discussions.SearchDiscussions("")
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Hint)

	result, err = env.discussions.SearchDiscussions(" é ")
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Equal(t, SearchHint, result.Hint)

	result, err = env.discussions.SearchDiscussions("dracau")
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "author", result.Results[0].Username)

	result, err = env.discussions.SearchDiscussions("absent")
	require.NoError(t, err)
	assert.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
}
