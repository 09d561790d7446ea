package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/caratemple/forum/internal/dto"
	apierrors "github.com/caratemple/forum/internal/errors"
	"github.com/caratemple/forum/internal/logger"
	"github.com/caratemple/forum/internal/middleware"
	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/monitoring"
	"github.com/caratemple/forum/internal/repository"
	"github.com/caratemple/forum/internal/services"
	"github.com/caratemple/forum/internal/session"
	"github.com/caratemple/forum/internal/utils"
	"github.com/gin-gonic/gin"
)

// DiscussionHandler serves the home page, the thread pages and the
// discussion API.
type DiscussionHandler struct {
	Options
	discussionService *services.DiscussionService
}

// NewDiscussionHandler creates a new DiscussionHandler.
func NewDiscussionHandler(discussionService *services.DiscussionService, opts Options) *DiscussionHandler {
	return &DiscussionHandler{
		Options:           opts,
		discussionService: discussionService,
	}
}

type discussionForm struct {
	Title    string `form:"title"`
	Category string `form:"category"`
	TagLine  string `form:"tag_line"`
	Body     string `form:"body"`
	Token    string `form:"_token"`
}

func (f discussionForm) input() services.DiscussionInput {
	return services.DiscussionInput{
		Title:    f.Title,
		Category: f.Category,
		TagLine:  f.TagLine,
		Body:     f.Body,
	}
}

type threadForm struct {
	Action   string `form:"action"`
	Token    string `form:"_token"`
	PostID   string `form:"post_id"`
	Message  string `form:"message"`
	Title    string `form:"title"`
	Category string `form:"category"`
	TagLine  string `form:"tag_line"`
	Body     string `form:"body"`
}

func (f threadForm) discussion() discussionForm {
	return discussionForm{
		Title:    f.Title,
		Category: f.Category,
		TagLine:  f.TagLine,
		Body:     f.Body,
		Token:    f.Token,
	}
}

// Home lists the latest discussions, optionally filtered by a search term.
func (h *DiscussionHandler) Home(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		query = c.Query("query")
	}
	query = strings.TrimSpace(query)

	summaries, pagination, err := h.discussionService.FetchLatestDiscussions(services.LatestFilter{
		Query: query,
		Page:  utils.GetPaginationParams(c),
	})
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	sess := session.FromGin(c)
	page, err := h.page(c, sess)
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	renderView(c, sess, http.StatusOK, dto.HomeView{
		PageDTO:     page,
		Discussions: dto.ToDiscussionListDTO(summaries, h.BaseURL, h.now()),
		Pagination:  pagination,
		Query:       query,
	})
}

// Show renders a thread and counts the visit.
func (h *DiscussionHandler) Show(c *gin.Context) {
	sess := session.FromGin(c)

	detail, ok := h.loadDiscussion(c, sess)
	if !ok {
		return
	}

	counted, err := h.discussionService.RegisterView(sess, detail.ID)
	if err != nil {
		logger.WithRequest(c).WithError(err).Warn("Failed to register discussion view")
	}
	if counted {
		detail.ViewsCount++
	}

	identity := middleware.CurrentIdentity(c)
	var viewerID uint64
	if identity != nil {
		viewerID = identity.ID
	}
	isOwner := identity != nil && identity.ID == detail.UserID

	posts, err := h.discussionService.FetchDiscussionPosts(detail.ID, viewerID)
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	formKeys := []string{replyKey(detail.ID)}
	if isOwner {
		formKeys = append(formKeys, updateKey(detail.ID), deleteKey(detail.ID))
	}
	if identity != nil {
		formKeys = append(formKeys, likeKey(detail.ID))
		if ownsReply(posts, identity.ID) {
			formKeys = append(formKeys, deletePostKey(detail.ID))
		}
	}
	page, err := h.page(c, sess, formKeys...)
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	view := dto.DiscussionView{
		PageDTO:      page,
		Discussion:   dto.ToDiscussionDTO(*detail, h.now()),
		Replies:      []dto.PostDTO{},
		Participants: []string{},
		IsOwner:      isOwner,
		EditMode:     isOwner && c.Query("edit") == "1",
		Categories:   models.Categories,
	}

	seen := make(map[uint64]bool)
	for _, post := range posts {
		if !seen[post.UserID] {
			seen[post.UserID] = true
			view.Participants = append(view.Participants, post.Username)
		}

		item := dto.ToPostDTO(post, h.now())
		item.Tokens = postTokens(page.CSRF, detail.ID, post, viewerID)

		if post.IsRoot {
			root := item
			view.RootPost = &root
			continue
		}
		view.Replies = append(view.Replies, item)
	}

	renderView(c, sess, http.StatusOK, view)
}

// postTokens points a post's buttons at the thread tokens: like for every
// post, delete for the viewer's own replies.
func postTokens(csrf map[string]string, discussionID uint64, post repository.PostView, viewerID uint64) *dto.PostTokensDTO {
	if viewerID == 0 {
		return nil
	}

	tokens := dto.PostTokensDTO{Like: csrf[likeKey(discussionID)]}
	if !post.IsRoot && post.UserID == viewerID {
		tokens.Delete = csrf[deletePostKey(discussionID)]
	}
	return &tokens
}

func ownsReply(posts []repository.PostView, userID uint64) bool {
	for _, post := range posts {
		if !post.IsRoot && post.UserID == userID {
			return true
		}
	}
	return false
}

// Act handles the thread page form actions. Every action ends with a redirect.
func (h *DiscussionHandler) Act(c *gin.Context) {
	sess := session.FromGin(c)

	detail, ok := h.loadDiscussion(c, sess)
	if !ok {
		return
	}

	var form threadForm
	if err := c.ShouldBind(&form); err != nil {
		renderPage(c, sess, fail(apierrors.ErrInvalidInput, h.threadURL(detail.ID)))
		return
	}

	identity := middleware.CurrentIdentity(c)

	var outcome Outcome
	switch form.Action {
	case "reply":
		outcome = h.reply(c, sess, identity, detail.ID, form.Token, form.Message)
	case "delete_post":
		outcome = h.deletePost(c, sess, identity, detail.ID, form.PostID, form.Token)
	case "toggle_like":
		outcome = h.toggleLike(c, sess, identity, detail.ID, form.PostID, form.Token)
	case "delete_discussion":
		outcome = h.deleteDiscussion(c, sess, identity, detail, form.Token)
	case "update_discussion":
		outcome = h.updateDiscussion(c, sess, identity, detail, form.discussion())
	default:
		outcome = fail(apierrors.ErrInvalidInput.WithMessage("Action inconnue."), h.threadURL(detail.ID))
	}

	renderPage(c, sess, outcome)
}

// NewPage shows the discussion creation form.
func (h *DiscussionHandler) NewPage(c *gin.Context) {
	sess := session.FromGin(c)
	if middleware.CurrentIdentity(c) == nil {
		redirectWithFlash(c, sess, session.FlashError, "Connecte-toi pour créer une discussion.", h.url("/login"))
		return
	}

	page, err := h.page(c, sess, formDiscussionCreate)
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	renderView(c, sess, http.StatusOK, dto.FormView{
		PageDTO:    page,
		Values:     map[string]string{"category": string(models.CategoryGeneral)},
		Categories: models.Categories,
	})
}

// Create publishes a new discussion and opens its thread.
func (h *DiscussionHandler) Create(c *gin.Context) {
	sess := session.FromGin(c)
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		redirectWithFlash(c, sess, session.FlashError, "Connecte-toi pour créer une discussion.", h.url("/login"))
		return
	}

	var form discussionForm
	if err := c.ShouldBind(&form); err != nil {
		renderPage(c, sess, fail(apierrors.ErrInvalidInput, h.url("/discussions/new")))
		return
	}
	if !sess.ValidateCSRF(formDiscussionCreate, form.Token) {
		renderPage(c, sess, fail(apierrors.ErrInvalidCSRF, h.url("/discussions/new")))
		return
	}

	discussion, err := h.discussionService.CreateDiscussion(identity.ID, form.input())
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			h.renderCreateError(c, sess, verr, form)
			return
		}
		renderPage(c, sess, fail(h.unexpected(c, err, "Impossible de publier ta discussion pour le moment."), h.url("/discussions/new")))
		return
	}

	monitoring.DiscussionsCreated.Inc()
	renderPage(c, sess, succeed("Ta discussion est en ligne !", h.threadURL(discussion.ID)))
}

// renderCreateError shows the creation form again with the field errors
// and the submitted values.
func (h *DiscussionHandler) renderCreateError(c *gin.Context, sess *session.Context, verr *services.ValidationError, form discussionForm) {
	page, err := h.page(c, sess, formDiscussionCreate)
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	renderView(c, sess, http.StatusBadRequest, dto.FormView{
		PageDTO: page,
		Errors:  verr.Details(),
		Values: map[string]string{
			"title":    form.Title,
			"category": form.Category,
			"tag_line": form.TagLine,
			"body":     form.Body,
		},
		Categories: models.Categories,
	})
}

// loadDiscussion resolves the id query parameter, redirecting home with a
// flash when it is invalid or unknown.
func (h *DiscussionHandler) loadDiscussion(c *gin.Context, sess *session.Context) (*repository.DiscussionDetail, bool) {
	id, ok := parseID(c.Query("id"))
	if !ok {
		redirectWithFlash(c, sess, session.FlashError, "Discussion introuvable.", h.url("/"))
		return nil, false
	}

	detail, err := h.discussionService.FetchDiscussion(id)
	if err != nil {
		if errors.Is(err, services.ErrDiscussionNotFound) {
			redirectWithFlash(c, sess, session.FlashError, "Ce sujet n'existe plus.", h.url("/"))
			return nil, false
		}
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return nil, false
	}
	return detail, true
}
