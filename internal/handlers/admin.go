package handlers

import (
	"errors"
	"net/http"

	"github.com/caratemple/forum/internal/dto"
	apierrors "github.com/caratemple/forum/internal/errors"
	"github.com/caratemple/forum/internal/middleware"
	"github.com/caratemple/forum/internal/monitoring"
	"github.com/caratemple/forum/internal/services"
	"github.com/caratemple/forum/internal/session"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the moderation dashboard and its API.
type AdminHandler struct {
	Options
	adminService *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService, opts Options) *AdminHandler {
	return &AdminHandler{
		Options:      opts,
		adminService: adminService,
	}
}

type moderationForm struct {
	Action       string `form:"action"`
	CSRFKey      string `form:"csrf_key"`
	CSRFToken    string `form:"csrf_token"`
	UserID       string `form:"user_id"`
	DiscussionID string `form:"discussion_id"`
	PostID       string `form:"post_id"`
}

// Dashboard shows the counters and the recent activity. Every row of a list
// carries the token of its delete action.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	sess := session.FromGin(c)
	actor := middleware.CurrentIdentity(c)

	dashboard, err := h.adminService.Dashboard()
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	page, err := h.page(c, sess, adminUserKey, adminDiscussionKey, adminPostKey)
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	view := dto.AdminView{
		PageDTO:     page,
		Stats:       dashboard.Stats,
		Users:       make([]dto.AdminUserDTO, 0, len(dashboard.Users)),
		Discussions: make([]dto.AdminDiscussionDTO, 0, len(dashboard.Discussions)),
		Posts:       make([]dto.AdminPostDTO, 0, len(dashboard.Posts)),
	}

	for _, u := range dashboard.Users {
		item := dto.ToAdminUserDTO(u, actor.ID)
		item.CSRFKey, item.CSRFToken = adminUserKey, page.CSRF[adminUserKey]
		view.Users = append(view.Users, item)
	}

	for _, d := range dashboard.Discussions {
		item := dto.ToAdminDiscussionDTO(d, h.BaseURL)
		item.CSRFKey, item.CSRFToken = adminDiscussionKey, page.CSRF[adminDiscussionKey]
		view.Discussions = append(view.Discussions, item)
	}

	for _, p := range dashboard.Posts {
		item := dto.ToAdminPostDTO(p)
		if !item.IsDeleted {
			item.CSRFKey, item.CSRFToken = adminPostKey, page.CSRF[adminPostKey]
		}
		view.Posts = append(view.Posts, item)
	}

	renderView(c, sess, http.StatusOK, view)
}

// Act handles the dashboard delete buttons and redirects back to it.
func (h *AdminHandler) Act(c *gin.Context) {
	sess := session.FromGin(c)

	var form moderationForm
	if err := c.ShouldBind(&form); err != nil {
		renderPage(c, sess, fail(apierrors.ErrInvalidInput, h.url("/admin")))
		return
	}

	renderPage(c, sess, h.moderate(c, sess, middleware.CurrentIdentity(c), form))
}

// DeleteAPI is the JSON flavour of Act.
func (h *AdminHandler) DeleteAPI(c *gin.Context) {
	sess := session.FromGin(c)

	var form moderationForm
	if err := c.ShouldBind(&form); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	outcome := h.moderate(c, sess, middleware.CurrentIdentity(c), form)
	renderJSON(c, sess, outcome.withFreshToken(sess, form.CSRFKey))
}

var errRequestExpired = apierrors.ErrInvalidCSRF.WithMessage("La requête a expiré, merci de réessayer.")

// moderate validates the token against the submitted key, then checks the
// key belongs to the requested action.
func (h *AdminHandler) moderate(c *gin.Context, sess *session.Context, actor *session.Identity, form moderationForm) Outcome {
	back := h.url("/admin")

	if form.CSRFKey == "" || !sess.ValidateCSRF(form.CSRFKey, form.CSRFToken) {
		return fail(errRequestExpired, back)
	}
	if key, known := moderationKeys[form.Action]; known && key != form.CSRFKey {
		return fail(errRequestExpired, back)
	}

	switch form.Action {
	case "delete_user":
		return h.deleteUser(c, actor, form, back)
	case "delete_discussion":
		return h.deleteDiscussion(c, form, back)
	case "delete_post":
		return h.deletePost(c, form, back)
	default:
		return fail(apierrors.ErrInvalidInput.WithMessage("Action non reconnue."), back)
	}
}

func (h *AdminHandler) deleteUser(c *gin.Context, actor *session.Identity, form moderationForm, back string) Outcome {
	notFound := apierrors.ErrNotFound.WithMessage("Utilisateur introuvable.")

	userID, ok := parseID(form.UserID)
	if !ok {
		return fail(notFound, back)
	}

	err := h.adminService.DeleteUser(actor.ID, userID)
	switch {
	case err == nil:
		monitoring.ModerationActions.WithLabelValues("delete_user").Inc()
		return succeed("Utilisateur supprimé avec succès.", back)
	case errors.Is(err, services.ErrUserNotFound):
		return fail(notFound, back)
	case errors.Is(err, services.ErrCannotDeleteSelf):
		return fail(apierrors.ErrInvalidInput.WithMessage("Tu ne peux pas supprimer ton propre compte administrateur."), back)
	case errors.Is(err, services.ErrLastAdmin):
		return fail(apierrors.ErrInvalidInput.WithMessage("Impossible de supprimer le dernier administrateur."), back)
	default:
		return fail(h.unexpected(c, err, "La suppression de l'utilisateur a échoué."), back)
	}
}

func (h *AdminHandler) deleteDiscussion(c *gin.Context, form moderationForm, back string) Outcome {
	notFound := apierrors.ErrNotFound.WithMessage("Discussion introuvable.")

	discussionID, ok := parseID(form.DiscussionID)
	if !ok {
		return fail(notFound, back)
	}

	err := h.adminService.DeleteDiscussion(discussionID)
	switch {
	case err == nil:
		monitoring.ModerationActions.WithLabelValues("delete_discussion").Inc()
		return succeed("Discussion supprimée.", back)
	case errors.Is(err, services.ErrDiscussionNotFound):
		return fail(notFound, back)
	default:
		return fail(h.unexpected(c, err, "Suppression impossible, réessaie plus tard."), back)
	}
}

func (h *AdminHandler) deletePost(c *gin.Context, form moderationForm, back string) Outcome {
	notFound := apierrors.ErrNotFound.WithMessage("Message introuvable.")

	postID, ok := parseID(form.PostID)
	if !ok {
		return fail(notFound, back)
	}

	deletion, err := h.adminService.DeletePost(postID)
	switch {
	case err == nil && deletion.DiscussionDeleted:
		monitoring.ModerationActions.WithLabelValues("delete_discussion").Inc()
		return succeed("Discussion supprimée (message racine).", back).
			with("redirect", back)
	case err == nil:
		monitoring.ModerationActions.WithLabelValues("delete_post").Inc()
		return succeed("Message supprimé.", back)
	case errors.Is(err, services.ErrPostNotFound):
		return fail(notFound, back)
	case errors.Is(err, services.ErrPostAlreadyDeleted):
		outcome := fail(apierrors.NewAPIError(http.StatusBadRequest, apierrors.ErrCodeInvalidOperation, "Ce message est déjà supprimé."), back)
		outcome.Kind = session.FlashInfo
		return outcome
	default:
		return fail(h.unexpected(c, err, "La suppression du message a échoué."), back)
	}
}
