package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/caratemple/forum/internal/dto"
	apierrors "github.com/caratemple/forum/internal/errors"
	"github.com/caratemple/forum/internal/middleware"
	"github.com/caratemple/forum/internal/monitoring"
	"github.com/caratemple/forum/internal/repository"
	"github.com/caratemple/forum/internal/services"
	"github.com/caratemple/forum/internal/session"
	"github.com/gin-gonic/gin"
)

var errExpired = apierrors.ErrInvalidCSRF.WithMessage("Action expirée, merci de réessayer.")

func (h *DiscussionHandler) reply(c *gin.Context, sess *session.Context, identity *session.Identity, discussionID uint64, token, message string) Outcome {
	thread := h.threadURL(discussionID)

	if !sess.ValidateCSRF(replyKey(discussionID), token) {
		return fail(apierrors.ErrInvalidCSRF, thread)
	}
	if identity == nil {
		return fail(apierrors.ErrUnauthorized.WithMessage("Connecte-toi pour répondre."), h.url("/login"))
	}

	post, err := h.discussionService.CreatePost(discussionID, identity.ID, message)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return invalid(verr, thread+"#reponses")
		case errors.Is(err, services.ErrDiscussionNotFound):
			return fail(apierrors.ErrNotFound.WithMessage("Ce sujet n'existe plus."), h.url("/"))
		default:
			return fail(h.unexpected(c, err, "Impossible de publier ta réponse."), thread)
		}
	}

	monitoring.RepliesPosted.Inc()
	return succeed("Réponse publiée !", thread+"#reponses").
		with("post", dto.ToReplyDTO(*post, h.now()))
}

func (h *DiscussionHandler) deletePost(c *gin.Context, sess *session.Context, identity *session.Identity, discussionID uint64, rawPostID, token string) Outcome {
	thread := h.threadURL(discussionID)

	postID, ok := parseID(rawPostID)
	if !ok || !sess.ValidateCSRF(deletePostKey(discussionID), token) {
		return fail(errExpired, thread)
	}
	if identity == nil {
		return fail(apierrors.ErrUnauthorized.WithMessage("Connecte-toi pour gérer tes messages."), h.url("/login"))
	}

	deleted, err := h.discussionService.DeletePost(discussionID, postID, identity.ID)
	if err != nil {
		return fail(h.unexpected(c, err, "Impossible de supprimer ce message."), thread+"#reponses")
	}
	if !deleted {
		return fail(apierrors.ErrForbidden.WithMessage("Impossible de supprimer ce message."), thread+"#reponses")
	}
	return succeed("Message supprimé.", thread+"#reponses")
}

// toggleLike succeeds without a message: the page only jumps back to the post.
func (h *DiscussionHandler) toggleLike(c *gin.Context, sess *session.Context, identity *session.Identity, discussionID uint64, rawPostID, token string) Outcome {
	thread := h.threadURL(discussionID)

	postID, ok := parseID(rawPostID)
	if !ok || !sess.ValidateCSRF(likeKey(discussionID), token) {
		return fail(apierrors.ErrInvalidCSRF.WithMessage("Action expirée."), thread)
	}
	if identity == nil {
		return fail(apierrors.ErrUnauthorized.WithMessage("Connecte-toi pour aimer un message."), h.url("/login"))
	}

	state, err := h.discussionService.ToggleLike(discussionID, postID, identity.ID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return fail(apierrors.ErrNotFound.WithMessage("Message introuvable."), thread)
		}
		return fail(h.unexpected(c, err, ""), thread)
	}

	monitoring.LikeToggles.WithLabelValues(likeLabel(state)).Inc()
	return succeed("", thread+"#post-"+strconv.FormatUint(postID, 10)).
		with("likes_count", state.LikesCount).
		with("is_liked", state.Liked)
}

func likeLabel(state repository.LikeState) string {
	if state.Liked {
		return "liked"
	}
	return "unliked"
}

func (h *DiscussionHandler) deleteDiscussion(c *gin.Context, sess *session.Context, identity *session.Identity, detail *repository.DiscussionDetail, token string) Outcome {
	thread := h.threadURL(detail.ID)

	if !sess.ValidateCSRF(deleteKey(detail.ID), token) {
		return fail(errExpired, thread)
	}
	if identity == nil || identity.ID != detail.UserID {
		return fail(apierrors.ErrForbidden.WithMessage("Tu ne peux pas supprimer cette discussion."), thread)
	}

	deleted, err := h.discussionService.DeleteDiscussion(detail.ID, identity.ID)
	if err != nil {
		return fail(h.unexpected(c, err, "Suppression impossible pour le moment."), thread)
	}
	if !deleted {
		return fail(apierrors.ErrInternalError.WithMessage("Suppression impossible pour le moment."), thread)
	}
	return succeed("Discussion supprimée.", h.url("/"))
}

func (h *DiscussionHandler) updateDiscussion(c *gin.Context, sess *session.Context, identity *session.Identity, detail *repository.DiscussionDetail, form discussionForm) Outcome {
	thread := h.threadURL(detail.ID)
	editURL := thread + "&edit=1"

	if !sess.ValidateCSRF(updateKey(detail.ID), form.Token) {
		return fail(apierrors.ErrInvalidCSRF.WithMessage("Ta session a expiré."), editURL)
	}
	notPermitted := apierrors.ErrForbidden.WithMessage("Tu ne peux pas modifier cette discussion.")
	if identity == nil || identity.ID != detail.UserID {
		return fail(notPermitted, thread)
	}

	err := h.discussionService.UpdateDiscussion(detail.ID, identity.ID, form.input())
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return invalid(verr, editURL)
		case errors.Is(err, services.ErrNotPermitted):
			return fail(notPermitted, thread)
		default:
			return fail(h.unexpected(c, err, ""), editURL)
		}
	}
	return succeed("Discussion mise à jour.", thread)
}

// LikeAPI toggles a like and returns the new counter. The csrf_key names the
// thread whose like token is spent.
func (h *DiscussionHandler) LikeAPI(c *gin.Context) {
	sess := session.FromGin(c)

	if _, ok := parseID(c.PostForm("post_id")); !ok {
		apierrors.BadRequest(c, "Identifiant de message invalide.")
		return
	}
	discussionID, ok := idFromKey(c.PostForm("csrf_key"), prefixLike)
	if !ok {
		apierrors.RespondWithError(c, apierrors.ErrInvalidCSRF)
		return
	}

	outcome := h.toggleLike(c, sess, middleware.CurrentIdentity(c), discussionID, c.PostForm("post_id"), c.PostForm("_token"))
	renderJSON(c, sess, outcome.withFreshToken(sess, likeKey(discussionID)))
}

// ReplyAPI posts a reply and returns it.
func (h *DiscussionHandler) ReplyAPI(c *gin.Context) {
	sess := session.FromGin(c)

	discussionID, ok := parseID(c.PostForm("discussion_id"))
	if !ok {
		apierrors.BadRequest(c, "Identifiant de discussion invalide.")
		return
	}
	if c.PostForm("csrf_key") != replyKey(discussionID) {
		apierrors.RespondWithError(c, apierrors.ErrInvalidCSRF)
		return
	}

	outcome := h.reply(c, sess, middleware.CurrentIdentity(c), discussionID, c.PostForm("_token"), c.PostForm("message"))
	if outcome.Err == nil {
		outcome.Message = "Réponse publiée avec succès"
	}
	renderJSON(c, sess, outcome.withFreshToken(sess, replyKey(discussionID)))
}

// SearchAPI powers the instant search box.
func (h *DiscussionHandler) SearchAPI(c *gin.Context) {
	result, err := h.discussionService.SearchDiscussions(c.Query("q"))
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	body := gin.H{
		"success": true,
		"results": dto.ToSearchResultsDTO(result.Results, h.BaseURL),
		"count":   len(result.Results),
	}
	if result.Hint != "" {
		body["message"] = result.Hint
	}
	c.JSON(http.StatusOK, body)
}
