package handlers

import (
	"net/http"

	apierrors "github.com/caratemple/forum/internal/errors"
	"github.com/caratemple/forum/internal/services"
	"github.com/caratemple/forum/internal/session"
	"github.com/gin-gonic/gin"
)

// Outcome is the result of one forum action. Page flows render it as a flash
// followed by a redirect, JSON endpoints as a response body.
type Outcome struct {
	Kind     string
	Message  string
	Redirect string
	Err      *apierrors.APIError
	Data     gin.H
}

func succeed(message, redirect string) Outcome {
	return Outcome{Kind: session.FlashSuccess, Message: message, Redirect: redirect}
}

func fail(err *apierrors.APIError, redirect string) Outcome {
	return Outcome{Kind: session.FlashError, Message: err.Message, Redirect: redirect, Err: err}
}

// invalid turns a validation error into a failed outcome carrying the
// per-field messages.
func invalid(verr *services.ValidationError, redirect string) Outcome {
	apiErr := apierrors.NewAPIErrorWithDetails(http.StatusBadRequest, apierrors.ErrCodeInvalidInput, verr.First(), verr.Details())
	return fail(apiErr, redirect)
}

func (o Outcome) with(key string, value interface{}) Outcome {
	data := make(gin.H, len(o.Data)+1)
	for k, v := range o.Data {
		data[k] = v
	}
	data[key] = value
	o.Data = data
	return o
}

// withFreshToken hands a JSON client a new token for the key it just used.
func (o Outcome) withFreshToken(sess *session.Context, formKey string) Outcome {
	if o.Err != nil {
		return o
	}
	token, err := sess.IssueCSRF(formKey)
	if err != nil {
		return o
	}
	return o.with("csrf_token", token)
}

func renderPage(c *gin.Context, sess *session.Context, o Outcome) {
	if o.Message != "" {
		sess.AddFlash(o.Kind, o.Message)
	}
	saveSession(c, sess)
	c.Redirect(http.StatusSeeOther, o.Redirect)
}

func renderJSON(c *gin.Context, sess *session.Context, o Outcome) {
	if !saveSession(c, sess) {
		apierrors.InternalError(c, "")
		return
	}

	if o.Err != nil {
		apierrors.RespondWithError(c, o.Err)
		return
	}

	body := gin.H{"success": true}
	if o.Message != "" {
		body["message"] = o.Message
	}
	for k, v := range o.Data {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
