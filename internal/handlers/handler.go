package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/caratemple/forum/internal/dto"
	apierrors "github.com/caratemple/forum/internal/errors"
	"github.com/caratemple/forum/internal/logger"
	"github.com/caratemple/forum/internal/middleware"
	"github.com/caratemple/forum/internal/session"
	"github.com/gin-gonic/gin"
)

// Options carries the settings shared by every handler.
type Options struct {
	BaseURL string
	Debug   bool
	Now     func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) url(path string) string {
	return strings.TrimRight(o.BaseURL, "/") + path
}

func (o Options) threadURL(discussionID uint64) string {
	return dto.DiscussionURL(o.BaseURL, discussionID)
}

// unexpected logs err and returns the generic error shown to the user.
// Debug mode appends the internal message.
func (o Options) unexpected(c *gin.Context, err error, message string) *apierrors.APIError {
	logger.WithRequest(c).WithError(err).Error("Unexpected error")

	apiErr := apierrors.ErrInternalError
	if message != "" {
		apiErr = apiErr.WithMessage(message)
	}
	if o.Debug {
		apiErr = apiErr.WithMessage(apiErr.Message + " (" + err.Error() + ")")
	}
	return apiErr
}

// page builds the common part of a view model. It consumes pending flashes
// and issues a token for every form key.
func (o Options) page(c *gin.Context, sess *session.Context, formKeys ...string) (dto.PageDTO, error) {
	identity := middleware.CurrentIdentity(c)
	if identity != nil {
		formKeys = append(formKeys, formLogout)
	}

	csrf := make(map[string]string, len(formKeys))
	for _, key := range formKeys {
		token, err := sess.IssueCSRF(key)
		if err != nil {
			return dto.PageDTO{}, err
		}
		csrf[key] = token
	}

	flashes := sess.Flashes()
	if flashes == nil {
		flashes = []session.Flash{}
	}

	return dto.PageDTO{
		CurrentUser: dto.ToCurrentUserDTO(identity),
		Flashes:     flashes,
		CSRF:        csrf,
	}, nil
}

// renderView saves the session and writes a view model. A view whose
// tokens could not be stored is not served.
func renderView(c *gin.Context, sess *session.Context, status int, view interface{}) {
	if !saveSession(c, sess) {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(status, view)
}

func saveSession(c *gin.Context, sess *session.Context) bool {
	if err := sess.Save(); err != nil {
		logger.WithRequest(c).WithError(err).Error("Failed to save session")
		return false
	}
	return true
}

// parseID accepts strictly positive integers only.
func parseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func redirectWithFlash(c *gin.Context, sess *session.Context, kind, message, location string) {
	sess.AddFlash(kind, message)
	saveSession(c, sess)
	c.Redirect(http.StatusSeeOther, location)
}
