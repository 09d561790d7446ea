package middleware

import (
	"errors"
	"net/http"

	"github.com/caratemple/forum/internal/constants"
	apierrors "github.com/caratemple/forum/internal/errors"
	"github.com/caratemple/forum/internal/logger"
	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/services"
	"github.com/caratemple/forum/internal/session"
	"github.com/gin-gonic/gin"
)

// UserLookup loads the account behind a session identity.
type UserLookup interface {
	GetUser(id uint64) (*models.User, error)
}

// AdminGate decides whether an identity may use the admin area.
type AdminGate interface {
	RequireAdmin(identity *session.Identity) (*session.Identity, error)
}

// LoadIdentity reloads the signed-in account and copies its identity into
// the request context, so role changes apply at once. Sessions whose account
// was deleted are logged out. Guests pass through untouched.
func LoadIdentity(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromGin(c)
		identity := sess.CurrentUser()
		if identity == nil {
			c.Next()
			return
		}

		user, err := users.GetUser(identity.ID)
		switch {
		case err == nil:
			fresh := services.IdentityOf(user)
			identity = &fresh
		case errors.Is(err, services.ErrUserNotFound):
			if err := sess.Logout(); err != nil {
				logger.WithRequest(c).WithError(err).Error("Failed to end session of deleted account")
			}
			c.Next()
			return
		default:
			logger.WithRequest(c).WithError(err).Warn("Failed to reload session identity")
		}

		c.Set(constants.ContextKeyIdentity, identity)
		c.Set(constants.ContextKeyUserID, identity.ID)
		c.Next()
	}
}

// RequireAuth rejects guests on JSON endpoints
func RequireAuth(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			apierrors.Unauthorized(c, message)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects non-administrators on JSON endpoints
func RequireAdmin(gate AdminGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := gate.RequireAdmin(CurrentIdentity(c)); err != nil {
			apierrors.Forbidden(c, apierrors.ErrAdminRequired.Message)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdminPage sends non-administrators back to the home page with a flash
func RequireAdminPage(gate AdminGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := gate.RequireAdmin(CurrentIdentity(c)); err == nil {
			c.Next()
			return
		}

		sess := session.FromGin(c)
		sess.AddFlash(session.FlashError, apierrors.ErrAdminRequired.Message)
		if err := sess.Save(); err != nil {
			_ = c.Error(err)
		}
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// CurrentIdentity returns the identity loaded by LoadIdentity, or nil
func CurrentIdentity(c *gin.Context) *session.Identity {
	value, ok := c.Get(constants.ContextKeyIdentity)
	if !ok {
		return nil
	}
	identity, _ := value.(*session.Identity)
	return identity
}
