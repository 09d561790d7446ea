// Package session wraps the per-request session store with the forum's
// state: the signed-in identity, flash messages, CSRF tokens and the
// discussion view log.
package session

import (
	"encoding/gob"
	"time"

	"github.com/caratemple/forum/internal/constants"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	gsessions "github.com/gorilla/sessions"
)

const (
	keyIdentity = "identity"
	keyCSRF     = "csrf_tokens"
	keyViews    = "discussion_views"
)

// Values is the part of a session store the forum relies on. It is satisfied
// by sessions.Session and by MemoryValues. Implementations that can also
// issue a new session id implement Regenerator.
type Values interface {
	Get(key interface{}) interface{}
	Set(key interface{}, val interface{})
	Delete(key interface{})
	Clear()
	AddFlash(value interface{}, vars ...string)
	Flashes(vars ...string) []interface{}
	Save() error
}

// Regenerator drops the stored session so the next Save starts a new one
// under a fresh id.
type Regenerator interface {
	Regenerate() error
}

// Identity is the minimal user record kept in the session after login.
type Identity struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

func init() {
	gob.Register(Identity{})
	gob.Register(map[string]tokenEntry{})
	gob.Register(map[uint64]int64{})
}

// Context is the session state of a single request.
type Context struct {
	values   Values
	now      func() time.Time
	tokenTTL time.Duration
}

type Option func(*Context)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Context) {
		c.now = now
	}
}

// WithTokenTTL makes CSRF tokens expire ttl after being issued. Zero keeps
// tokens valid for the lifetime of the session.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Context) {
		c.tokenTTL = ttl
	}
}

func New(values Values, opts ...Option) *Context {
	c := &Context{
		values: values,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromGin returns the session context attached to the request, creating it
// from the gin-contrib session when no middleware did so.
func FromGin(c *gin.Context, opts ...Option) *Context {
	if existing, ok := c.Get(constants.ContextKeySession); ok {
		if sc, ok := existing.(*Context); ok {
			return sc
		}
	}
	sc := New(storeValues{sessions.Default(c)}, opts...)
	c.Set(constants.ContextKeySession, sc)
	return sc
}

// CurrentUser returns the signed-in identity, or nil.
func (c *Context) CurrentUser() *Identity {
	identity, ok := c.values.Get(keyIdentity).(Identity)
	if !ok || identity.ID == 0 {
		return nil
	}
	return &identity
}

// Login moves the request to a new session id and stores identity in it.
// Nothing gathered before authentication survives.
func (c *Context) Login(identity Identity) error {
	if err := c.regenerate(); err != nil {
		return err
	}
	c.values.Set(keyIdentity, identity)
	return nil
}

// Logout forgets the identity along with the rest of the session and
// retires its id.
func (c *Context) Logout() error {
	return c.regenerate()
}

func (c *Context) regenerate() error {
	c.values.Clear()
	if r, ok := c.values.(Regenerator); ok {
		return r.Regenerate()
	}
	return nil
}

// Save persists the session. It must run before the response is written.
func (c *Context) Save() error {
	return c.values.Save()
}

// storeValues is a gin-contrib session that can be regenerated.
type storeValues struct {
	sessions.Session
}

// Regenerate expires the current session, deleting its server-side record
// and cookie, then clears the id so the next Save mints a new one.
func (s storeValues) Regenerate() error {
	backed, ok := s.Session.(interface{ Session() *gsessions.Session })
	if !ok {
		return nil
	}
	current := backed.Session()
	if current == nil || current.Options == nil {
		return nil
	}
	keep := *current.Options

	s.Options(sessions.Options{
		Path:     keep.Path,
		Domain:   keep.Domain,
		MaxAge:   -1,
		Secure:   keep.Secure,
		HttpOnly: keep.HttpOnly,
		SameSite: keep.SameSite,
	})
	if err := s.Save(); err != nil {
		return err
	}

	current.ID = ""
	current.IsNew = true
	current.Options = &keep
	return nil
}
