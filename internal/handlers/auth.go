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

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	Options
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, opts Options) *AuthHandler {
	return &AuthHandler{
		Options:     opts,
		authService: authService,
	}
}

type registerForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	PasswordConfirm string `form:"password_confirm"`
	Token           string `form:"_token"`
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Token    string `form:"_token"`
}

// RegisterPage shows the registration form.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if h.redirectMember(c) {
		return
	}
	h.renderForm(c, formRegister, http.StatusOK, nil, nil)
}

// Register creates an account and sends the visitor to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	if h.redirectMember(c) {
		return
	}

	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderFormError(c, formRegister, apierrors.ErrInvalidInput, nil)
		return
	}
	values := map[string]string{"username": form.Username, "email": form.Email}

	sess := session.FromGin(c)
	if !sess.ValidateCSRF(formRegister, form.Token) {
		h.renderFormError(c, formRegister, apierrors.ErrInvalidCSRF, values)
		return
	}

	_, err := h.authService.Register(services.RegisterInput{
		Username:        form.Username,
		Email:           form.Email,
		Password:        form.Password,
		PasswordConfirm: form.PasswordConfirm,
	})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			h.renderFormError(c, formRegister, invalid(verr, "").Err, values)
			return
		}
		h.renderFormError(c, formRegister, h.unexpected(c, err, "Impossible de créer ton compte pour le moment."), values)
		return
	}

	monitoring.RegisterSuccess.Inc()
	redirectWithFlash(c, sess, session.FlashSuccess, "Ton compte est créé ! Connecte-toi pour accéder au Temple.", h.url("/login"))
}

// LoginPage shows the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if h.redirectMember(c) {
		return
	}
	h.renderForm(c, formLogin, http.StatusOK, nil, nil)
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	if h.redirectMember(c) {
		return
	}

	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderFormError(c, formLogin, apierrors.ErrInvalidInput, nil)
		return
	}
	values := map[string]string{"email": form.Email}

	sess := session.FromGin(c)
	if !sess.ValidateCSRF(formLogin, form.Token) {
		monitoring.LoginFailure.WithLabelValues("csrf").Inc()
		h.renderFormError(c, formLogin, apierrors.ErrInvalidCSRF, values)
		return
	}

	user, err := h.authService.Authenticate(services.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			monitoring.LoginFailure.WithLabelValues("validation").Inc()
			h.renderFormError(c, formLogin, invalid(verr, "").Err, values)
		case errors.Is(err, services.ErrInvalidCredentials):
			monitoring.LoginFailure.WithLabelValues("invalid_credentials").Inc()
			h.renderFormError(c, formLogin, apierrors.ErrInvalidCredentials, values)
		default:
			h.renderFormError(c, formLogin, h.unexpected(c, err, ""), values)
		}
		return
	}

	if err := sess.Login(services.IdentityOf(user)); err != nil {
		h.renderFormError(c, formLogin, h.unexpected(c, err, ""), values)
		return
	}
	monitoring.LoginSuccess.Inc()
	redirectWithFlash(c, sess, session.FlashSuccess, "Connexion réussie. Bienvenue au Temple !", h.url("/"))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := session.FromGin(c)
	if sess.CurrentUser() == nil {
		c.Redirect(http.StatusSeeOther, h.url("/"))
		return
	}

	if !sess.ValidateCSRF(formLogout, c.PostForm("_token")) {
		redirectWithFlash(c, sess, session.FlashError, apierrors.ErrInvalidCSRF.Message, h.url("/"))
		return
	}

	if err := sess.Logout(); err != nil {
		redirectWithFlash(c, sess, session.FlashError, h.unexpected(c, err, "").Message, h.url("/"))
		return
	}
	redirectWithFlash(c, sess, session.FlashSuccess, "Tu es déconnecté. À très vite au Temple !", h.url("/"))
}

// redirectMember sends signed-in users away from the guest-only forms.
func (h *AuthHandler) redirectMember(c *gin.Context) bool {
	if middleware.CurrentIdentity(c) == nil {
		return false
	}
	c.Redirect(http.StatusSeeOther, h.url("/"))
	return true
}

func (h *AuthHandler) renderForm(c *gin.Context, formKey string, status int, errs, values map[string]string) {
	sess := session.FromGin(c)
	page, err := h.page(c, sess, formKey)
	if err != nil {
		apierrors.RespondWithError(c, h.unexpected(c, err, ""))
		return
	}

	renderView(c, sess, status, dto.FormView{
		PageDTO: page,
		Errors:  errs,
		Values:  values,
	})
}

// renderFormError shows the form again with the error's field messages, or
// with a general message when it carries none.
func (h *AuthHandler) renderFormError(c *gin.Context, formKey string, apiErr *apierrors.APIError, values map[string]string) {
	errs, ok := apiErr.Details.(map[string]string)
	if !ok {
		errs = map[string]string{string(services.FieldGeneral): apiErr.Message}
	}
	h.renderForm(c, formKey, apiErr.Status, errs, values)
}
