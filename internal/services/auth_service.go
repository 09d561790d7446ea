package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/caratemple/forum/internal/constants"
	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/repository"
	"github.com/caratemple/forum/internal/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrAdminRequired        = errors.New("administrator access required")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	hashCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hashCost: bcrypt.DefaultCost,
	}
}

// RegisterInput represents the registration form.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// Register validates the form and creates a regular member.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	verr := NewValidationError()

	switch {
	case username == "":
		verr.Add(FieldUsername, "Le pseudo est requis.")
	case !usernamePattern.MatchString(username):
		verr.Add(FieldUsername, "Utilise 3 à 20 caractères alphanumériques ou underscores.")
	}

	switch {
	case email == "":
		verr.Add(FieldEmail, "L'adresse e-mail est requise.")
	case !isEmail(email):
		verr.Add(FieldEmail, "Adresse e-mail invalide.")
	}

	switch {
	case input.Password == "":
		verr.Add(FieldPassword, "Le mot de passe est requis.")
	case !strongPassword(input.Password):
		verr.Add(FieldPassword, "8 caractères minimum avec lettres et chiffres.")
	}

	switch {
	case input.PasswordConfirm == "":
		verr.Add(FieldPasswordConfirm, "La confirmation est requise.")
	case input.PasswordConfirm != input.Password:
		verr.Add(FieldPasswordConfirm, "Les mots de passe ne correspondent pas.")
	}

	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	usernameTaken, emailTaken, err := s.userRepo.FindConflicts(username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing accounts: %w", err)
	}
	if usernameTaken {
		verr.Add(FieldUsername, "Ce pseudo est déjà utilisé.")
	}
	if emailTaken {
		verr.Add(FieldEmail, "Cette adresse e-mail est déjà enregistrée.")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			verr.Add(FieldGeneral, "Ce pseudo ou cette adresse e-mail est déjà utilisé.")
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Authenticate verifies credentials and returns the authenticated user.
// Unknown emails and wrong passwords yield the same error.
func (s *AuthService) Authenticate(input LoginInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)

	verr := NewValidationError()
	switch {
	case email == "":
		verr.Add(FieldEmail, "L'adresse e-mail est requise.")
	case !isEmail(email):
		verr.Add(FieldEmail, "Adresse e-mail invalide.")
	}
	if input.Password == "" {
		verr.Add(FieldPassword, "Le mot de passe est requis.")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// RequireAdmin returns identity when it belongs to an administrator.
func (s *AuthService) RequireAdmin(identity *session.Identity) (*session.Identity, error) {
	if identity == nil || !identity.IsAdmin {
		return nil, ErrAdminRequired
	}
	return identity, nil
}

// IdentityOf builds the session identity of user.
func IdentityOf(user *models.User) session.Identity {
	return session.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}
}

func strongPassword(password string) bool {
	if len(password) < constants.MinPasswordLength {
		return false
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
