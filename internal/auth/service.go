package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/avolkov/userbase/internal/config"
	"github.com/avolkov/userbase/internal/database/users"
	"github.com/avolkov/userbase/internal/entities"
)

var (
	ErrFieldsRequired      = errors.New("name, username and password are required")
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrInvalidCredentials  = errors.New("invalid credentials")

	// Re-exported so handlers only import one package for auth errors.
	ErrDuplicateUsername = users.ErrDuplicateUsername
	ErrUserNotFound      = users.ErrUserNotFound
)

// Service handles signup, login verification and profile updates.
type Service struct {
	repo   *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, cfg config.Auth) *Service {
	return &Service{
		repo:   repo,
		config: cfg,
	}
}

// Signup creates a user from submitted form fields. The plaintext password
// is hashed before anything is persisted and is not retained. imageRef is
// the stored filename of an already-saved upload, or empty.
func (s *Service) Signup(name, username, password string, hobbies []string, imageRef string) (*entities.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrFieldsRequired
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Name:         name,
		Username:     username, // folded to lowercase by the repository
		PasswordHash: hash,
		Hobbies:      entities.FilterHobbies(hobbies),
		ProfileImage: imageRef,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a username/password pair. An unknown username and
// a wrong password both return ErrInvalidCredentials so the caller cannot
// learn which half was wrong.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	user, err := s.repo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.repo.GetByID(id)
}

// UpdateProfile applies a partial update to the mutable profile fields.
func (s *Service) UpdateProfile(id uint, changes users.ProfileChanges) (*entities.User, error) {
	if changes.Hobbies != nil {
		filtered := entities.FilterHobbies(*changes.Hobbies)
		changes.Hobbies = &filtered
	}
	return s.repo.UpdateProfile(id, changes)
}
