// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByUsername("Alice")
package users

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/avolkov/userbase/internal/entities"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Fold normalizes a username for storage and lookup. Creation and login
// must apply the same rule: if they ever diverge, a differently-cased
// signup could slip past the uniqueness check or a login could miss its
// own account.
func Fold(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Create persists a new user. The username is folded before insert and
// the unique index is authoritative for duplicate detection, so two
// concurrent signups for the same name cannot both succeed.
func (r *Repository) Create(user *entities.User) error {
	user.Username = Fold(user.Username)
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username, case-insensitively.
func (r *Repository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", Fold(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ProfileChanges carries the mutable profile fields for a partial update.
// Nil pointers leave a field untouched. Username and password are not
// mutable through this path.
type ProfileChanges struct {
	Name         *string
	Hobbies      *[]string
	ProfileImage *string
}

// UpdateProfile applies a partial update and returns the updated user.
func (r *Repository) UpdateProfile(id uint, changes ProfileChanges) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.Hobbies != nil {
		user.Hobbies = *changes.Hobbies
	}
	if changes.ProfileImage != nil {
		user.ProfileImage = *changes.ProfileImage
	}

	err := r.db.Model(&user).
		Select("name", "hobbies", "profile_image").
		Updates(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// ReferencedImages returns the set of image filenames any user record
// points at. The upload sweeper treats everything else as an orphan.
func (r *Repository) ReferencedImages() (map[string]bool, error) {
	var names []string
	err := r.db.Model(&entities.User{}).
		Where("profile_image <> ''").
		Pluck("profile_image", &names).Error
	if err != nil {
		return nil, err
	}
	inUse := make(map[string]bool, len(names))
	for _, n := range names {
		inUse[n] = true
	}
	return inUse, nil
}
