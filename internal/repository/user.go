package repository

import (
	"context"
	"errors"
	"fmt"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations. Users are
// managed by the seed and admin commands; no HTTP surface writes them.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	SetRole(ctx context.Context, id uint, role models.Role) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()
	if user.Role == "" {
		user.Role = models.RoleMember
	}
	if !user.Role.Valid() {
		return models.NewValidationError(fmt.Sprintf("unknown role %q", user.Role))
	}
	if err := database.Conn(ctx, r.db).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewConflictError("username or email already taken")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("get", "users")()
	var user models.User
	if err := database.Conn(ctx, r.db).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("get", "users")()
	var user models.User
	if err := database.Conn(ctx, r.db).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	defer observability.TrackQuery("select", "users")()
	users := make([]models.User, 0)
	if err := database.Conn(ctx, r.db).Where("role = ?", role).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users with role %s: %w", role, err)
	}
	return users, nil
}

func (r *userRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	if !role.Valid() {
		return models.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}
	defer observability.TrackQuery("update", "users")()
	result := database.Conn(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("set role of user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
