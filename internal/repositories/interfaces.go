package repositories

import (
	"time"

	"subtrackr/internal/models"

	"github.com/google/uuid"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdatePasswordHash(userID uuid.UUID, passwordHash string) error
	UpdateFailedLoginAttempts(user *models.User) error
	ResetFailedLoginAttempts(userID uuid.UUID) error
	Delete(userID uuid.UUID) error
}

// SubscriptionRepositoryInterface defines the contract for subscription repository operations
type SubscriptionRepositoryInterface interface {
	Create(sub *models.Subscription) error
	GetByID(id uuid.UUID) (*models.Subscription, error)
	GetByIDForUser(id, userID uuid.UUID) (*models.Subscription, error)
	GetByUserID(userID uuid.UUID) ([]models.Subscription, error)
	GetUnlinkedByUserID(userID uuid.UUID) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
	UpdateBillingDates(subs []models.Subscription) error
	UpdateProviderAssignment(id uuid.UUID, providerID *uuid.UUID, fallbackIconKey *string) error
	Delete(id, userID uuid.UUID) error
}

// ProviderRepositoryInterface defines the contract for provider catalog operations
type ProviderRepositoryInterface interface {
	Create(provider *models.Provider) error
	GetByID(id uuid.UUID) (*models.Provider, error)
	GetBySlug(slug string) (*models.Provider, error)
	GetAll() ([]models.Provider, error)
	Update(provider *models.Provider) error
	Delete(id uuid.UUID) error
	Count() (int64, error)
}

// AuditLogRepositoryInterface defines the contract for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	GetByUserID(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	GetByAction(action string, offset, limit int) ([]*models.AuditLog, int64, error)
}

// RefreshTokenRepositoryInterface defines the contract for refresh token repository operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	GetByTokenHash(tokenHash string) (*models.RefreshToken, error)
	Update(token *models.RefreshToken) error
	RevokeAllForUser(userID uuid.UUID) error
	DeleteExpired() (int64, error)
	DeleteRevokedOlderThan(duration time.Duration) (int64, error)
}

// BlacklistedTokenRepositoryInterface defines the contract for blacklisted token repository operations
type BlacklistedTokenRepositoryInterface interface {
	Create(token *models.BlacklistedToken) error
	GetByJTI(jti string) (*models.BlacklistedToken, error)
	DeleteExpired() (int64, error)
}
