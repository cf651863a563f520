package services

import (
	"time"

	"subtrackr/internal/dto"
	"subtrackr/internal/matching"
	"subtrackr/internal/models"

	"github.com/google/uuid"
)

// AuthServiceInterface defines authentication business operations
type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error)
	Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error)
	RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error)
	Logout(accessToken, ipAddress, userAgent string) error
	Profile(userID uuid.UUID) (*models.User, error)
}

// TokenServiceInterface defines JWT token operations
type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

// PasswordServiceInterface defines password hashing and validation operations
type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

// SubscriptionServiceInterface defines subscription business operations.
// Create and Update recompute the normalized name and re-run provider
// resolution unless an explicit provider override is supplied; List rolls
// billing dates forward and persists only the rows that moved.
type SubscriptionServiceInterface interface {
	Create(userID uuid.UUID, req *dto.CreateSubscriptionRequest) (*models.Subscription, error)
	Get(subscriptionID, userID uuid.UUID) (*models.Subscription, error)
	List(userID uuid.UUID) ([]models.Subscription, error)
	Update(subscriptionID, userID uuid.UUID, req *dto.UpdateSubscriptionRequest) (*models.Subscription, error)
	Delete(subscriptionID, userID uuid.UUID) error
	Summary(userID uuid.UUID) (*dto.SubscriptionSummary, error)
	OverrideProvider(subscriptionID uuid.UUID, providerID *uuid.UUID, fallbackIconKey *string) (*models.Subscription, error)
}

// ProviderServiceInterface defines catalog curation and matching operations
type ProviderServiceInterface interface {
	Catalog() ([]models.Provider, error)
	Search(query string) ([]matching.MatchResult, error)
	Create(req *dto.CreateProviderRequest) (*models.Provider, error)
	Update(providerID uuid.UUID, req *dto.UpdateProviderRequest) (*models.Provider, error)
	Delete(providerID uuid.UUID) error
	Verify(providerID uuid.UUID) (*models.Provider, error)
	Reconcile(userID uuid.UUID) (*dto.ReconcileReport, error)
}

// MetricsRecorderInterface abstracts metric emission for services
type MetricsRecorderInterface interface {
	RecordCatalogSearch(hit bool)
	RecordProviderResolution(outcome string)
	RecordBillingAdvance(changed int, capped int)
	RecordAuthEvent(event string)
	RecordRequestDuration(operation string, duration time.Duration)
}
