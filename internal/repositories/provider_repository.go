package repositories

import (
	"errors"
	"fmt"

	"subtrackr/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProviderNotFound      = errors.New("provider not found")
	ErrProviderAlreadyExists = errors.New("provider with this slug already exists")
)

// ProviderRepository handles database operations for the provider catalog
type ProviderRepository struct {
	db *gorm.DB
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db *gorm.DB) ProviderRepositoryInterface {
	return &ProviderRepository{
		db: db,
	}
}

// Create creates a new catalog entry
func (r *ProviderRepository) Create(provider *models.Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	if err := r.db.Create(provider).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrProviderAlreadyExists
		}
		return fmt.Errorf("failed to create provider: %w", err)
	}

	return nil
}

// GetByID retrieves a catalog entry by its ID
func (r *ProviderRepository) GetByID(id uuid.UUID) (*models.Provider, error) {
	provider := &models.Provider{ID: id}
	if err := r.db.First(provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return provider, nil
}

// GetBySlug retrieves a catalog entry by its slug
func (r *ProviderRepository) GetBySlug(slug string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.Where("slug = ?", slug).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider by slug: %w", err)
	}
	return &provider, nil
}

// GetAll retrieves the full catalog ordered alphabetically by display name.
// The matcher relies on this ordering for stable tie-breaking.
func (r *ProviderRepository) GetAll() ([]models.Provider, error) {
	var providers []models.Provider
	if err := r.db.Order("display_name ASC").Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

// Update updates a catalog entry
func (r *ProviderRepository) Update(provider *models.Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	if err := r.db.Save(provider).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrProviderAlreadyExists
		}
		return fmt.Errorf("failed to update provider: %w", err)
	}

	return nil
}

// Delete removes a catalog entry. Subscriptions pointing at it keep working:
// the foreign key clears to NULL and they fall back to a generated icon on
// their next save.
func (r *ProviderRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subscription{}).
			Where("provider_id = ?", id).
			Update("provider_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink subscriptions: %w", err)
		}

		result := tx.Delete(&models.Provider{ID: id})
		if result.Error != nil {
			return fmt.Errorf("failed to delete provider: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProviderNotFound
		}
		return nil
	})
}

// Count returns the number of catalog entries
func (r *ProviderRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Provider{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count providers: %w", err)
	}
	return count, nil
}
