package repositories

import (
	"errors"
	"fmt"

	"subtrackr/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// SubscriptionRepository handles database operations for subscriptions.
// All reads and writes are scoped to the owning user; subscriptions are
// hard-deleted on removal.
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepositoryInterface {
	return &SubscriptionRepository{
		db: db,
	}
}

// Create creates a new subscription
func (r *SubscriptionRepository) Create(sub *models.Subscription) error {
	if sub == nil {
		return errors.New("subscription cannot be nil")
	}

	if err := r.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetByID retrieves a subscription by its ID
func (r *SubscriptionRepository) GetByID(id uuid.UUID) (*models.Subscription, error) {
	sub := &models.Subscription{ID: id}
	if err := r.db.First(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// GetByIDForUser retrieves a subscription only if it belongs to the user
func (r *SubscriptionRepository) GetByIDForUser(id, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription for user: %w", err)
	}
	return &sub, nil
}

// GetByUserID retrieves all subscriptions for a user, ordered by name
func (r *SubscriptionRepository) GetByUserID(userID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.db.Where("user_id = ?", userID).
		Order("name ASC").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to get subscriptions for user: %w", err)
	}
	return subs, nil
}

// GetUnlinkedByUserID retrieves the user's subscriptions that have no
// provider assignment, the working set for catalog reconciliation
func (r *SubscriptionRepository) GetUnlinkedByUserID(userID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.db.Where("user_id = ? AND provider_id IS NULL", userID).
		Order("name ASC").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to get unlinked subscriptions: %w", err)
	}
	return subs, nil
}

// Update updates a subscription
func (r *SubscriptionRepository) Update(sub *models.Subscription) error {
	if sub == nil {
		return errors.New("subscription cannot be nil")
	}

	if err := r.db.Save(sub).Error; err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return nil
}

// UpdateBillingDates persists the advanced billing dates for the given
// subscriptions in one transaction. Only next_billing_date is written, so a
// concurrent edit of other fields is never clobbered.
func (r *SubscriptionRepository) UpdateBillingDates(subs []models.Subscription) error {
	if len(subs) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, sub := range subs {
			if err := tx.Model(&models.Subscription{ID: sub.ID}).
				Update("next_billing_date", sub.NextBillingDate).Error; err != nil {
				return fmt.Errorf("failed to update billing date for %s: %w", sub.ID, err)
			}
		}
		return nil
	})
}

// UpdateProviderAssignment sets the provider link and fallback icon key
// together so the pair can never drift out of sync
func (r *SubscriptionRepository) UpdateProviderAssignment(id uuid.UUID, providerID *uuid.UUID, fallbackIconKey *string) error {
	updates := map[string]interface{}{
		"provider_id":       providerID,
		"fallback_icon_key": fallbackIconKey,
	}

	result := r.db.Model(&models.Subscription{ID: id}).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update provider assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// Delete permanently removes a subscription owned by the user
func (r *SubscriptionRepository) Delete(id, userID uuid.UUID) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Subscription{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}
