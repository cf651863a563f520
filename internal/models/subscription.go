package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"

	// DefaultCurrency is assumed when a subscription is created without one.
	DefaultCurrency = "USD"
)

var (
	ErrInvalidBillingCycle = errors.New("invalid billing cycle")
	ErrNegativeCost        = errors.New("cost cannot be negative")

	// A resolved subscription carries the provider's logo; keeping a fallback
	// icon key alongside it would let the two drift apart.
	ErrProviderIconConflict = errors.New("provider_id and fallback_icon_key are mutually exclusive")
)

// Subscription is one user-tracked recurring charge. Rows are hard-deleted:
// a removed subscription leaves no soft-delete tombstone behind.
type Subscription struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	NormalizedName  string          `gorm:"type:varchar(255);not null;index" json:"normalized_name"`
	Cost            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	BillingCycle    string          `gorm:"type:varchar(20);not null" json:"billing_cycle"`
	NextBillingDate string          `gorm:"type:varchar(30);not null" json:"next_billing_date"`
	ProviderID      *uuid.UUID      `gorm:"type:uuid;index" json:"provider_id,omitempty"`
	FallbackIconKey *string         `gorm:"type:varchar(20)" json:"fallback_icon_key,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`

	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Provider *Provider `gorm:"foreignKey:ProviderID" json:"-"`
}

func IsValidBillingCycle(cycle string) bool {
	return cycle == BillingCycleMonthly || cycle == BillingCycleYearly
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	return s.Validate()
}

func (s *Subscription) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}

	return s.Validate()
}

func (s *Subscription) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}

	if s.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if !IsValidBillingCycle(s.BillingCycle) {
		return fmt.Errorf("%w: %s", ErrInvalidBillingCycle, s.BillingCycle)
	}

	if s.Cost.IsNegative() {
		return ErrNegativeCost
	}

	if s.NextBillingDate == "" {
		return errors.New("next billing date is required")
	}

	if s.ProviderID != nil && s.FallbackIconKey != nil {
		return ErrProviderIconConflict
	}

	return nil
}

// IsLinked reports whether the subscription has been resolved to a catalog
// provider.
func (s *Subscription) IsLinked() bool {
	return s.ProviderID != nil
}

// LinkProvider assigns a provider and clears any fallback icon, keeping the
// two fields mutually exclusive.
func (s *Subscription) LinkProvider(providerID uuid.UUID) {
	id := providerID
	s.ProviderID = &id
	s.FallbackIconKey = nil
}

// UnlinkProvider clears the provider assignment and carries the given
// fallback icon key in its place.
func (s *Subscription) UnlinkProvider(iconKey string) {
	s.ProviderID = nil
	s.FallbackIconKey = &iconKey
}

// MonthlyCost normalizes the cost to a per-month amount: yearly charges are
// divided across twelve months, rounded to cents.
func (s *Subscription) MonthlyCost() decimal.Decimal {
	if s.BillingCycle == BillingCycleYearly {
		return s.Cost.Div(decimal.NewFromInt(12)).Round(2)
	}
	return s.Cost
}

// YearlyCost normalizes the cost to a per-year amount.
func (s *Subscription) YearlyCost() decimal.Decimal {
	if s.BillingCycle == BillingCycleMonthly {
		return s.Cost.Mul(decimal.NewFromInt(12))
	}
	return s.Cost
}

func (s *Subscription) TableName() string {
	return "subscriptions"
}
