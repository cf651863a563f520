package dto

import (
	"time"

	"github.com/google/uuid"
)

// Provider Request DTOs

// CreateProviderRequest creates a catalog provider. Slug is optional; when
// omitted it is derived from DisplayName.
type CreateProviderRequest struct {
	DisplayName string  `json:"displayName" validate:"required,min=1,max=255"`
	Slug        string  `json:"slug" validate:"omitempty,provider_slug"`
	LogoPath    *string `json:"logoPath" validate:"omitempty,max=500"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateProviderRequest contains partial provider updates
type UpdateProviderRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,min=1,max=255"`
	Slug        *string `json:"slug" validate:"omitempty,provider_slug"`
	LogoPath    *string `json:"logoPath" validate:"omitempty,max=500"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

// Provider Response DTOs

// ProviderResponse is the wire form of a catalog provider
type ProviderResponse struct {
	ID             uuid.UUID  `json:"id"`
	Slug           string     `json:"slug"`
	DisplayName    string     `json:"displayName"`
	LogoPath       *string    `json:"logoPath,omitempty"`
	LastVerifiedAt *time.Time `json:"lastVerifiedAt,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// ProviderSearchResult pairs a provider with its match score
type ProviderSearchResult struct {
	Provider ProviderResponse `json:"provider"`
	Score    int              `json:"score"`
}

// Reconcile DTOs

// ReconcileLink records a subscription auto-linked during reconciliation
type ReconcileLink struct {
	SubscriptionID   uuid.UUID `json:"subscriptionId"`
	SubscriptionName string    `json:"subscriptionName"`
	ProviderID       uuid.UUID `json:"providerId"`
	ProviderSlug     string    `json:"providerSlug"`
}

// ReconcileSuggestion proposes a near match the operator should review.
// Distance is the edit distance between the subscription's normalized name
// and the provider slug; lower is closer.
type ReconcileSuggestion struct {
	SubscriptionID   uuid.UUID `json:"subscriptionId"`
	SubscriptionName string    `json:"subscriptionName"`
	ProviderID       uuid.UUID `json:"providerId"`
	ProviderSlug     string    `json:"providerSlug"`
	Distance         int       `json:"distance"`
}

// ReconcileReport summarizes one reconciliation run over unlinked
// subscriptions
type ReconcileReport struct {
	Scanned     int                   `json:"scanned"`
	Linked      []ReconcileLink       `json:"linked"`
	Suggestions []ReconcileSuggestion `json:"suggestions"`
}
