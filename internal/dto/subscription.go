package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subscription Request DTOs

// CreateSubscriptionRequest contains the data for a new subscription.
// ProviderID is an explicit override: when set, automatic provider matching
// is skipped entirely.
type CreateSubscriptionRequest struct {
	Name            string          `json:"name" validate:"required,min=1,max=255"`
	Cost            decimal.Decimal `json:"cost" validate:"required"`
	Currency        string          `json:"currency" validate:"omitempty,len=3,alpha"`
	BillingCycle    string          `json:"billingCycle" validate:"required,billing_cycle"`
	NextBillingDate string          `json:"nextBillingDate" validate:"required,billing_date"`
	ProviderID      *uuid.UUID      `json:"providerId" validate:"omitempty"`
}

// UpdateSubscriptionRequest contains partial subscription updates. Nil fields
// are left untouched; a changed name triggers re-normalization and a fresh
// provider resolution pass.
type UpdateSubscriptionRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Cost            *decimal.Decimal `json:"cost" validate:"omitempty"`
	Currency        *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	BillingCycle    *string          `json:"billingCycle" validate:"omitempty,billing_cycle"`
	NextBillingDate *string          `json:"nextBillingDate" validate:"omitempty,billing_date"`
	ProviderID      *uuid.UUID       `json:"providerId" validate:"omitempty"`
}

// OverrideProviderRequest manually sets the provider assignment on a
// subscription, bypassing the matcher. Exactly one of the two fields may be
// set; clearing both detaches the subscription from the catalog.
type OverrideProviderRequest struct {
	ProviderID      *uuid.UUID `json:"providerId" validate:"omitempty"`
	FallbackIconKey *string    `json:"fallbackIconKey" validate:"omitempty,icon_key"`
}

// Subscription Response DTOs

// SubscriptionListResponse wraps the subscription list with its subtotals
type SubscriptionListResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	Summary       *SubscriptionSummary   `json:"summary,omitempty"`
}

// SubscriptionResponse is the wire form of a subscription
type SubscriptionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	NormalizedName  string          `json:"normalizedName"`
	Cost            decimal.Decimal `json:"cost"`
	Currency        string          `json:"currency"`
	BillingCycle    string          `json:"billingCycle"`
	NextBillingDate string          `json:"nextBillingDate"`
	ProviderID      *uuid.UUID      `json:"providerId,omitempty"`
	FallbackIconKey *string         `json:"fallbackIconKey,omitempty"`
}

// CurrencyTotal is the running subtotal for one currency
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Monthly  decimal.Decimal `json:"monthly"`
	Yearly   decimal.Decimal `json:"yearly"`
}

// SubscriptionSummary aggregates a user's recurring spend
type SubscriptionSummary struct {
	Count       int             `json:"count"`
	LinkedCount int             `json:"linkedCount"`
	Totals      []CurrencyTotal `json:"totals"`
}
