package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubscription() Subscription {
	icon := "card"
	return Subscription{
		UserID:          uuid.New(),
		Name:            "Netflix",
		NormalizedName:  "netflix",
		Cost:            decimal.NewFromFloat(15.99),
		Currency:        DefaultCurrency,
		BillingCycle:    BillingCycleMonthly,
		NextBillingDate: "2024-05-15",
		FallbackIconKey: &icon,
	}
}

func TestSubscription_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Subscription)
		wantErr error
	}{
		{
			name:   "valid subscription",
			mutate: func(s *Subscription) {},
		},
		{
			name:    "invalid billing cycle",
			mutate:  func(s *Subscription) { s.BillingCycle = "weekly" },
			wantErr: ErrInvalidBillingCycle,
		},
		{
			name:    "negative cost",
			mutate:  func(s *Subscription) { s.Cost = decimal.NewFromFloat(-1.00) },
			wantErr: ErrNegativeCost,
		},
		{
			name: "provider and fallback icon together",
			mutate: func(s *Subscription) {
				id := uuid.New()
				s.ProviderID = &id
			},
			wantErr: ErrProviderIconConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubscription()
			tt.mutate(&sub)

			err := sub.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSubscription_Validate_RequiredFields(t *testing.T) {
	sub := validSubscription()
	sub.Name = ""
	assert.Error(t, sub.Validate())

	sub = validSubscription()
	sub.UserID = uuid.Nil
	assert.Error(t, sub.Validate())

	sub = validSubscription()
	sub.NextBillingDate = ""
	assert.Error(t, sub.Validate())
}

func TestIsValidBillingCycle(t *testing.T) {
	assert.True(t, IsValidBillingCycle(BillingCycleMonthly))
	assert.True(t, IsValidBillingCycle(BillingCycleYearly))
	assert.False(t, IsValidBillingCycle("weekly"))
	assert.False(t, IsValidBillingCycle(""))
}

func TestSubscription_LinkProvider(t *testing.T) {
	sub := validSubscription()
	require.False(t, sub.IsLinked())

	providerID := uuid.New()
	sub.LinkProvider(providerID)

	assert.True(t, sub.IsLinked())
	assert.Equal(t, providerID, *sub.ProviderID)
	assert.Nil(t, sub.FallbackIconKey)
	assert.NoError(t, sub.Validate())
}

func TestSubscription_UnlinkProvider(t *testing.T) {
	sub := validSubscription()
	sub.LinkProvider(uuid.New())

	sub.UnlinkProvider("star")

	assert.False(t, sub.IsLinked())
	require.NotNil(t, sub.FallbackIconKey)
	assert.Equal(t, "star", *sub.FallbackIconKey)
	assert.NoError(t, sub.Validate())
}

func TestSubscription_MonthlyCost(t *testing.T) {
	monthly := validSubscription()
	assert.Equal(t, "15.99", monthly.MonthlyCost().String())

	yearly := validSubscription()
	yearly.BillingCycle = BillingCycleYearly
	yearly.Cost = decimal.NewFromFloat(120.00)
	assert.Equal(t, "10", yearly.MonthlyCost().String())

	// Uneven yearly amounts round to cents
	yearly.Cost = decimal.NewFromFloat(100.00)
	assert.Equal(t, "8.33", yearly.MonthlyCost().String())
}

func TestSubscription_YearlyCost(t *testing.T) {
	monthly := validSubscription()
	assert.Equal(t, "191.88", monthly.YearlyCost().String())

	yearly := validSubscription()
	yearly.BillingCycle = BillingCycleYearly
	yearly.Cost = decimal.NewFromFloat(120.00)
	assert.Equal(t, "120", yearly.YearlyCost().String())
}
