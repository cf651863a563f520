package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"

	"subtrackr/internal/billing"
	"subtrackr/internal/dto"
	"subtrackr/internal/matching"
	"subtrackr/internal/models"
	"subtrackr/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownProvider = errors.New("provider does not exist")
	ErrInvalidIconKey  = errors.New("invalid fallback icon key")
)

// Provider resolution outcomes reported to metrics.
const (
	resolutionMatched    = "matched"
	resolutionFallback   = "fallback"
	resolutionOverride   = "override"
	resolutionReconciled = "reconciled"
)

// SubscriptionService handles subscription business logic. Billing dates are
// rolled forward lazily on read: List advances and persists, Summary advances
// in memory only.
type SubscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepositoryInterface
	providerRepo     repositories.ProviderRepositoryInterface
	auditRepo        repositories.AuditLogRepositoryInterface
	clock            billing.Clock
	rng              *rand.Rand
	metrics          MetricsRecorderInterface
	logger           *slog.Logger
}

// NewSubscriptionService creates a new subscription service. The random
// source feeds fallback icon selection for names that normalize to nothing;
// injecting it keeps that path replayable in tests.
func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepositoryInterface,
	providerRepo repositories.ProviderRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	clock billing.Clock,
	rng *rand.Rand,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) SubscriptionServiceInterface {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		providerRepo:     providerRepo,
		auditRepo:        auditRepo,
		clock:            clock,
		rng:              rng,
		metrics:          metrics,
		logger:           logger,
	}
}

// Create stores a new subscription for the user, resolving its provider
// assignment in the process. An explicit ProviderID in the request skips the
// matcher entirely.
func (s *SubscriptionService) Create(userID uuid.UUID, req *dto.CreateSubscriptionRequest) (*models.Subscription, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = models.DefaultCurrency
	}

	sub := &models.Subscription{
		UserID:          userID,
		Name:            strings.TrimSpace(req.Name),
		NormalizedName:  matching.Normalize(req.Name),
		Cost:            req.Cost,
		Currency:        currency,
		BillingCycle:    req.BillingCycle,
		NextBillingDate: req.NextBillingDate,
	}

	if req.ProviderID != nil {
		provider, err := s.providerRepo.GetByID(*req.ProviderID)
		if err != nil {
			if errors.Is(err, repositories.ErrProviderNotFound) {
				return nil, ErrUnknownProvider
			}
			return nil, fmt.Errorf("failed to load provider: %w", err)
		}
		sub.LinkProvider(provider.ID)
		s.metrics.RecordProviderResolution(resolutionOverride)
	} else if err := s.resolveProvider(sub); err != nil {
		return nil, err
	}

	if err := s.subscriptionRepo.Create(sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.Info("subscription created",
		"subscription_id", sub.ID,
		"user_id", userID,
		"linked", sub.IsLinked())

	return sub, nil
}

// Get retrieves a single subscription owned by the user
func (s *SubscriptionService) Get(subscriptionID, userID uuid.UUID) (*models.Subscription, error) {
	return s.subscriptionRepo.GetByIDForUser(subscriptionID, userID)
}

// List returns the user's subscriptions with billing dates rolled forward to
// today. Only the rows whose dates actually moved are written back.
func (s *SubscriptionService) List(userID uuid.UUID) ([]models.Subscription, error) {
	subs, err := s.subscriptionRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	today := s.clock.Now()

	var changed []models.Subscription
	cappedCount := 0
	for i := range subs {
		next, capped, ok := billing.RollForwardChecked(subs[i].NextBillingDate, subs[i].BillingCycle, today)
		if capped {
			cappedCount++
			s.logger.Warn("billing advance hit iteration cap",
				"subscription_id", subs[i].ID,
				"next_billing_date", subs[i].NextBillingDate)
		}
		if !ok || next == subs[i].NextBillingDate {
			continue
		}
		subs[i].NextBillingDate = next
		changed = append(changed, subs[i])
	}

	if len(changed) > 0 {
		if err := s.subscriptionRepo.UpdateBillingDates(changed); err != nil {
			return nil, fmt.Errorf("failed to persist advanced billing dates: %w", err)
		}
	}

	s.metrics.RecordBillingAdvance(len(changed), cappedCount)

	return subs, nil
}

// Update applies partial changes to a subscription. A changed name triggers
// re-normalization and a fresh provider resolution pass, unless the request
// pins a provider explicitly.
func (s *SubscriptionService) Update(subscriptionID, userID uuid.UUID, req *dto.UpdateSubscriptionRequest) (*models.Subscription, error) {
	sub, err := s.subscriptionRepo.GetByIDForUser(subscriptionID, userID)
	if err != nil {
		return nil, err
	}

	nameChanged := false
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed != sub.Name {
			sub.Name = trimmed
			sub.NormalizedName = matching.Normalize(trimmed)
			nameChanged = true
		}
	}
	if req.Cost != nil {
		sub.Cost = *req.Cost
	}
	if req.Currency != nil {
		sub.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.BillingCycle != nil {
		sub.BillingCycle = *req.BillingCycle
	}
	if req.NextBillingDate != nil {
		sub.NextBillingDate = *req.NextBillingDate
	}

	switch {
	case req.ProviderID != nil:
		provider, err := s.providerRepo.GetByID(*req.ProviderID)
		if err != nil {
			if errors.Is(err, repositories.ErrProviderNotFound) {
				return nil, ErrUnknownProvider
			}
			return nil, fmt.Errorf("failed to load provider: %w", err)
		}
		sub.LinkProvider(provider.ID)
		s.metrics.RecordProviderResolution(resolutionOverride)
	case nameChanged:
		if err := s.resolveProvider(sub); err != nil {
			return nil, err
		}
	}

	if err := s.subscriptionRepo.Update(sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	return sub, nil
}

// Delete removes a subscription owned by the user
func (s *SubscriptionService) Delete(subscriptionID, userID uuid.UUID) error {
	return s.subscriptionRepo.Delete(subscriptionID, userID)
}

// Summary aggregates the user's recurring spend per currency, with billing
// dates advanced in memory so stale rows do not distort the picture.
func (s *SubscriptionService) Summary(userID uuid.UUID) (*dto.SubscriptionSummary, error) {
	subs, err := s.subscriptionRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	advanced, _ := billing.AdvanceAll(subs, s.clock.Now())

	type running struct {
		monthly decimal.Decimal
		yearly  decimal.Decimal
	}
	totals := make(map[string]*running)
	linked := 0

	for i := range advanced {
		sub := &advanced[i]
		if sub.IsLinked() {
			linked++
		}
		t, ok := totals[sub.Currency]
		if !ok {
			t = &running{}
			totals[sub.Currency] = t
		}
		t.monthly = t.monthly.Add(sub.MonthlyCost())
		t.yearly = t.yearly.Add(sub.YearlyCost())
	}

	summary := &dto.SubscriptionSummary{
		Count:       len(advanced),
		LinkedCount: linked,
		Totals:      make([]dto.CurrencyTotal, 0, len(totals)),
	}
	for currency, t := range totals {
		summary.Totals = append(summary.Totals, dto.CurrencyTotal{
			Currency: currency,
			Monthly:  t.monthly,
			Yearly:   t.yearly,
		})
	}
	sort.Slice(summary.Totals, func(i, j int) bool {
		return summary.Totals[i].Currency < summary.Totals[j].Currency
	})

	return summary, nil
}

// OverrideProvider manually sets the provider assignment on a subscription,
// bypassing the matcher. At most one of providerID and fallbackIconKey may be
// set; clearing both detaches the subscription entirely.
func (s *SubscriptionService) OverrideProvider(subscriptionID uuid.UUID, providerID *uuid.UUID, fallbackIconKey *string) (*models.Subscription, error) {
	if providerID != nil && fallbackIconKey != nil {
		return nil, models.ErrProviderIconConflict
	}
	if fallbackIconKey != nil && !matching.IsValidFallbackIconKey(*fallbackIconKey) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidIconKey, *fallbackIconKey)
	}
	if providerID != nil {
		if _, err := s.providerRepo.GetByID(*providerID); err != nil {
			if errors.Is(err, repositories.ErrProviderNotFound) {
				return nil, ErrUnknownProvider
			}
			return nil, fmt.Errorf("failed to load provider: %w", err)
		}
	}

	sub, err := s.subscriptionRepo.GetByID(subscriptionID)
	if err != nil {
		return nil, err
	}

	if err := s.subscriptionRepo.UpdateProviderAssignment(subscriptionID, providerID, fallbackIconKey); err != nil {
		return nil, fmt.Errorf("failed to override provider assignment: %w", err)
	}

	sub.ProviderID = providerID
	sub.FallbackIconKey = fallbackIconKey

	s.metrics.RecordProviderResolution(resolutionOverride)
	s.auditOverride(sub, providerID, fallbackIconKey)

	return sub, nil
}

// resolveProvider links the subscription to an exact catalog match, or falls
// back to a deterministic icon seeded by the normalized name. Names that
// normalize to nothing get a random icon instead.
func (s *SubscriptionService) resolveProvider(sub *models.Subscription) error {
	catalog, err := catalogSnapshot(s.providerRepo, s.logger)
	if err != nil {
		return err
	}

	if match := matching.FindExactMatch(catalog, sub.Name); match != nil {
		sub.LinkProvider(match.ID)
		s.metrics.RecordProviderResolution(resolutionMatched)
		return nil
	}

	var key string
	if sub.NormalizedName != "" {
		key = matching.PickFallbackIcon(sub.NormalizedName)
	} else {
		key = matching.RandomFallbackIcon(s.rng)
	}
	sub.UnlinkProvider(key)
	s.metrics.RecordProviderResolution(resolutionFallback)

	return nil
}

func (s *SubscriptionService) auditOverride(sub *models.Subscription, providerID *uuid.UUID, fallbackIconKey *string) {
	log := &models.AuditLog{
		UserID:     &sub.UserID,
		Action:     models.AuditActionSubscriptionOverride,
		Resource:   "subscription",
		ResourceID: sub.ID.String(),
	}
	if providerID != nil {
		log.SetMetadata("provider_id", providerID.String())
	}
	if fallbackIconKey != nil {
		log.SetMetadata("fallback_icon_key", *fallbackIconKey)
	}

	if err := s.auditRepo.Create(log); err != nil {
		s.logger.Error("failed to create audit log for provider override", "error", err)
	}
}
