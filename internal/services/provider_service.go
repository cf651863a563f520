package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"subtrackr/internal/billing"
	"subtrackr/internal/catalog"
	"subtrackr/internal/dto"
	"subtrackr/internal/matching"
	"subtrackr/internal/models"
	"subtrackr/internal/repositories"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
)

var ErrEmptySlug = errors.New("display name normalizes to an empty slug")

// maxSuggestionDistance bounds how far a near match may be from the
// subscription's normalized name before it is not worth suggesting.
const maxSuggestionDistance = 3

// ProviderService handles catalog curation and matching
type ProviderService struct {
	providerRepo     repositories.ProviderRepositoryInterface
	subscriptionRepo repositories.SubscriptionRepositoryInterface
	auditRepo        repositories.AuditLogRepositoryInterface
	clock            billing.Clock
	metrics          MetricsRecorderInterface
	logger           *slog.Logger
}

// NewProviderService creates a new provider catalog service
func NewProviderService(
	providerRepo repositories.ProviderRepositoryInterface,
	subscriptionRepo repositories.SubscriptionRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	clock billing.Clock,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) ProviderServiceInterface {
	return &ProviderService{
		providerRepo:     providerRepo,
		subscriptionRepo: subscriptionRepo,
		auditRepo:        auditRepo,
		clock:            clock,
		metrics:          metrics,
		logger:           logger,
	}
}

// Catalog returns every provider ordered by display name. An empty or
// unreachable store yields the builtin seed catalog so matching keeps working
// before any curation has happened.
func (s *ProviderService) Catalog() ([]models.Provider, error) {
	return catalogSnapshot(s.providerRepo, s.logger)
}

// Search ranks the catalog against a partial query for autocomplete
func (s *ProviderService) Search(query string) ([]matching.MatchResult, error) {
	providers, err := s.Catalog()
	if err != nil {
		return nil, err
	}

	results := matching.Search(providers, query)
	s.metrics.RecordCatalogSearch(len(results) > 0)

	return results, nil
}

// Create adds a provider to the catalog. The slug is derived from the display
// name when the request does not supply one.
func (s *ProviderService) Create(req *dto.CreateProviderRequest) (*models.Provider, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = matching.Normalize(req.DisplayName)
	}
	if slug == "" {
		return nil, ErrEmptySlug
	}

	provider := &models.Provider{
		Slug:        slug,
		DisplayName: strings.TrimSpace(req.DisplayName),
		LogoPath:    req.LogoPath,
		Notes:       req.Notes,
	}

	if err := s.providerRepo.Create(provider); err != nil {
		return nil, err
	}

	s.audit(models.AuditActionProviderCreated, provider, map[string]interface{}{
		"slug": provider.Slug,
	})

	return provider, nil
}

// Update applies partial changes to a catalog provider
func (s *ProviderService) Update(providerID uuid.UUID, req *dto.UpdateProviderRequest) (*models.Provider, error) {
	provider, err := s.providerRepo.GetByID(providerID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		provider.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Slug != nil {
		provider.Slug = strings.TrimSpace(*req.Slug)
	}
	if req.LogoPath != nil {
		provider.LogoPath = req.LogoPath
	}
	if req.Notes != nil {
		provider.Notes = req.Notes
	}

	if err := s.providerRepo.Update(provider); err != nil {
		return nil, err
	}

	s.audit(models.AuditActionProviderUpdated, provider, nil)

	return provider, nil
}

// Delete removes a provider from the catalog. Subscriptions linked to it are
// detached, not deleted.
func (s *ProviderService) Delete(providerID uuid.UUID) error {
	provider, err := s.providerRepo.GetByID(providerID)
	if err != nil {
		return err
	}

	if err := s.providerRepo.Delete(providerID); err != nil {
		return fmt.Errorf("failed to delete provider: %w", err)
	}

	s.audit(models.AuditActionProviderDeleted, provider, nil)

	return nil
}

// Verify stamps a provider as reviewed by an admin
func (s *ProviderService) Verify(providerID uuid.UUID) (*models.Provider, error) {
	provider, err := s.providerRepo.GetByID(providerID)
	if err != nil {
		return nil, err
	}

	provider.MarkVerified(s.clock.Now())
	if err := s.providerRepo.Update(provider); err != nil {
		return nil, fmt.Errorf("failed to verify provider: %w", err)
	}

	s.audit(models.AuditActionProviderVerified, provider, nil)

	return provider, nil
}

// Reconcile sweeps the user's unlinked subscriptions against the catalog:
// exact matches are linked in place, near misses become suggestions ranked by
// edit distance for an operator to review.
func (s *ProviderService) Reconcile(userID uuid.UUID) (*dto.ReconcileReport, error) {
	subs, err := s.subscriptionRepo.GetUnlinkedByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlinked subscriptions: %w", err)
	}

	providers, err := s.Catalog()
	if err != nil {
		return nil, err
	}

	report := &dto.ReconcileReport{
		Scanned:     len(subs),
		Linked:      []dto.ReconcileLink{},
		Suggestions: []dto.ReconcileSuggestion{},
	}

	for i := range subs {
		sub := &subs[i]

		if match := matching.FindExactMatch(providers, sub.Name); match != nil {
			id := match.ID
			if err := s.subscriptionRepo.UpdateProviderAssignment(sub.ID, &id, nil); err != nil {
				s.logger.Error("failed to link subscription during reconcile",
					"subscription_id", sub.ID, "error", err)
				continue
			}
			s.metrics.RecordProviderResolution(resolutionReconciled)
			report.Linked = append(report.Linked, dto.ReconcileLink{
				SubscriptionID:   sub.ID,
				SubscriptionName: sub.Name,
				ProviderID:       match.ID,
				ProviderSlug:     match.Slug,
			})
			continue
		}

		if suggestion, ok := s.nearestProvider(sub, providers); ok {
			report.Suggestions = append(report.Suggestions, suggestion)
		}
	}

	log := &models.AuditLog{
		UserID:   &userID,
		Action:   models.AuditActionCatalogReconciled,
		Resource: "catalog",
	}
	log.SetMetadata("scanned", report.Scanned)
	log.SetMetadata("linked", len(report.Linked))
	log.SetMetadata("suggestions", len(report.Suggestions))
	if err := s.auditRepo.Create(log); err != nil {
		s.logger.Error("failed to create audit log for reconcile", "error", err)
	}

	return report, nil
}

// nearestProvider finds the closest catalog slug by edit distance, if any is
// within the suggestion threshold.
func (s *ProviderService) nearestProvider(sub *models.Subscription, providers []models.Provider) (dto.ReconcileSuggestion, bool) {
	if sub.NormalizedName == "" {
		return dto.ReconcileSuggestion{}, false
	}

	best := -1
	var bestProvider *models.Provider
	for i := range providers {
		distance := levenshtein.ComputeDistance(sub.NormalizedName, providers[i].Slug)
		if best == -1 || distance < best {
			best = distance
			bestProvider = &providers[i]
		}
	}

	if bestProvider == nil || best > maxSuggestionDistance {
		return dto.ReconcileSuggestion{}, false
	}

	return dto.ReconcileSuggestion{
		SubscriptionID:   sub.ID,
		SubscriptionName: sub.Name,
		ProviderID:       bestProvider.ID,
		ProviderSlug:     bestProvider.Slug,
		Distance:         best,
	}, true
}

func (s *ProviderService) audit(action string, provider *models.Provider, metadata map[string]interface{}) {
	log := &models.AuditLog{
		Action:     action,
		Resource:   "provider",
		ResourceID: provider.ID.String(),
	}
	for key, value := range metadata {
		log.SetMetadata(key, value)
	}

	if err := s.auditRepo.Create(log); err != nil {
		s.logger.Error("failed to create audit log", "action", action, "error", err)
	}
}

// catalogSnapshot loads the provider catalog, falling back to the builtin
// seed set when the store is empty or unreachable.
func catalogSnapshot(repo repositories.ProviderRepositoryInterface, logger *slog.Logger) ([]models.Provider, error) {
	providers, err := repo.GetAll()
	if err != nil {
		logger.Warn("provider store unavailable, serving builtin catalog", "error", err)
		return catalog.Builtin(), nil
	}
	if len(providers) == 0 {
		return catalog.Builtin(), nil
	}
	return providers, nil
}
