package handlers

import (
	"net/http"

	"subtrackr/internal/dto"
	"subtrackr/internal/errors"
	"subtrackr/internal/models"
	"subtrackr/internal/repositories"
	"subtrackr/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ProviderHandler handles catalog endpoints. The read endpoints are public so
// the builtin catalog is browsable before signup; curation endpoints are
// mounted under the admin group.
type ProviderHandler struct {
	providerService services.ProviderServiceInterface
}

// NewProviderHandler creates a new provider catalog handler
func NewProviderHandler(providerService services.ProviderServiceInterface) *ProviderHandler {
	return &ProviderHandler{
		providerService: providerService,
	}
}

// ListProviders returns the provider catalog
// @Summary List providers
// @Description List the full provider catalog ordered by display name
// @Tags Providers
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]dto.ProviderResponse} "Catalog retrieved"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /providers [get]
func (h *ProviderHandler) ListProviders(c echo.Context) error {
	providers, err := h.providerService.Catalog()
	if err != nil {
		return SendSystemError(c, err)
	}

	responses := make([]dto.ProviderResponse, len(providers))
	for i := range providers {
		responses[i] = toProviderResponse(&providers[i])
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: responses,
		Meta: map[string]interface{}{
			"count": len(responses),
		},
	})
}

// SearchProviders ranks the catalog against a partial query
// @Summary Search providers
// @Description Rank the catalog against a partial query for autocomplete. Queries shorter than two characters yield no matches.
// @Tags Providers
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} SuccessResponse{data=[]dto.ProviderSearchResult} "Ranked matches, at most five"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /providers/search [get]
func (h *ProviderHandler) SearchProviders(c echo.Context) error {
	results, err := h.providerService.Search(c.QueryParam("q"))
	if err != nil {
		return SendSystemError(c, err)
	}

	responses := make([]dto.ProviderSearchResult, len(results))
	for i := range results {
		responses[i] = dto.ProviderSearchResult{
			Provider: toProviderResponse(&results[i].Provider),
			Score:    results[i].Score,
		}
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: responses,
	})
}

// CreateProvider adds a provider to the catalog
// @Summary Create provider (admin)
// @Description Add a provider to the catalog. The slug is derived from the display name when omitted.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateProviderRequest true "Provider details"
// @Success 201 {object} SuccessResponse{data=dto.ProviderResponse} "Provider created"
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001"
// @Failure 403 {object} errors.ErrorResponse "Requires admin role - AUTH_005"
// @Failure 409 {object} errors.ErrorResponse "Slug already exists - PROVIDER_002"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /admin/providers [post]
func (h *ProviderHandler) CreateProvider(c echo.Context) error {
	var req dto.CreateProviderRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	provider, err := h.providerService.Create(&req)
	if err != nil {
		if err == repositories.ErrProviderAlreadyExists {
			return SendError(c, errors.ProviderAlreadyExists)
		}
		if err == services.ErrEmptySlug || err == models.ErrProviderSlugInvalid {
			return SendError(c, errors.ProviderInvalidSlug)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    toProviderResponse(provider),
		Message: "Provider created successfully",
	})
}

// UpdateProvider applies partial changes to a provider
// @Summary Update provider (admin)
// @Description Apply partial changes to a catalog provider
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Provider ID (UUID)"
// @Param request body dto.UpdateProviderRequest true "Fields to update"
// @Success 200 {object} SuccessResponse{data=dto.ProviderResponse} "Provider updated"
// @Failure 400 {object} errors.ErrorResponse "Invalid provider ID - PROVIDER_004"
// @Failure 403 {object} errors.ErrorResponse "Requires admin role - AUTH_005"
// @Failure 404 {object} errors.ErrorResponse "Provider not found - PROVIDER_001"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /admin/providers/{id} [put]
func (h *ProviderHandler) UpdateProvider(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ProviderInvalidID, errors.WithDetails("Provider ID must be a valid UUID"))
	}

	var req dto.UpdateProviderRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	provider, err := h.providerService.Update(providerID, &req)
	if err != nil {
		if err == repositories.ErrProviderNotFound {
			return SendError(c, errors.ProviderNotFound)
		}
		if err == models.ErrProviderSlugInvalid {
			return SendError(c, errors.ProviderInvalidSlug)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    toProviderResponse(provider),
		Message: "Provider updated successfully",
	})
}

// DeleteProvider removes a provider from the catalog
// @Summary Delete provider (admin)
// @Description Remove a provider from the catalog. Linked subscriptions are detached, not deleted.
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Provider ID (UUID)"
// @Success 200 {object} SuccessResponse "Provider deleted"
// @Failure 400 {object} errors.ErrorResponse "Invalid provider ID - PROVIDER_004"
// @Failure 403 {object} errors.ErrorResponse "Requires admin role - AUTH_005"
// @Failure 404 {object} errors.ErrorResponse "Provider not found - PROVIDER_001"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /admin/providers/{id} [delete]
func (h *ProviderHandler) DeleteProvider(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ProviderInvalidID, errors.WithDetails("Provider ID must be a valid UUID"))
	}

	if err := h.providerService.Delete(providerID); err != nil {
		if err == repositories.ErrProviderNotFound {
			return SendError(c, errors.ProviderNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Provider deleted successfully",
	})
}

// VerifyProvider stamps a provider as reviewed
// @Summary Verify provider (admin)
// @Description Stamp a catalog provider as reviewed by an admin
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Provider ID (UUID)"
// @Success 200 {object} SuccessResponse{data=dto.ProviderResponse} "Provider verified"
// @Failure 400 {object} errors.ErrorResponse "Invalid provider ID - PROVIDER_004"
// @Failure 403 {object} errors.ErrorResponse "Requires admin role - AUTH_005"
// @Failure 404 {object} errors.ErrorResponse "Provider not found - PROVIDER_001"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /admin/providers/{id}/verify [post]
func (h *ProviderHandler) VerifyProvider(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ProviderInvalidID, errors.WithDetails("Provider ID must be a valid UUID"))
	}

	provider, err := h.providerService.Verify(providerID)
	if err != nil {
		if err == repositories.ErrProviderNotFound {
			return SendError(c, errors.ProviderNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    toProviderResponse(provider),
		Message: "Provider verified successfully",
	})
}

func toProviderResponse(provider *models.Provider) dto.ProviderResponse {
	return dto.ProviderResponse{
		ID:             provider.ID,
		Slug:           provider.Slug,
		DisplayName:    provider.DisplayName,
		LogoPath:       provider.LogoPath,
		LastVerifiedAt: provider.LastVerifiedAt,
		Notes:          provider.Notes,
	}
}
