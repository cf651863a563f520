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

// AdminHandler handles admin operations that cut across users: catalog
// reconciliation and manual provider overrides.
type AdminHandler struct {
	providerService     services.ProviderServiceInterface
	subscriptionService services.SubscriptionServiceInterface
	auditRepo           repositories.AuditLogRepositoryInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	providerService services.ProviderServiceInterface,
	subscriptionService services.SubscriptionServiceInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
) *AdminHandler {
	return &AdminHandler{
		providerService:     providerService,
		subscriptionService: subscriptionService,
		auditRepo:           auditRepo,
	}
}

// Reconcile sweeps a user's unlinked subscriptions against the catalog
// @Summary Reconcile subscriptions (admin)
// @Description Sweep a user's unlinked subscriptions against the catalog: exact matches are linked in place, near misses are returned as suggestions.
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param userId query string true "User ID (UUID) whose subscriptions to reconcile"
// @Success 200 {object} SuccessResponse{data=dto.ReconcileReport} "Reconciliation report"
// @Failure 400 {object} errors.ErrorResponse "Invalid user ID - USER_003"
// @Failure 403 {object} errors.ErrorResponse "Requires admin role - AUTH_005"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /admin/reconcile [post]
func (h *AdminHandler) Reconcile(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("userId"))
	if err != nil {
		return SendError(c, errors.UserInvalidID, errors.WithDetails("userId must be a valid UUID"))
	}

	report, err := h.providerService.Reconcile(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	adminID := c.Get("user_id").(uuid.UUID)
	h.createAuditLog(adminID, models.AuditActionCatalogReconciled, "user", userID.String(), c)

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    report,
		Message: "Reconciliation completed",
	})
}

// OverrideSubscriptionProvider manually sets a subscription's provider link
// @Summary Override subscription provider (admin)
// @Description Manually set or clear a subscription's provider assignment, bypassing the matcher. At most one of providerId and fallbackIconKey may be set.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID (UUID)"
// @Param request body dto.OverrideProviderRequest true "New assignment"
// @Success 200 {object} SuccessResponse{data=dto.SubscriptionResponse} "Assignment updated"
// @Failure 400 {object} errors.ErrorResponse "Invalid subscription ID - SUBSCRIPTION_006"
// @Failure 403 {object} errors.ErrorResponse "Requires admin role - AUTH_005"
// @Failure 404 {object} errors.ErrorResponse "Subscription or provider not found"
// @Failure 422 {object} errors.ErrorResponse "Conflicting assignment - SUBSCRIPTION_005"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /admin/subscriptions/{id}/provider [put]
func (h *AdminHandler) OverrideSubscriptionProvider(c echo.Context) error {
	subscriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.SubscriptionInvalidID, errors.WithDetails("Subscription ID must be a valid UUID"))
	}

	var req dto.OverrideProviderRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	sub, err := h.subscriptionService.OverrideProvider(subscriptionID, req.ProviderID, req.FallbackIconKey)
	if err != nil {
		switch err {
		case repositories.ErrSubscriptionNotFound:
			return SendError(c, errors.SubscriptionNotFound)
		case services.ErrUnknownProvider:
			return SendError(c, errors.ProviderNotFound)
		case models.ErrProviderIconConflict:
			return SendError(c, errors.SubscriptionIconConflict)
		}
		if errorsIsInvalidIconKey(err) {
			return SendError(c, errors.SubscriptionInvalidIconKey)
		}
		return SendSystemError(c, err)
	}

	adminID := c.Get("user_id").(uuid.UUID)
	h.createAuditLog(adminID, models.AuditActionSubscriptionOverride, "subscription", sub.ID.String(), c)

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    toSubscriptionResponse(sub),
		Message: "Provider assignment updated",
	})
}
