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

// SubscriptionHandler handles subscription endpoints
type SubscriptionHandler struct {
	subscriptionService services.SubscriptionServiceInterface
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService services.SubscriptionServiceInterface) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// CreateSubscription handles subscription creation
// @Summary Create a subscription
// @Description Create a new tracked subscription. The provider is resolved automatically from the name unless an explicit provider ID is supplied.
// @Tags Subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateSubscriptionRequest true "Subscription details"
// @Success 201 {object} SuccessResponse{data=dto.SubscriptionResponse} "Subscription created"
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002"
// @Failure 404 {object} errors.ErrorResponse "Provider not found - PROVIDER_001"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	sub, err := h.subscriptionService.Create(userID, &req)
	if err != nil {
		if err == services.ErrUnknownProvider {
			return SendError(c, errors.ProviderNotFound)
		}
		if err == models.ErrNegativeCost {
			return SendError(c, errors.SubscriptionInvalidCost)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    toSubscriptionResponse(sub),
		Message: "Subscription created successfully",
	})
}

// ListSubscriptions lists the user's subscriptions
// @Summary List subscriptions
// @Description List all subscriptions owned by the authenticated user. Billing dates are rolled forward to today before the list is returned.
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]dto.SubscriptionResponse} "Subscriptions retrieved"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	subs, err := h.subscriptionService.List(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	responses := make([]dto.SubscriptionResponse, len(subs))
	for i := range subs {
		responses[i] = toSubscriptionResponse(&subs[i])
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: responses,
		Meta: map[string]interface{}{
			"count": len(responses),
		},
	})
}

// GetSubscription retrieves a single subscription
// @Summary Get subscription by ID
// @Description Retrieve a single subscription owned by the authenticated user
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Subscription ID (UUID)"
// @Success 200 {object} SuccessResponse{data=dto.SubscriptionResponse} "Subscription retrieved"
// @Failure 400 {object} errors.ErrorResponse "Invalid subscription ID - SUBSCRIPTION_006"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002"
// @Failure 404 {object} errors.ErrorResponse "Subscription not found - SUBSCRIPTION_001"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	subscriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.SubscriptionInvalidID, errors.WithDetails("Subscription ID must be a valid UUID"))
	}

	sub, err := h.subscriptionService.Get(subscriptionID, userID)
	if err != nil {
		if err == repositories.ErrSubscriptionNotFound {
			return SendError(c, errors.SubscriptionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: toSubscriptionResponse(sub),
	})
}

// UpdateSubscription applies partial changes to a subscription
// @Summary Update subscription
// @Description Apply partial changes to a subscription. A changed name re-runs provider resolution.
// @Tags Subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID (UUID)"
// @Param request body dto.UpdateSubscriptionRequest true "Fields to update"
// @Success 200 {object} SuccessResponse{data=dto.SubscriptionResponse} "Subscription updated"
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002"
// @Failure 404 {object} errors.ErrorResponse "Subscription not found - SUBSCRIPTION_001"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /subscriptions/{id} [put]
func (h *SubscriptionHandler) UpdateSubscription(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	subscriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.SubscriptionInvalidID, errors.WithDetails("Subscription ID must be a valid UUID"))
	}

	var req dto.UpdateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	sub, err := h.subscriptionService.Update(subscriptionID, userID, &req)
	if err != nil {
		if err == repositories.ErrSubscriptionNotFound {
			return SendError(c, errors.SubscriptionNotFound)
		}
		if err == services.ErrUnknownProvider {
			return SendError(c, errors.ProviderNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    toSubscriptionResponse(sub),
		Message: "Subscription updated successfully",
	})
}

// DeleteSubscription removes a subscription
// @Summary Delete subscription
// @Description Permanently delete a subscription owned by the authenticated user
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Subscription ID (UUID)"
// @Success 200 {object} SuccessResponse "Subscription deleted"
// @Failure 400 {object} errors.ErrorResponse "Invalid subscription ID - SUBSCRIPTION_006"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002"
// @Failure 404 {object} errors.ErrorResponse "Subscription not found - SUBSCRIPTION_001"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /subscriptions/{id} [delete]
func (h *SubscriptionHandler) DeleteSubscription(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	subscriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.SubscriptionInvalidID, errors.WithDetails("Subscription ID must be a valid UUID"))
	}

	if err := h.subscriptionService.Delete(subscriptionID, userID); err != nil {
		if err == repositories.ErrSubscriptionNotFound {
			return SendError(c, errors.SubscriptionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Subscription deleted successfully",
	})
}

// GetSummary returns spend totals per currency
// @Summary Subscription spend summary
// @Description Aggregate monthly and yearly spend per currency across the user's subscriptions
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.SubscriptionSummary} "Summary computed"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /subscriptions/summary [get]
func (h *SubscriptionHandler) GetSummary(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	summary, err := h.subscriptionService.Summary(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: summary,
	})
}

func toSubscriptionResponse(sub *models.Subscription) dto.SubscriptionResponse {
	return dto.SubscriptionResponse{
		ID:              sub.ID,
		Name:            sub.Name,
		NormalizedName:  sub.NormalizedName,
		Cost:            sub.Cost,
		Currency:        sub.Currency,
		BillingCycle:    sub.BillingCycle,
		NextBillingDate: sub.NextBillingDate,
		ProviderID:      sub.ProviderID,
		FallbackIconKey: sub.FallbackIconKey,
	}
}
