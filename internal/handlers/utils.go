package handlers

import (
	stderrors "errors"
	"fmt"
	"strings"

	"subtrackr/internal/models"
	"subtrackr/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ErrUnauthorized is returned when user context is invalid
var ErrUnauthorized = fmt.Errorf("unauthorized")

// Helper function to extract user ID from context
// Returns ErrUnauthorized if user ID is missing or invalid
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userIDValue := c.Get("user_id")
	if userIDValue == nil {
		return uuid.UUID{}, ErrUnauthorized
	}

	userID, ok := userIDValue.(uuid.UUID)
	if !ok {
		return uuid.UUID{}, ErrUnauthorized
	}

	return userID, nil
}

func (h *AdminHandler) createAuditLog(adminID uuid.UUID, action, resource, resourceID string, c echo.Context) {
	log := &models.AuditLog{
		UserID:     &adminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  getClientIP(c),
		UserAgent:  c.Request().UserAgent(),
	}

	if err := h.auditRepo.Create(log); err != nil {
		// Audit logging failure should not block the operation
		_ = err
	}
}

// errorsIsInvalidIconKey unwraps icon key validation failures, which the
// service wraps with the offending key
func errorsIsInvalidIconKey(err error) bool {
	return stderrors.Is(err, services.ErrInvalidIconKey)
}

func getClientIP(c echo.Context) string {
	xff := c.Request().Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := c.Request().Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	return c.Request().RemoteAddr
}
