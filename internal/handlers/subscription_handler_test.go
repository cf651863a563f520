package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"subtrackr/internal/dto"
	"subtrackr/internal/models"
	"subtrackr/internal/repositories"
	"subtrackr/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestSubscriptionHandler(t *testing.T) {
	suite.Run(t, new(SubscriptionHandlerSuite))
}

type SubscriptionHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *service_mocks.MockSubscriptionServiceInterface
	handler *SubscriptionHandler
	e       *echo.Echo
	userID  uuid.UUID
}

func (s *SubscriptionHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = service_mocks.NewMockSubscriptionServiceInterface(s.ctrl)
	s.handler = NewSubscriptionHandler(s.service)
	s.e = echo.New()
	s.e.Validator = NewValidator()
	s.userID = uuid.New()
}

func (s *SubscriptionHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SubscriptionHandlerSuite) newContext(method, path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set("user_id", s.userID)
	return c, rec
}

func (s *SubscriptionHandlerSuite) sampleSubscription() *models.Subscription {
	return &models.Subscription{
		ID:              uuid.New(),
		UserID:          s.userID,
		Name:            "Netflix",
		NormalizedName:  "netflix",
		Cost:            decimal.RequireFromString("15.99"),
		Currency:        "USD",
		BillingCycle:    models.BillingCycleMonthly,
		NextBillingDate: "2026-09-15",
	}
}

func (s *SubscriptionHandlerSuite) TestCreateSubscription_Success() {
	sub := s.sampleSubscription()
	s.service.EXPECT().
		Create(s.userID, gomock.Any()).
		DoAndReturn(func(userID uuid.UUID, req *dto.CreateSubscriptionRequest) (*models.Subscription, error) {
			s.Equal("Netflix", req.Name)
			return sub, nil
		}).
		Times(1)

	c, rec := s.newContext(http.MethodPost, "/api/v1/subscriptions", map[string]interface{}{
		"name":            "Netflix",
		"cost":            "15.99",
		"billingCycle":    "monthly",
		"nextBillingDate": "2026-09-15",
	})

	err := s.handler.CreateSubscription(c)
	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), "netflix")
	s.Contains(rec.Body.String(), sub.ID.String())
}

func (s *SubscriptionHandlerSuite) TestCreateSubscription_InvalidCycle() {
	c, _ := s.newContext(http.MethodPost, "/api/v1/subscriptions", map[string]interface{}{
		"name":            "Netflix",
		"cost":            "15.99",
		"billingCycle":    "weekly",
		"nextBillingDate": "2026-09-15",
	})

	err := s.handler.CreateSubscription(c)
	// billing_cycle rule rejects "weekly"; error propagates to the global handler
	s.Error(err)
}

func (s *SubscriptionHandlerSuite) TestCreateSubscription_MissingUser() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", bytes.NewReader([]byte("{}")))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	err := s.handler.CreateSubscription(c)
	s.NoError(err)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *SubscriptionHandlerSuite) TestListSubscriptions_Success() {
	sub := s.sampleSubscription()
	s.service.EXPECT().
		List(s.userID).
		Return([]models.Subscription{*sub}, nil).
		Times(1)

	c, rec := s.newContext(http.MethodGet, "/api/v1/subscriptions", nil)

	err := s.handler.ListSubscriptions(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Netflix")
	s.Contains(rec.Body.String(), `"count":1`)
}

func (s *SubscriptionHandlerSuite) TestGetSubscription_NotFound() {
	subscriptionID := uuid.New()
	s.service.EXPECT().
		Get(subscriptionID, s.userID).
		Return(nil, repositories.ErrSubscriptionNotFound).
		Times(1)

	c, rec := s.newContext(http.MethodGet, "/api/v1/subscriptions/"+subscriptionID.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(subscriptionID.String())

	err := s.handler.GetSubscription(c)
	s.NoError(err)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "SUBSCRIPTION_001")
}

func (s *SubscriptionHandlerSuite) TestGetSubscription_InvalidID() {
	c, rec := s.newContext(http.MethodGet, "/api/v1/subscriptions/not-a-uuid", nil)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := s.handler.GetSubscription(c)
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "SUBSCRIPTION_006")
}

func (s *SubscriptionHandlerSuite) TestUpdateSubscription_Success() {
	sub := s.sampleSubscription()
	sub.Name = "Netflix Premium"
	s.service.EXPECT().
		Update(sub.ID, s.userID, gomock.Any()).
		DoAndReturn(func(subscriptionID, userID uuid.UUID, req *dto.UpdateSubscriptionRequest) (*models.Subscription, error) {
			s.NotNil(req.Name)
			return sub, nil
		}).
		Times(1)

	c, rec := s.newContext(http.MethodPut, "/api/v1/subscriptions/"+sub.ID.String(), map[string]interface{}{
		"name": "Netflix Premium",
	})
	c.SetParamNames("id")
	c.SetParamValues(sub.ID.String())

	err := s.handler.UpdateSubscription(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Netflix Premium")
}

func (s *SubscriptionHandlerSuite) TestDeleteSubscription_Success() {
	sub := s.sampleSubscription()
	s.service.EXPECT().
		Delete(sub.ID, s.userID).
		Return(nil).
		Times(1)

	c, rec := s.newContext(http.MethodDelete, "/api/v1/subscriptions/"+sub.ID.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(sub.ID.String())

	err := s.handler.DeleteSubscription(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *SubscriptionHandlerSuite) TestDeleteSubscription_NotFound() {
	subscriptionID := uuid.New()
	s.service.EXPECT().
		Delete(subscriptionID, s.userID).
		Return(repositories.ErrSubscriptionNotFound).
		Times(1)

	c, rec := s.newContext(http.MethodDelete, "/api/v1/subscriptions/"+subscriptionID.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(subscriptionID.String())

	err := s.handler.DeleteSubscription(c)
	s.NoError(err)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *SubscriptionHandlerSuite) TestGetSummary_Success() {
	s.service.EXPECT().
		Summary(s.userID).
		Return(&dto.SubscriptionSummary{
			Count:       2,
			LinkedCount: 1,
			Totals: []dto.CurrencyTotal{
				{
					Currency: "USD",
					Monthly:  decimal.RequireFromString("25.98"),
					Yearly:   decimal.RequireFromString("311.76"),
				},
			},
		}, nil).
		Times(1)

	c, rec := s.newContext(http.MethodGet, "/api/v1/subscriptions/summary", nil)

	err := s.handler.GetSummary(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "25.98")
	s.Contains(rec.Body.String(), `"linkedCount":1`)
}
