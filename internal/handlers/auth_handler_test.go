package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"subtrackr/internal/dto"
	"subtrackr/internal/models"
	"subtrackr/internal/repositories"
	"subtrackr/internal/services"
	"subtrackr/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestAuthHandler(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

type AuthHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	authService *service_mocks.MockAuthServiceInterface
	handler     *AuthHandler
	e           *echo.Echo
}

func (s *AuthHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.authService = service_mocks.NewMockAuthServiceInterface(s.ctrl)
	s.handler = NewAuthHandler(s.authService)
	s.e = echo.New()
	s.e.Validator = NewValidator()
}

func (s *AuthHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthHandlerSuite) postJSON(path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	payload, err := json.Marshal(body)
	s.NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return s.e.NewContext(req, rec), rec
}

func (s *AuthHandlerSuite) TestRegister_Success() {
	userID := uuid.New()
	s.authService.EXPECT().
		Register(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error) {
			return &models.User{
				ID:        userID,
				Email:     req.Email,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Role:      models.RoleUser,
				CreatedAt: time.Now(),
			}, nil
		}).
		Times(1)

	c, rec := s.postJSON("/api/v1/auth/register", map[string]string{
		"email":     "test@example.com",
		"password":  "SecurePassword123",
		"firstName": "Sam",
		"lastName":  "Rivera",
	})

	err := s.handler.Register(c)
	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), "test@example.com")
	s.Contains(rec.Body.String(), userID.String())
}

func (s *AuthHandlerSuite) TestRegister_DuplicateEmail() {
	s.authService.EXPECT().
		Register(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, services.ErrUserAlreadyExists).
		Times(1)

	c, rec := s.postJSON("/api/v1/auth/register", map[string]string{
		"email":     "taken@example.com",
		"password":  "SecurePassword123",
		"firstName": "Sam",
		"lastName":  "Rivera",
	})

	err := s.handler.Register(c)
	s.NoError(err)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "USER_002")
}

func (s *AuthHandlerSuite) TestRegister_InvalidBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("not-json")))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	err := s.handler.Register(c)
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "VALIDATION_001")
}

func (s *AuthHandlerSuite) TestRegister_MissingFields() {
	c, _ := s.postJSON("/api/v1/auth/register", map[string]string{
		"email": "test@example.com",
	})

	err := s.handler.Register(c)
	// Validation errors propagate to the global error handler
	s.Error(err)
}

func (s *AuthHandlerSuite) TestLogin_Success() {
	s.authService.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&dto.TokenResponse{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			TokenType:    "Bearer",
		}, nil).
		Times(1)

	c, rec := s.postJSON("/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "SecurePassword123",
	})

	err := s.handler.Login(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "access-token")
}

func (s *AuthHandlerSuite) TestLogin_InvalidCredentials() {
	s.authService.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, services.ErrInvalidCredentials).
		Times(1)

	c, rec := s.postJSON("/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "WrongPassword123",
	})

	err := s.handler.Login(c)
	s.NoError(err)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_001")
}

func (s *AuthHandlerSuite) TestLogin_AccountLocked() {
	s.authService.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, services.ErrAccountLocked).
		Times(1)

	c, rec := s.postJSON("/api/v1/auth/login", map[string]string{
		"email":    "locked@example.com",
		"password": "SecurePassword123",
	})

	err := s.handler.Login(c)
	s.NoError(err)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_006")
}

func (s *AuthHandlerSuite) TestRefreshToken_Success() {
	s.authService.EXPECT().
		RefreshTokens("old-refresh-token", gomock.Any(), gomock.Any()).
		Return(&dto.TokenResponse{
			AccessToken:  "new-access-token",
			RefreshToken: "new-refresh-token",
			TokenType:    "Bearer",
		}, nil).
		Times(1)

	c, rec := s.postJSON("/api/v1/auth/refresh", map[string]string{
		"refresh_token": "old-refresh-token",
	})

	err := s.handler.RefreshToken(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "new-access-token")
}

func (s *AuthHandlerSuite) TestRefreshToken_Invalid() {
	s.authService.EXPECT().
		RefreshTokens("stale-token", gomock.Any(), gomock.Any()).
		Return(nil, services.ErrInvalidRefreshToken).
		Times(1)

	c, rec := s.postJSON("/api/v1/auth/refresh", map[string]string{
		"refresh_token": "stale-token",
	})

	err := s.handler.RefreshToken(c)
	s.NoError(err)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_004")
}

func (s *AuthHandlerSuite) TestLogout_Success() {
	s.authService.EXPECT().
		Logout("valid-token", gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	err := s.handler.Logout(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Logout successful")
}

func (s *AuthHandlerSuite) TestLogout_MissingHeader() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	err := s.handler.Logout(c)
	s.NoError(err)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_002")
}

func (s *AuthHandlerSuite) TestLogout_MalformedHeader() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "NotBearer")
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	err := s.handler.Logout(c)
	s.NoError(err)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_004")
}

func (s *AuthHandlerSuite) TestMe_Success() {
	userID := uuid.New()
	s.authService.EXPECT().
		Profile(userID).
		Return(&models.User{
			ID:        userID,
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
			Role:      models.RoleUser,
		}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set("user_id", userID)

	err := s.handler.Me(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "jane@example.com")
	s.Contains(rec.Body.String(), userID.String())
}

func (s *AuthHandlerSuite) TestMe_NotFound() {
	s.authService.EXPECT().
		Profile(gomock.Any()).
		Return(nil, repositories.ErrUserNotFound).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set("user_id", uuid.New())

	err := s.handler.Me(c)
	s.NoError(err)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "USER_001")
}

func (s *AuthHandlerSuite) TestMe_MissingUser() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	err := s.handler.Me(c)
	s.NoError(err)
	s.Equal(http.StatusUnauthorized, rec.Code)
}
