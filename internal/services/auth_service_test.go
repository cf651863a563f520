package services

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"subtrackr/internal/dto"
	"subtrackr/internal/models"
	"subtrackr/internal/repositories"
	"subtrackr/internal/repositories/repository_mocks"
	"subtrackr/internal/services/service_mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctrl                 *gomock.Controller
	userRepo             *repository_mocks.MockUserRepositoryInterface
	refreshTokenRepo     *repository_mocks.MockRefreshTokenRepositoryInterface
	auditRepo            *repository_mocks.MockAuditLogRepositoryInterface
	blacklistedTokenRepo *repository_mocks.MockBlacklistedTokenRepositoryInterface
	passwordService      *service_mocks.MockPasswordServiceInterface
	tokenService         *service_mocks.MockTokenServiceInterface
	metrics              *service_mocks.MockMetricsRecorderInterface
	authService          AuthServiceInterface
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.refreshTokenRepo = repository_mocks.NewMockRefreshTokenRepositoryInterface(s.ctrl)
	s.auditRepo = repository_mocks.NewMockAuditLogRepositoryInterface(s.ctrl)
	s.blacklistedTokenRepo = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.passwordService = service_mocks.NewMockPasswordServiceInterface(s.ctrl)
	s.tokenService = service_mocks.NewMockTokenServiceInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.authService = NewAuthService(s.userRepo, s.refreshTokenRepo, s.auditRepo, s.blacklistedTokenRepo, s.passwordService, s.tokenService, s.metrics, slog.Default())
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) TestRegister_Success() {
	req := &dto.RegisterRequest{
		Email:     "new@example.com",
		Password:  "SecurePass123456",
		FirstName: "New",
		LastName:  "User",
	}

	s.userRepo.EXPECT().GetByEmail(req.Email).Return(nil, repositories.ErrUserNotFound).Times(1)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("hashed_password", nil).Times(1)
	s.userRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)
	s.metrics.EXPECT().RecordAuthEvent("register").Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	user, err := s.authService.Register(req, "127.0.0.1", "test-agent")

	s.NoError(err)
	s.NotNil(user)
	s.Equal(req.Email, user.Email)
	s.Equal(models.RoleUser, user.Role)
	s.Equal("hashed_password", user.PasswordHash)
	s.NotEqual(req.Password, user.PasswordHash)
}

func (s *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	req := &dto.RegisterRequest{
		Email:     "taken@example.com",
		Password:  "SecurePass123456",
		FirstName: "Other",
		LastName:  "User",
	}

	existing := &models.User{Email: req.Email}

	s.userRepo.EXPECT().GetByEmail(req.Email).Return(existing, nil).Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	user, err := s.authService.Register(req, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrUserAlreadyExists)
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestRegister_WeakPassword() {
	req := &dto.RegisterRequest{
		Email:     "weak@example.com",
		Password:  "weak",
		FirstName: "Weak",
		LastName:  "User",
	}

	s.userRepo.EXPECT().GetByEmail(req.Email).Return(nil, repositories.ErrUserNotFound).Times(1)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("", errors.New("password must be at least 12 characters long")).Times(1)

	user, err := s.authService.Register(req, "127.0.0.1", "test-agent")
	s.Error(err)
	s.Contains(err.Error(), "password must be at least 12 characters")
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	userID := uuid.New()
	user := &models.User{
		ID:           userID,
		Email:        "login@example.com",
		PasswordHash: "hashed_password",
		Role:         models.RoleUser,
	}
	req := &dto.LoginRequest{Email: user.Email, Password: "SecurePass123456"}
	expiresAt := time.Now().Add(15 * time.Minute)

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil).Times(1)
	s.passwordService.EXPECT().ComparePassword(req.Password, "hashed_password").Return(true).Times(1)
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(gomock.Any()).Return(nil).Times(1)
	s.tokenService.EXPECT().GenerateAccessToken(user).Return("access_token", expiresAt, nil).Times(1)
	s.tokenService.EXPECT().GenerateRefreshToken(userID).Return("refresh_token", time.Now().Add(7*24*time.Hour), nil).Times(1)
	s.refreshTokenRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)
	s.metrics.EXPECT().RecordAuthEvent("login").Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	tokens, err := s.authService.Login(req, "127.0.0.1", "test-agent")

	s.NoError(err)
	s.NotNil(tokens)
	s.Equal("access_token", tokens.AccessToken)
	s.Equal("refresh_token", tokens.RefreshToken)
	s.Equal("Bearer", tokens.TokenType)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	req := &dto.LoginRequest{Email: "nobody@example.com", Password: "SecurePass123456"}

	s.userRepo.EXPECT().GetByEmail(req.Email).Return(nil, repositories.ErrUserNotFound).Times(1)

	var captured *models.AuditLog
	s.auditRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(log *models.AuditLog) error {
		captured = log
		return nil
	}).Times(1)

	tokens, err := s.authService.Login(req, "127.0.0.1", "test-agent")

	s.ErrorIs(err, ErrInvalidCredentials)
	s.Nil(tokens)
	s.Require().NotNil(captured)
	s.Equal(models.AuditActionFailedLogin, captured.Action)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "wrongpw@example.com",
		PasswordHash: "hashed_password",
		Role:         models.RoleUser,
	}
	req := &dto.LoginRequest{Email: user.Email, Password: "WrongPass1234567"}

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil).Times(1)
	s.passwordService.EXPECT().ComparePassword(req.Password, "hashed_password").Return(false).Times(1)

	var persisted int
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(gomock.Any()).DoAndReturn(func(u *models.User) error {
		persisted = u.FailedLoginAttempts
		return nil
	}).Times(1)
	s.metrics.EXPECT().RecordAuthEvent("failed_login").Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	tokens, err := s.authService.Login(req, "127.0.0.1", "test-agent")

	s.ErrorIs(err, ErrInvalidCredentials)
	s.Nil(tokens)
	s.Equal(1, persisted)
}

func (s *AuthServiceTestSuite) TestLogin_LocksOnFinalFailedAttempt() {
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "locked@example.com",
		PasswordHash:        "hashed_password",
		Role:                models.RoleUser,
		FailedLoginAttempts: models.MaxFailedLoginAttempts - 1,
	}
	req := &dto.LoginRequest{Email: user.Email, Password: "WrongPass1234567"}

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil).Times(1)
	s.passwordService.EXPECT().ComparePassword(req.Password, "hashed_password").Return(false).Times(1)

	var persisted *models.User
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(gomock.Any()).DoAndReturn(func(u *models.User) error {
		persisted = u
		return nil
	}).Times(1)
	s.metrics.EXPECT().RecordAuthEvent("failed_login").Times(1)
	// account locked + failed login audit logs
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(2)

	_, err := s.authService.Login(req, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Require().NotNil(persisted)
	s.True(persisted.IsLocked())
}

func (s *AuthServiceTestSuite) TestLogin_RejectsLockedAccount() {
	lockedAt := time.Now()
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "locked@example.com",
		PasswordHash:        "hashed_password",
		Role:                models.RoleUser,
		FailedLoginAttempts: models.MaxFailedLoginAttempts,
		LockedAt:            &lockedAt,
	}
	req := &dto.LoginRequest{Email: user.Email, Password: "SecurePass123456"}

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil).Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	tokens, err := s.authService.Login(req, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrAccountLocked)
	s.Nil(tokens)
}

func (s *AuthServiceTestSuite) TestLogin_ResetsFailedAttempts() {
	userID := uuid.New()
	user := &models.User{
		ID:                  userID,
		Email:               "reset@example.com",
		PasswordHash:        "hashed_password",
		Role:                models.RoleUser,
		FailedLoginAttempts: 1,
	}
	req := &dto.LoginRequest{Email: user.Email, Password: "SecurePass123456"}
	expiresAt := time.Now().Add(15 * time.Minute)

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil).Times(1)
	s.passwordService.EXPECT().ComparePassword(req.Password, "hashed_password").Return(true).Times(1)

	var persisted int = -1
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(gomock.Any()).DoAndReturn(func(u *models.User) error {
		persisted = u.FailedLoginAttempts
		return nil
	}).Times(1)
	s.tokenService.EXPECT().GenerateAccessToken(user).Return("access_token", expiresAt, nil).Times(1)
	s.tokenService.EXPECT().GenerateRefreshToken(userID).Return("refresh_token", time.Now().Add(7*24*time.Hour), nil).Times(1)
	s.refreshTokenRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)
	s.metrics.EXPECT().RecordAuthEvent("login").Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	_, err := s.authService.Login(req, "127.0.0.1", "test-agent")
	s.NoError(err)
	s.Equal(0, persisted)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_Success() {
	userID := uuid.New()
	refreshToken := "valid_refresh_token"
	user := &models.User{ID: userID, Email: "refresh@example.com", Role: models.RoleUser}
	claims := &models.CustomClaims{UserID: userID.String()}
	storedToken := &models.RefreshToken{
		UserID:    userID,
		TokenHash: "stored_hash",
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	expiresAt := time.Now().Add(15 * time.Minute)

	s.tokenService.EXPECT().ValidateRefreshToken(refreshToken).Return(claims, nil).Times(1)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(gomock.Any()).Return(storedToken, nil).Times(1)
	s.userRepo.EXPECT().GetByID(userID).Return(user, nil).Times(1)

	// the presented token is revoked before its replacement is issued
	var revoked *models.RefreshToken
	s.refreshTokenRepo.EXPECT().Update(gomock.Any()).DoAndReturn(func(t *models.RefreshToken) error {
		revoked = t
		return nil
	}).Times(1)
	s.tokenService.EXPECT().GenerateAccessToken(user).Return("new_access_token", expiresAt, nil).Times(1)
	s.tokenService.EXPECT().GenerateRefreshToken(userID).Return("new_refresh_token", time.Now().Add(7*24*time.Hour), nil).Times(1)
	s.refreshTokenRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)
	s.metrics.EXPECT().RecordAuthEvent("token_refresh").Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	newTokens, err := s.authService.RefreshTokens(refreshToken, "127.0.0.1", "test-agent")

	s.NoError(err)
	s.NotNil(newTokens)
	s.Equal("new_refresh_token", newTokens.RefreshToken)
	s.Require().NotNil(revoked)
	s.NotNil(revoked.RevokedAt)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_InvalidToken() {
	s.tokenService.EXPECT().ValidateRefreshToken("not-a-token").Return(nil, errors.New("invalid token")).Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	tokens, err := s.authService.RefreshTokens("not-a-token", "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidRefreshToken)
	s.Nil(tokens)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_RevokedToken() {
	userID := uuid.New()
	refreshToken := "revoked_refresh_token"
	claims := &models.CustomClaims{UserID: userID.String()}
	revokedAt := time.Now()
	revokedToken := &models.RefreshToken{
		UserID:    userID,
		TokenHash: "stored_hash",
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		RevokedAt: &revokedAt,
	}

	s.tokenService.EXPECT().ValidateRefreshToken(refreshToken).Return(claims, nil).Times(1)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(gomock.Any()).Return(revokedToken, nil).Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	tokens, err := s.authService.RefreshTokens(refreshToken, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidRefreshToken)
	s.Nil(tokens)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_UnknownTokenHash() {
	userID := uuid.New()
	claims := &models.CustomClaims{UserID: userID.String()}

	s.tokenService.EXPECT().ValidateRefreshToken("orphaned_token").Return(claims, nil).Times(1)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(gomock.Any()).Return(nil, repositories.ErrRefreshTokenNotFound).Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	tokens, err := s.authService.RefreshTokens("orphaned_token", "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidRefreshToken)
	s.Nil(tokens)
}

func (s *AuthServiceTestSuite) TestLogout_Success() {
	userID := uuid.New()
	accessToken := "valid_access_token"
	claims := &models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-123"},
		UserID:           userID.String(),
	}

	s.tokenService.EXPECT().ValidateAccessToken(accessToken).Return(claims, nil).Times(1)
	s.tokenService.EXPECT().GetTokenExpiry(accessToken).Return(time.Now().Add(15*time.Minute), nil).Times(1)

	var blacklisted *models.BlacklistedToken
	s.blacklistedTokenRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(t *models.BlacklistedToken) error {
		blacklisted = t
		return nil
	}).Times(1)
	s.refreshTokenRepo.EXPECT().RevokeAllForUser(userID).Return(nil).Times(1)
	s.metrics.EXPECT().RecordAuthEvent("logout").Times(1)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	err := s.authService.Logout(accessToken, "127.0.0.1", "test-agent")
	s.NoError(err)
	s.Require().NotNil(blacklisted)
	s.Equal("jti-123", blacklisted.JTI)
	s.Equal(userID, blacklisted.UserID)
}

func (s *AuthServiceTestSuite) TestLogout_InvalidToken() {
	s.tokenService.EXPECT().ValidateAccessToken("not-a-token").Return(nil, errors.New("invalid token")).Times(1)
	s.tokenService.EXPECT().GetJTI("not-a-token").Return("", errors.New("invalid token")).Times(1)

	// Logout is idempotent even for garbage tokens
	err := s.authService.Logout("not-a-token", "127.0.0.1", "test-agent")
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestLogout_ExpiredTokenStillBlacklisted() {
	s.tokenService.EXPECT().ValidateAccessToken("expired_token").Return(nil, errors.New("token has expired")).Times(1)
	s.tokenService.EXPECT().GetJTI("expired_token").Return("jti-expired", nil).Times(1)

	var blacklisted *models.BlacklistedToken
	s.blacklistedTokenRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(t *models.BlacklistedToken) error {
		blacklisted = t
		return nil
	}).Times(1)

	err := s.authService.Logout("expired_token", "127.0.0.1", "test-agent")
	s.NoError(err)
	s.Require().NotNil(blacklisted)
	s.Equal("jti-expired", blacklisted.JTI)
}

func (s *AuthServiceTestSuite) TestProfile_Success() {
	userID := uuid.New()
	user := &models.User{ID: userID, Email: "profile@example.com", Role: models.RoleUser}

	s.userRepo.EXPECT().GetByID(userID).Return(user, nil).Times(1)

	found, err := s.authService.Profile(userID)
	s.NoError(err)
	s.Equal(userID, found.ID)
	s.Equal("profile@example.com", found.Email)
}

func (s *AuthServiceTestSuite) TestProfile_NotFound() {
	userID := uuid.New()
	s.userRepo.EXPECT().GetByID(userID).Return(nil, repositories.ErrUserNotFound).Times(1)

	found, err := s.authService.Profile(userID)
	s.ErrorIs(err, repositories.ErrUserNotFound)
	s.Nil(found)
}
