package database

import (
	"testing"
	"time"

	"subtrackr/internal/models"

	"github.com/stretchr/testify/suite"
)

func TestDatabase(t *testing.T) {
	suite.Run(t, new(DatabaseSuite))
}

type DatabaseSuite struct {
	suite.Suite
	db *DB
}

func (s *DatabaseSuite) SetupTest() {
	s.db = SetupTestDB(s.T())
}

func (s *DatabaseSuite) TearDownTest() {
	CleanupTestDB(s.T(), s.db)
}

func (s *DatabaseSuite) TestSeedAdminUser_CreatesAdmin() {
	user, err := s.db.SeedAdminUser("admin@example.com", "bcrypt-hash", "Admin", "User")
	s.Require().NoError(err)

	s.Equal(models.RoleAdmin, user.Role)
	s.Equal("bcrypt-hash", user.PasswordHash)

	var stored models.User
	s.Require().NoError(s.db.Where("email = ?", "admin@example.com").First(&stored).Error)
	s.Equal("bcrypt-hash", stored.PasswordHash)
	s.Equal(models.RoleAdmin, stored.Role)
}

func (s *DatabaseSuite) TestSeedAdminUser_ExistingUserIsKept() {
	first, err := s.db.SeedAdminUser("admin@example.com", "original-hash", "Admin", "User")
	s.Require().NoError(err)

	second, err := s.db.SeedAdminUser("admin@example.com", "different-hash", "Other", "Name")
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal("original-hash", second.PasswordHash)

	var count int64
	s.Require().NoError(s.db.Model(&models.User{}).Where("email = ?", "admin@example.com").Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *DatabaseSuite) TestCleanupExpiredTokens() {
	user := CreateTestUser(s.T(), s.db, "tokens@example.com")

	expired := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: "expired-hash",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	live := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: "live-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.db.Create(expired).Error)
	s.Require().NoError(s.db.Create(live).Error)

	expiredJTI := &models.BlacklistedToken{
		JTI:       "expired-jti",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	liveJTI := &models.BlacklistedToken{
		JTI:       "live-jti",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.db.Create(expiredJTI).Error)
	s.Require().NoError(s.db.Create(liveJTI).Error)

	s.Require().NoError(s.db.CleanupExpiredTokens())

	var refreshCount int64
	s.Require().NoError(s.db.Model(&models.RefreshToken{}).Count(&refreshCount).Error)
	s.Equal(int64(1), refreshCount)

	var remaining models.RefreshToken
	s.Require().NoError(s.db.First(&remaining).Error)
	s.Equal("live-hash", remaining.TokenHash)

	var blacklistCount int64
	s.Require().NoError(s.db.Model(&models.BlacklistedToken{}).Count(&blacklistCount).Error)
	s.Equal(int64(1), blacklistCount)

	var remainingJTI models.BlacklistedToken
	s.Require().NoError(s.db.First(&remainingJTI).Error)
	s.Equal("live-jti", remainingJTI.JTI)
}
