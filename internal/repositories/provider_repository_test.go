package repositories

import (
	"testing"
	"time"

	"subtrackr/internal/database"
	"subtrackr/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// ProviderRepositorySuite defines the test suite for ProviderRepository
type ProviderRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo ProviderRepositoryInterface
}

// SetupTest runs before each test in the suite
func (s *ProviderRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewProviderRepository(s.db.DB)
}

// TearDownTest runs after each test in the suite
func (s *ProviderRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// TestProviderRepositorySuite runs the test suite
func TestProviderRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProviderRepositorySuite))
}

func (s *ProviderRepositorySuite) TestCreate() {
	provider := &models.Provider{
		Slug:        "netflix",
		DisplayName: "Netflix",
	}

	err := s.repo.Create(provider)
	s.NoError(err)
	s.NotEqual(uuid.Nil, provider.ID)
	s.NotZero(provider.CreatedAt)
	s.NotZero(provider.UpdatedAt)
}

func (s *ProviderRepositorySuite) TestCreate_DuplicateSlug() {
	provider1 := &models.Provider{
		Slug:        "netflix",
		DisplayName: "Netflix",
	}
	err := s.repo.Create(provider1)
	s.NoError(err)

	provider2 := &models.Provider{
		Slug:        "netflix",
		DisplayName: "Netflix Intl",
	}
	err = s.repo.Create(provider2)
	s.ErrorIs(err, ErrProviderAlreadyExists)
}

func (s *ProviderRepositorySuite) TestCreate_InvalidSlug() {
	provider := &models.Provider{
		Slug:        "Not A Slug",
		DisplayName: "Broken",
	}

	err := s.repo.Create(provider)
	s.Error(err)
}

func (s *ProviderRepositorySuite) TestGetByID() {
	provider := database.CreateTestProvider(s.T(), s.db, "Spotify")

	found, err := s.repo.GetByID(provider.ID)
	s.NoError(err)
	s.NotNil(found)
	s.Equal(provider.ID, found.ID)
	s.Equal("spotify", found.Slug)

	_, err = s.repo.GetByID(uuid.New())
	s.ErrorIs(err, ErrProviderNotFound)
}

func (s *ProviderRepositorySuite) TestGetBySlug() {
	database.CreateTestProvider(s.T(), s.db, "YouTube Premium")

	found, err := s.repo.GetBySlug("youtube-premium")
	s.NoError(err)
	s.Equal("YouTube Premium", found.DisplayName)

	_, err = s.repo.GetBySlug("does-not-exist")
	s.ErrorIs(err, ErrProviderNotFound)
}

func (s *ProviderRepositorySuite) TestGetAll_OrderedByDisplayName() {
	database.CreateTestProvider(s.T(), s.db, "Spotify")
	database.CreateTestProvider(s.T(), s.db, "Audible")
	database.CreateTestProvider(s.T(), s.db, "Netflix")

	providers, err := s.repo.GetAll()
	s.NoError(err)
	s.Len(providers, 3)
	s.Equal("Audible", providers[0].DisplayName)
	s.Equal("Netflix", providers[1].DisplayName)
	s.Equal("Spotify", providers[2].DisplayName)
}

func (s *ProviderRepositorySuite) TestUpdate() {
	provider := database.CreateTestProvider(s.T(), s.db, "Hulu")

	verifiedAt := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	provider.MarkVerified(verifiedAt)
	notes := "merged with Disney catalog"
	provider.Notes = &notes

	err := s.repo.Update(provider)
	s.NoError(err)

	updated, err := s.repo.GetByID(provider.ID)
	s.NoError(err)
	s.True(updated.IsVerified())
	s.NotNil(updated.Notes)
	s.Equal(notes, *updated.Notes)
}

func (s *ProviderRepositorySuite) TestDelete() {
	provider := database.CreateTestProvider(s.T(), s.db, "Dropbox")

	err := s.repo.Delete(provider.ID)
	s.NoError(err)

	_, err = s.repo.GetByID(provider.ID)
	s.ErrorIs(err, ErrProviderNotFound)
}

func (s *ProviderRepositorySuite) TestDelete_NotFound() {
	err := s.repo.Delete(uuid.New())
	s.ErrorIs(err, ErrProviderNotFound)
}

func (s *ProviderRepositorySuite) TestDelete_UnlinksSubscriptions() {
	provider := database.CreateTestProvider(s.T(), s.db, "Netflix")
	user := database.CreateTestUser(s.T(), s.db, "viewer@example.com")

	sub := database.CreateTestSubscription(s.T(), s.db, user, "Netflix")
	sub.LinkProvider(provider.ID)
	err := s.db.Save(sub).Error
	s.NoError(err)

	err = s.repo.Delete(provider.ID)
	s.NoError(err)

	var remaining models.Subscription
	err = s.db.First(&remaining, "id = ?", sub.ID).Error
	s.NoError(err)
	s.Nil(remaining.ProviderID)
}

func (s *ProviderRepositorySuite) TestCount() {
	count, err := s.repo.Count()
	s.NoError(err)
	s.Equal(int64(0), count)

	database.CreateTestProvider(s.T(), s.db, "Netflix")
	database.CreateTestProvider(s.T(), s.db, "Spotify")

	count, err = s.repo.Count()
	s.NoError(err)
	s.Equal(int64(2), count)
}
