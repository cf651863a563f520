package matching

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"
)

func TestIcons(t *testing.T) {
	suite.Run(t, new(IconsSuite))
}

type IconsSuite struct {
	suite.Suite
}

func (s *IconsSuite) TestFallbackIconKeys() {
	keys := FallbackIconKeys()
	s.Equal([]string{"card", "bolt", "globe", "music", "star"}, keys)
}

func (s *IconsSuite) TestIsValidFallbackIconKey() {
	for _, key := range FallbackIconKeys() {
		s.True(IsValidFallbackIconKey(key), "key %q", key)
	}

	s.False(IsValidFallbackIconKey("rocket"))
	s.False(IsValidFallbackIconKey(""))
	s.False(IsValidFallbackIconKey("Card"))
}

func (s *IconsSuite) TestPickFallbackIcon_Deterministic() {
	seeds := []string{"netflix", "spotify", "youtube-premium", "a", ""}

	for _, seed := range seeds {
		first := PickFallbackIcon(seed)
		s.True(IsValidFallbackIconKey(first), "seed %q", seed)
		for i := 0; i < 10; i++ {
			s.Equal(first, PickFallbackIcon(seed), "seed %q", seed)
		}
	}
}

func (s *IconsSuite) TestPickFallbackIcon_EmptySeed() {
	// an empty seed hashes to zero, which lands in the first bucket
	s.Equal(IconCard, PickFallbackIcon(""))
}

func (s *IconsSuite) TestRandomFallbackIcon_ValidKey() {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		s.True(IsValidFallbackIconKey(RandomFallbackIcon(rng)))
	}
}

func (s *IconsSuite) TestRandomFallbackIcon_Replayable() {
	first := rand.New(rand.NewSource(7))
	second := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		s.Equal(RandomFallbackIcon(first), RandomFallbackIcon(second))
	}
}

func (s *IconsSuite) TestRandomFallbackIcon_CoversAllKeys() {
	rng := rand.New(rand.NewSource(1))
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[RandomFallbackIcon(rng)] = true
	}
	s.Len(seen, len(FallbackIconKeys()))
}
