package matching

import "math/rand"

// Fallback icon keys shown when a subscription has no linked provider logo.
// The set is fixed at five entries; PickFallbackIcon depends on its length.
const (
	IconCard  = "card"
	IconBolt  = "bolt"
	IconGlobe = "globe"
	IconMusic = "music"
	IconStar  = "star"
)

// FallbackIconKeys lists every valid fallback icon key in bucket order.
func FallbackIconKeys() []string {
	return []string{IconCard, IconBolt, IconGlobe, IconMusic, IconStar}
}

// IsValidFallbackIconKey checks whether a key belongs to the fixed set.
func IsValidFallbackIconKey(key string) bool {
	for _, valid := range FallbackIconKeys() {
		if key == valid {
			return true
		}
	}
	return false
}

// iconHashModulus keeps the accumulator inside safe integer range while
// spreading nearby seeds across buckets (Mersenne prime 2^31-1).
const iconHashModulus = 2147483647

// PickFallbackIcon deterministically selects an icon key for a seed, usually
// the subscription's normalized name. Equal seeds always map to the same key;
// distinct seeds may collide, which is fine for a decorative selector.
func PickFallbackIcon(seed string) string {
	keys := FallbackIconKeys()

	var hash int64
	for _, r := range seed {
		hash = (hash*31 + int64(r)) % iconHashModulus
	}
	if hash < 0 {
		hash = -hash
	}

	return keys[hash%int64(len(keys))]
}

// RandomFallbackIcon selects an icon key uniformly at random from the fixed
// set, for subscriptions that have no stable identity to seed against yet.
// The random source is injected so tests can replay selections.
func RandomFallbackIcon(rng *rand.Rand) string {
	keys := FallbackIconKeys()
	return keys[rng.Intn(len(keys))]
}
