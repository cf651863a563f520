// Package catalog ships a small built-in provider list used when the hosted
// catalog is unreachable or empty, so name matching keeps working for the
// most common services even before an admin has curated anything.
package catalog

import (
	"sort"

	"subtrackr/internal/matching"
	"subtrackr/internal/models"

	"github.com/google/uuid"
)

type builtinEntry struct {
	displayName string
	logoPath    string
}

// Alphabetical by display name; Builtin relies on this ordering matching the
// hosted catalog's ORDER BY display_name.
var builtinEntries = []builtinEntry{
	{"Amazon Prime Video", "/logos/amazon-prime-video.svg"},
	{"Apple Music", "/logos/apple-music.svg"},
	{"Apple TV+", "/logos/apple-tv.svg"},
	{"Disney+", "/logos/disney-plus.svg"},
	{"Dropbox", "/logos/dropbox.svg"},
	{"GitHub", "/logos/github.svg"},
	{"HBO Max", "/logos/hbo-max.svg"},
	{"Hulu", "/logos/hulu.svg"},
	{"iCloud+", "/logos/icloud.svg"},
	{"Netflix", "/logos/netflix.svg"},
	{"Notion", "/logos/notion.svg"},
	{"Paramount+", "/logos/paramount-plus.svg"},
	{"PlayStation Plus", "/logos/playstation-plus.svg"},
	{"Spotify", "/logos/spotify.svg"},
	{"YouTube Premium", "/logos/youtube-premium.svg"},
}

// builtinNamespace keeps the generated IDs stable across calls so a
// subscription linked against the built-in list survives a restart.
var builtinNamespace = uuid.MustParse("9d3c8f72-4a1e-4b6f-8c25-1f0a6d9e4b11")

// Builtin returns the fallback catalog, ordered alphabetically by display
// name. The returned slice is freshly allocated; callers may do as they
// please with it.
func Builtin() []models.Provider {
	providers := make([]models.Provider, 0, len(builtinEntries))
	for _, entry := range builtinEntries {
		logo := entry.logoPath
		providers = append(providers, models.Provider{
			ID:          uuid.NewSHA1(builtinNamespace, []byte(entry.displayName)),
			Slug:        matching.Normalize(entry.displayName),
			DisplayName: entry.displayName,
			LogoPath:    &logo,
		})
	}

	sort.Slice(providers, func(i, j int) bool {
		return providers[i].DisplayName < providers[j].DisplayName
	})

	return providers
}
