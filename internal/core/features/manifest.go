package features

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Manifest is the versioned, ordered feature schema. Any trained model
// artifact carries the manifest hash so feature drift across code changes
// is detectable instead of silent.
type Manifest struct {
	Version string
	Names   []string
}

func (m Manifest) Len() int { return len(m.Names) }

// Hash fingerprints the version plus the exact feature order.
func (m Manifest) Hash() string {
	h := sha256.New()
	h.Write([]byte(m.Version))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(m.Names, "\x00")))
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// featureNames is the single source of truth for the schema. Extract
// appends values in exactly this order; changing either side without the
// other breaks the extractor's self-check.
var featureNames = []string{
	"home_win_rate",
	"away_win_rate",
	"home_venue_win_rate",
	"away_venue_win_rate",
	"home_points_for_pg",
	"away_points_for_pg",
	"home_points_against_pg",
	"away_points_against_pg",
	"home_point_diff_pg",
	"away_point_diff_pg",
	"home_pythagorean",
	"away_pythagorean",
	"home_momentum",
	"away_momentum",
	"home_streak",
	"away_streak",
	"home_rest_days",
	"away_rest_days",
	"win_rate_diff",
	"rating_diff",
	"elo_win_prob",
	"home_advantage",
	"day_of_week",
	"month",
	"home_has_history",
	"away_has_history",
}
