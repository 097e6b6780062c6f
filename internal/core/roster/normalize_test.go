package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Boston Celtics", "boston celtics"},
		{"  Boston   Celtics  ", "boston celtics"},
		{"Atlético Madrid", "atletico madrid"},
		{"SAINT-ÉTIENNE", "saint-etienne"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in, nil), "input %q", tt.in)
	}
}

func TestNormalizeAppliesAliases(t *testing.T) {
	aliases := Aliases{
		"la lakers": "los angeles lakers",
		"man utd":   "manchester united",
	}

	assert.Equal(t, "los angeles lakers", Normalize("LA Lakers", aliases))
	assert.Equal(t, "manchester united", Normalize("  MAN  UTD ", aliases))
	// Names without an alias pass through normalized.
	assert.Equal(t, "boston celtics", Normalize("Boston Celtics", aliases))
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, "boston_celtics", EntityID("Boston Celtics", nil))
	assert.Equal(t, "los_angeles_lakers", EntityID("LA Lakers", Aliases{"la lakers": "los angeles lakers"}))
}
