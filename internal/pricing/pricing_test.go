package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name     string
		brand    string
		issue    string
		expected int
	}{
		{name: "apple screen crack", brand: "Apple", issue: "screen-crack", expected: 6300},
		{name: "unknown brand and issue fall back to defaults", brand: "Unknown", issue: "unknown-issue", expected: 2000},
		{name: "samsung battery", brand: "Samsung", issue: "battery", expected: 1950},
		{name: "motorola software", brand: "Motorola", issue: "software", expected: 400},
		{name: "realme camera rounds", brand: "Realme", issue: "camera", expected: 1700},
		{name: "nokia charging rounds up", brand: "Nokia", issue: "charging", expected: 680},
		{name: "unknown brand known issue", brand: "Lava", issue: "water-damage", expected: 4000},
		{name: "known brand unknown issue", brand: "Apple", issue: "antenna", expected: 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Estimate(tt.brand, tt.issue))
		})
	}
}

func TestIssuesAndBrands(t *testing.T) {
	assert.Len(t, Issues(), 8)
	assert.Len(t, Brands(), 10)
}
