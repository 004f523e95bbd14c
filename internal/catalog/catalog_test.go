package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIntegrity(t *testing.T) {
	require.NotEmpty(t, MajorStorms)

	seen := map[string]bool{}
	for _, s := range MajorStorms {
		assert.NotEmpty(t, s.ID)
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true

		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Description)
		assert.NotEmpty(t, s.Impacts)
		assert.NotEmpty(t, s.ScientificContext)
		assert.False(t, s.PeakTimestamp.IsZero(), "%s has no peak timestamp", s.ID)
		assert.Contains(t, []string{CategorySolarStorm, CategorySolarWind}, s.Category)
		assert.GreaterOrEqual(t, s.MaxKp, 5.0, "%s is below storm level", s.ID)
		assert.LessOrEqual(t, s.MaxKp, 9.0)
	}

	t.Run("chronological order", func(t *testing.T) {
		for i := 1; i < len(MajorStorms); i++ {
			assert.True(t, MajorStorms[i-1].PeakTimestamp.Before(MajorStorms[i].PeakTimestamp),
				"%s should precede %s", MajorStorms[i-1].ID, MajorStorms[i].ID)
		}
	})
}

func TestByID(t *testing.T) {
	t.Run("known storm", func(t *testing.T) {
		s, ok := ByID("mothers_day_storm_2024")

		require.True(t, ok)
		assert.Equal(t, "G5 - Extreme", s.Severity)
		assert.Equal(t, 9.0, s.MaxKp)
	})

	t.Run("unknown storm", func(t *testing.T) {
		_, ok := ByID("carrington_1859")
		assert.False(t, ok)
	})
}

func TestBySeverity(t *testing.T) {
	t.Run("bare scale", func(t *testing.T) {
		storms := BySeverity("G4")

		require.Len(t, storms, 3)
		for _, s := range storms {
			assert.Contains(t, []string{"G4 - Severe", "G5 - Extreme"}, s.Severity)
		}
	})

	t.Run("full label", func(t *testing.T) {
		assert.Len(t, BySeverity("G5 - Extreme"), 1)
	})

	t.Run("unrecognized value defaults to G3", func(t *testing.T) {
		assert.Len(t, BySeverity("severe-ish"), len(BySeverity("G3")))
	})

	t.Run("G1 returns everything", func(t *testing.T) {
		assert.Len(t, BySeverity("G1"), len(MajorStorms))
	})
}

func TestByCategory(t *testing.T) {
	solar := ByCategory(CategorySolarStorm)
	wind := ByCategory(CategorySolarWind)

	assert.Len(t, solar, 4)
	assert.Len(t, wind, 2)
	assert.Equal(t, len(MajorStorms), len(solar)+len(wind))
}

func TestNotable(t *testing.T) {
	notable := Notable()

	require.Len(t, notable, 1)
	assert.Equal(t, "mothers_day_storm_2024", notable[0].ID)
}
