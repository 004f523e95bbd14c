package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		kp     float64
		gScale string
		level  int
	}{
		{0, "G0", 0},
		{4.9, "G0", 0},
		{5, "G1", 1},
		{5.9, "G1", 1},
		{6, "G2", 2},
		{7, "G3", 3},
		{8, "G4", 4},
		{8.7, "G4", 4},
		{9, "G5", 5},
	}
	for _, tt := range tests {
		sev := ClassifySeverity(tt.kp)
		assert.Equal(t, tt.gScale, sev.GScale, "kp=%g", tt.kp)
		assert.Equal(t, tt.level, sev.Level, "kp=%g", tt.kp)
	}
}

func TestRegionByCode(t *testing.T) {
	t.Run("known code", func(t *testing.T) {
		r, err := RegionByCode("auroral")

		require.NoError(t, err)
		assert.Equal(t, "Auroral", r.Name)
		assert.Equal(t, 1.65, r.StormResponse)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := RegionByCode("lunar")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown region code")
	})
}

func TestStormIntensity(t *testing.T) {
	assert.Equal(t, 0.0, StormIntensity(4.9))
	assert.Equal(t, 0.20, StormIntensity(5))
	assert.Equal(t, 0.35, StormIntensity(6.5))
	assert.Equal(t, 0.55, StormIntensity(7))
	assert.Equal(t, 0.75, StormIntensity(8.9))
	assert.Equal(t, 1.00, StormIntensity(9))
}

func TestStormEnhancementFactor(t *testing.T) {
	auroral, err := RegionByCode("auroral")
	require.NoError(t, err)

	t.Run("quiet conditions are neutral", func(t *testing.T) {
		assert.Equal(t, 1.0, auroral.StormEnhancementFactor(2, 350))
	})

	t.Run("storm scales with storm response", func(t *testing.T) {
		// G5 intensity 1.0, full storm response applies.
		assert.InDelta(t, 1.65, auroral.StormEnhancementFactor(9, 400), 1e-12)
	})

	t.Run("fast solar wind boost", func(t *testing.T) {
		assert.InDelta(t, 1.65+0.1, auroral.StormEnhancementFactor(9, 640), 1e-12)
	})

	t.Run("boost capped at 0.2", func(t *testing.T) {
		assert.InDelta(t, 1.65+0.2, auroral.StormEnhancementFactor(9, 2000), 1e-12)
	})
}

func TestAssessRisk(t *testing.T) {
	mid, err := RegionByCode("mid_latitude")
	require.NoError(t, err)

	tests := []struct {
		tec      float64
		level    string
		severity int
	}{
		{5, "LOW", 1},
		{12, "MODERATE", 2},
		{18, "HIGH", 3},
		{25, "SEVERE", 4},
		{35, "EXTREME", 5},
		{80, "EXTREME", 5},
	}
	for _, tt := range tests {
		risk := mid.AssessRisk(tt.tec)
		assert.Equal(t, tt.level, risk.Level, "tec=%g", tt.tec)
		assert.Equal(t, tt.severity, risk.Severity, "tec=%g", tt.tec)
		assert.Equal(t, tt.tec, risk.TEC)
		assert.NotEmpty(t, risk.Description)
	}

	t.Run("polar thresholds are lower", func(t *testing.T) {
		polar, err := RegionByCode("polar")
		require.NoError(t, err)

		assert.Equal(t, "HIGH", polar.AssessRisk(12).Level)
		assert.Equal(t, "MODERATE", mid.AssessRisk(12).Level)
	})
}
