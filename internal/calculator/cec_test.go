package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCECRequirement(t *testing.T) {
	t.Run("reference calculation", func(t *testing.T) {
		// K = ((10*150/3500)*1500)/(53*10)/0.5 = 2.42588,
		// requirement = K * 0.7 * 1.0 * 1000.
		got := CECRequirement(5.8, 6.5, 10.0, 1500, 53, 1.0)
		assert.InDelta(t, 1698.1, got, 0.1)
	})

	t.Run("zero at target", func(t *testing.T) {
		assert.Equal(t, 0.0, CECRequirement(6.5, 6.5, 10.0, 1500, 53, 1.0))
	})

	t.Run("zero above target", func(t *testing.T) {
		assert.Equal(t, 0.0, CECRequirement(7.0, 6.5, 10.0, 1500, 53, 1.0))
	})

	t.Run("dose factor scales linearly", func(t *testing.T) {
		single := CECRequirement(5.8, 6.5, 10.0, 1500, 53, 1.0)
		double := CECRequirement(5.8, 6.5, 10.0, 1500, 53, 2.0)
		assert.InDelta(t, 2*single, double, 1e-6)
	})

	t.Run("higher CEC needs more lime", func(t *testing.T) {
		low := CECRequirement(5.8, 6.5, 5.0, 1500, 53, 1.0)
		high := CECRequirement(5.8, 6.5, 40.0, 1500, 53, 1.0)
		assert.Greater(t, high, low)
	})
}

func TestSCecToPh(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want float64
	}{
		{"zero saturation", 0, 4.5},
		{"quarter saturation", 25, 5.5},
		{"segment boundary", 50, 6.5},
		{"upper segment", 75, 7.25},
		{"full saturation", 100, 8.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SCecToPh(tt.pct), 1e-9)
		})
	}
}

func TestCECRequirementWithSCec(t *testing.T) {
	t.Run("averages measured and derived doses", func(t *testing.T) {
		// Modified S/CEC 40% maps to pH 6.1.
		fromMeasured := CECRequirement(5.8, 6.5, 10.0, 1500, 53, 1.0)
		fromDerived := CECRequirement(6.1, 6.5, 10.0, 1500, 53, 1.0)
		want := (fromMeasured + fromDerived) / 2

		got := CECRequirementWithSCec(5.8, 6.5, 10.0, 1500, 53, 1.0, 40)
		assert.InDelta(t, want, got, 1e-6)
	})

	t.Run("zero when blended pH is above target", func(t *testing.T) {
		// S/CEC 90% maps to pH 7.7; average with 5.8 is 6.75 > 6.5.
		got := CECRequirementWithSCec(5.8, 6.5, 10.0, 1500, 53, 1.0, 90)
		assert.Equal(t, 0.0, got)
	})
}

func TestCECAchievedPh(t *testing.T) {
	t.Run("round trip through the forward formula", func(t *testing.T) {
		req := CECRequirement(5.8, 6.5, 10.0, 1500, 53, 1.0)
		got := CECAchievedPh(req, 5.8, 10.0, 1500, 53, 1.0)
		assert.InDelta(t, 6.5, got, 1e-6)
	})

	t.Run("partial dose lands below target", func(t *testing.T) {
		req := CECRequirement(5.8, 6.5, 10.0, 1500, 53, 1.0)
		got := CECAchievedPh(req/2, 5.8, 10.0, 1500, 53, 1.0)
		assert.Greater(t, got, 5.8)
		assert.Less(t, got, 6.5)
	})

	t.Run("degenerate inputs return current pH", func(t *testing.T) {
		assert.Equal(t, 5.8, CECAchievedPh(0, 5.8, 10.0, 1500, 53, 1.0))
		assert.Equal(t, 5.8, CECAchievedPh(1000, 5.8, 0, 1500, 53, 1.0))
		assert.Equal(t, 5.8, CECAchievedPh(1000, 5.8, 10.0, 0, 53, 1.0))
		assert.Equal(t, 5.8, CECAchievedPh(1000, 5.8, 10.0, 1500, 0, 1.0))
		assert.Equal(t, 5.8, CECAchievedPh(1000, 5.8, 10.0, 1500, 53, 0))
	})
}
