package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		sig  *Signal
		req  Requirements
	}{
		{
			name: "nil signal",
			sig:  nil,
			req:  DefaultRequirements,
		},
		{
			name: "empty signal",
			sig:  &Signal{},
			req:  DefaultRequirements,
		},
		{
			name: "single sample",
			sig:  &Signal{Timestamps: []float64{0}, Values: []float64{1}},
			req:  DefaultRequirements,
		},
		{
			name: "below lens minimum",
			sig: &Signal{
				Timestamps: []float64{0, 1, 2, 3, 4},
				Values:     []float64{1, 2, 3, 4, 5},
			},
			req: Requirements{MinSamples: 8},
		},
		{
			name: "NaN value",
			sig: &Signal{
				Timestamps: []float64{0, 1, 2, 3},
				Values:     []float64{1, math.NaN(), 3, 4},
			},
			req: DefaultRequirements,
		},
		{
			name: "all NaN values",
			sig: &Signal{
				Timestamps: []float64{0, 1, 2, 3},
				Values:     []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()},
			},
			req: DefaultRequirements,
		},
		{
			name: "infinite value",
			sig: &Signal{
				Timestamps: []float64{0, 1, 2, 3},
				Values:     []float64{1, 2, math.Inf(1), 4},
			},
			req: DefaultRequirements,
		},
		{
			name: "unsorted timestamps",
			sig: &Signal{
				Timestamps: []float64{0, 2, 1, 3},
				Values:     []float64{1, 2, 3, 4},
			},
			req: DefaultRequirements,
		},
		{
			name: "duplicate timestamps with uniform sampling",
			sig: &Signal{
				Timestamps: []float64{0, 1, 1, 2},
				Values:     []float64{1, 2, 3, 4},
			},
			req: Requirements{Uniform: true},
		},
		{
			name: "all identical timestamps",
			sig: &Signal{
				Timestamps: []float64{5, 5, 5, 5},
				Values:     []float64{1, 2, 3, 4},
			},
			req: DefaultRequirements,
		},
		{
			name: "flat signal when variance required",
			sig: &Signal{
				Timestamps: []float64{0, 1, 2, 3},
				Values:     []float64{7, 7, 7, 7},
			},
			req: Requirements{NeedsVariance: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.sig, tt.req)
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrCodeInvalidSignal), "want INVALID_SIGNAL, got %v", err)
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	tests := []struct {
		name string
		sig  *Signal
		req  Requirements
	}{
		{
			name: "minimal irregular sampling",
			sig: &Signal{
				Timestamps: []float64{0, 0.7, 1.9, 4.2},
				Values:     []float64{1, -2, 3, 0.5},
			},
			req: Requirements{MinSamples: 4, NeedsVariance: true},
		},
		{
			name: "uniform sampling",
			sig: &Signal{
				Timestamps: []float64{0, 1, 2, 3, 4, 5},
				Values:     []float64{0, 1, 0, -1, 0, 1},
			},
			req: Requirements{Uniform: true, NeedsVariance: true},
		},
		{
			name: "flat signal when variance not required",
			sig: &Signal{
				Timestamps: []float64{0, 1, 2, 3},
				Values:     []float64{7, 7, 7, 7},
			},
			req: DefaultRequirements,
		},
		{
			name: "duplicate timestamps without uniform assumption",
			sig: &Signal{
				Timestamps: []float64{0, 1, 1, 2},
				Values:     []float64{1, 2, 3, 4},
			},
			req: DefaultRequirements,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Validate(tt.sig, tt.req))
		})
	}
}
