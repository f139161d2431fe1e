package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docuvault/prescription-extractor/constants"
)

func TestDecide(t *testing.T) {
	r := New(Config{})

	tests := []struct {
		name string
		in   Input
		want Tier
	}{
		{
			name: "forced override",
			in:   Input{Confidence: 0.95, Type: constants.Printed, ForceVision: true, TextAvailable: true, VisionAvailable: true},
			want: TierVision,
		},
		{
			name: "forced but vision unavailable falls through",
			in:   Input{Confidence: 0.95, Type: constants.Printed, ForceVision: true, TextAvailable: true},
			want: TierText,
		},
		{
			name: "handwritten goes to vision",
			in:   Input{Confidence: 0.8, Type: constants.Handwritten, TextAvailable: true, VisionAvailable: true},
			want: TierVision,
		},
		{
			name: "mixed goes to vision",
			in:   Input{Confidence: 0.8, Type: constants.Mixed, TextAvailable: true, VisionAvailable: true},
			want: TierVision,
		},
		{
			name: "low confidence goes to vision",
			in:   Input{Confidence: 0.4, Type: constants.Printed, TextAvailable: true, VisionAvailable: true},
			want: TierVision,
		},
		{
			name: "printed with good confidence prefers text",
			in:   Input{Confidence: 0.85, Type: constants.Printed, TextAvailable: true, VisionAvailable: true},
			want: TierText,
		},
		{
			name: "handwritten without vision uses text",
			in:   Input{Confidence: 0.3, Type: constants.Handwritten, TextAvailable: true},
			want: TierText,
		},
		{
			name: "nothing remote leaves local fallback",
			in:   Input{Confidence: 0.2, Type: constants.Handwritten},
			want: TierLocalFallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := r.Decide(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestDecideThresholdBoundary(t *testing.T) {
	r := New(Config{VisionThreshold: 0.6})
	in := Input{Type: constants.Printed, TextAvailable: true, VisionAvailable: true}

	in.Confidence = 0.59
	got, _ := r.Decide(in)
	assert.Equal(t, TierVision, got)

	in.Confidence = 0.6
	got, _ = r.Decide(in)
	assert.Equal(t, TierText, got)
}

func TestDecideCustomThreshold(t *testing.T) {
	r := New(Config{VisionThreshold: 0.8})
	in := Input{Confidence: 0.7, Type: constants.Printed, TextAvailable: true, VisionAvailable: true}

	got, reason := r.Decide(in)
	assert.Equal(t, TierVision, got)
	assert.Contains(t, reason, "below threshold")
}
