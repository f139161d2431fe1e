package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docuvault/prescription-extractor/constants"
)

func TestFromConfidenceBreakpoints(t *testing.T) {
	c := New(Config{})

	tests := []struct {
		conf float32
		want constants.PrescriptionType
	}{
		{0.0, constants.Handwritten},
		{0.49, constants.Handwritten},
		{0.5, constants.Mixed},
		{0.69, constants.Mixed},
		{0.7, constants.Printed},
		{0.95, constants.Printed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.FromConfidence(tt.conf), "confidence %.2f", tt.conf)
	}
}

func TestClassifyDirectoryHintWins(t *testing.T) {
	c := New(Config{})

	tests := []struct {
		path string
		conf float32
		want constants.PrescriptionType
	}{
		{"/data/handwritten_rx/a.jpg", 0.95, constants.Handwritten},
		{"/data/printed/b.jpg", 0.1, constants.Printed},
		{"/data/mixed-forms/c.png", 0.9, constants.Mixed},
		{"/data/screenshots/d.png", 0.2, constants.Digital},
		{"/data/digital/e.png", 0.2, constants.Digital},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.path, tt.conf), "path %s", tt.path)
	}
}

func TestClassifyNoHintFallsBackToConfidence(t *testing.T) {
	c := New(Config{})

	assert.Equal(t, constants.Handwritten, c.Classify("/data/batch7/a.jpg", 0.3))
	assert.Equal(t, constants.Mixed, c.Classify("/data/batch7/a.jpg", 0.6))
	assert.Equal(t, constants.Printed, c.Classify("/data/batch7/a.jpg", 0.8))
}

func TestCustomBreakpoints(t *testing.T) {
	c := New(Config{HandwrittenBelow: 0.3, PrintedFrom: 0.9})

	assert.Equal(t, constants.Mixed, c.FromConfidence(0.5))
	assert.Equal(t, constants.Handwritten, c.FromConfidence(0.2))
	assert.Equal(t, constants.Printed, c.FromConfidence(0.9))
}
