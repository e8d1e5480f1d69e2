package augment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvr-ai/go-detaug/images"
)

// TestClipBoxes_Cases validates every branch of the first-match case analysis
// and the removal threshold.
func TestClipBoxes_Cases(t *testing.T) {
	box := Box{X1: 10, Y1: 10, X2: 20, Y2: 20}

	tests := []struct {
		name     string
		box      Box
		rects    []images.Rect
		expected Box
	}{
		{
			name:     "Full containment removes the box",
			box:      box,
			rects:    []images.Rect{{X1: 0, Y1: 0, X2: 30, Y2: 30}},
			expected: Box{X1: 10, Y1: 10, X2: 10, Y2: 10},
		},
		{
			name:     "Top occlusion keeps lower remainder",
			box:      box,
			rects:    []images.Rect{{X1: 5, Y1: 5, X2: 25, Y2: 15}},
			expected: Box{X1: 10, Y1: 15, X2: 20, Y2: 20},
		},
		{
			name:     "Bottom occlusion keeps upper remainder",
			box:      box,
			rects:    []images.Rect{{X1: 5, Y1: 15, X2: 25, Y2: 25}},
			expected: Box{X1: 10, Y1: 10, X2: 20, Y2: 15},
		},
		{
			name:     "Left occlusion keeps right remainder",
			box:      box,
			rects:    []images.Rect{{X1: 5, Y1: 5, X2: 15, Y2: 25}},
			expected: Box{X1: 15, Y1: 10, X2: 20, Y2: 20},
		},
		{
			name:     "Right occlusion keeps left remainder",
			box:      box,
			rects:    []images.Rect{{X1: 15, Y1: 5, X2: 25, Y2: 25}},
			expected: Box{X1: 10, Y1: 10, X2: 15, Y2: 20},
		},
		{
			name:     "Interior rectangle leaves box unchanged",
			box:      box,
			rects:    []images.Rect{{X1: 12, Y1: 12, X2: 14, Y2: 14}},
			expected: box,
		},
		{
			name:     "Distant rectangle leaves box unchanged",
			box:      box,
			rects:    []images.Rect{{X1: 100, Y1: 100, X2: 200, Y2: 200}},
			expected: box,
		},
		{
			name:     "Horizontal span without vertical overlap does not fall through",
			box:      box,
			rects:    []images.Rect{{X1: 0, Y1: 12, X2: 30, Y2: 18}},
			expected: box,
		},
		{
			name: "First matching rectangle wins",
			box:  box,
			rects: []images.Rect{
				{X1: 0, Y1: 0, X2: 30, Y2: 12},
				{X1: 0, Y1: 0, X2: 30, Y2: 30},
			},
			expected: Box{X1: 10, Y1: 12, X2: 20, Y2: 20},
		},
		{
			name: "Non-matching rectangles are skipped",
			box:  box,
			rects: []images.Rect{
				{X1: 12, Y1: 12, X2: 14, Y2: 14},
				{X1: 5, Y1: 15, X2: 25, Y2: 25},
			},
			expected: Box{X1: 10, Y1: 10, X2: 20, Y2: 15},
		},
		{
			name: "Touching rectangle matches and stops the search",
			box:  box,
			rects: []images.Rect{
				{X1: 0, Y1: 0, X2: 30, Y2: 10},
				{X1: 0, Y1: 0, X2: 30, Y2: 30},
			},
			expected: box,
		},
		{
			name:     "Remainder under ten percent is removed",
			box:      Box{X1: 0, Y1: 0, X2: 100, Y2: 1},
			rects:    []images.Rect{{X1: 0, Y1: -5, X2: 95, Y2: 5}},
			expected: Box{X1: 0, Y1: 0, X2: 0, Y2: 0},
		},
		{
			name:     "Remainder of exactly ten percent is kept",
			box:      Box{X1: 0, Y1: 0, X2: 100, Y2: 1},
			rects:    []images.Rect{{X1: 0, Y1: -5, X2: 90, Y2: 5}},
			expected: Box{X1: 90, Y1: 0, X2: 100, Y2: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClipBoxes([]Box{tt.box}, tt.rects, DefaultRemovalThreshold)
			assert.Len(t, result, 1)
			assert.Equal(t, tt.expected, result[0])
		})
	}
}

// TestClipBoxes_NoRects ensures an empty occlusion set is the identity and that
// the result does not alias the input.
func TestClipBoxes_NoRects(t *testing.T) {
	boxes := []Box{
		{X1: 10, Y1: 10, X2: 20, Y2: 20},
		{X1: 0, Y1: 0, X2: 5, Y2: 5},
		{X1: 3, Y1: 3, X2: 3, Y2: 9},
	}
	result := ClipBoxes(boxes, nil, DefaultRemovalThreshold)
	assert.Equal(t, boxes, result)

	result[0].X1 = 99
	assert.Equal(t, float32(10), boxes[0].X1, "input boxes must not be modified")
}

// TestClipBoxes_OrderPreserved validates that each box is clipped independently
// and the output keeps the input order.
func TestClipBoxes_OrderPreserved(t *testing.T) {
	boxes := []Box{
		{X1: 10, Y1: 10, X2: 20, Y2: 20},
		{X1: 100, Y1: 100, X2: 120, Y2: 120},
		{X1: 200, Y1: 200, X2: 210, Y2: 210},
	}
	rects := []images.Rect{
		{X1: 195, Y1: 195, X2: 215, Y2: 215},
		{X1: 5, Y1: 5, X2: 25, Y2: 15},
	}

	result := ClipBoxes(boxes, rects, DefaultRemovalThreshold)
	assert.Equal(t, []Box{
		{X1: 10, Y1: 15, X2: 20, Y2: 20},
		{X1: 100, Y1: 100, X2: 120, Y2: 120},
		{X1: 200, Y1: 200, X2: 200, Y2: 200},
	}, result)
}

// TestClipBoxes_Threshold checks that the threshold parameter is honoured.
func TestClipBoxes_Threshold(t *testing.T) {
	box := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	// Covers the top 70% of the box.
	rects := []images.Rect{{X1: -1, Y1: -1, X2: 11, Y2: 7}}

	assert.Equal(t, Box{X1: 0, Y1: 7, X2: 10, Y2: 10},
		ClipBoxes([]Box{box}, rects, DefaultRemovalThreshold)[0])
	assert.Equal(t, box.Removed(),
		ClipBoxes([]Box{box}, rects, 0.5)[0])
}

// TestClipBoxes_MatchesLinearScan checks the indexed lookup against visiting
// every rectangle in sampling order.
func TestClipBoxes_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for range 500 {
		boxes := randomBoxes(rng, 8, 120, 80)
		cfg := DefaultCutoutConfig()
		cfg.Prob = 1
		cfg.Num = Fixed(6)
		rects := SampleRects(rng, 80, 120, cfg)

		expected := make([]Box, len(boxes))
		for i, b := range boxes {
			r := b
			for _, rect := range rects {
				if clipped, ok := clipBox(b, rect); ok {
					r = clipped
					break
				}
			}
			if (1-DefaultRemovalThreshold)*b.Area() > r.Area() {
				r = b.Removed()
			}
			expected[i] = r
		}

		assert.Equal(t, expected, ClipBoxes(boxes, rects, DefaultRemovalThreshold))
	}
}
