package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{59, "0:59"},
		{61, "1:01"},
		{900, "15:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.secs))
	}
}

func TestRenderHeaderShowsStatus(t *testing.T) {
	h := RenderHeader("Quadratics", "12:00", 80)
	assert.Contains(t, h, "testdrill")
	assert.Contains(t, h, "Quadratics")
	assert.Contains(t, h, "12:00")
}

func TestRenderFrameKeepsSections(t *testing.T) {
	frame := RenderFrame("HEAD", "body", "FOOT", 80, 24)
	assert.True(t, strings.HasPrefix(frame, "HEAD"))
	assert.True(t, strings.HasSuffix(frame, "FOOT"))
	assert.Contains(t, frame, "body")
}

func TestIsTooSmall(t *testing.T) {
	assert.True(t, IsTooSmall(79, 24))
	assert.True(t, IsTooSmall(80, 23))
	assert.False(t, IsTooSmall(80, 24))
}
