package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
	assert.Equal(t, time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC), parseBuildTime("2026-10-01 12:30:00"))
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version())
	assert.Contains(t, String(), Version())
}
