package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyBonusReady(t *testing.T) {
	now := time.Now()

	assert.True(t, dailyBonusReady(now.Add(-25*time.Hour), now))
	assert.True(t, dailyBonusReady(now.Add(-24*time.Hour), now))

	// a second claim inside the window is rejected no matter how close
	assert.False(t, dailyBonusReady(now.Add(-23*time.Hour), now))
	assert.False(t, dailyBonusReady(now.Add(-time.Second), now))
	assert.False(t, dailyBonusReady(now, now))
}
