package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(999))
	assert.Equal(t, 2, LevelForXP(1000))
	assert.Equal(t, 11, LevelForXP(10500))
	// capped at 100
	assert.Equal(t, 100, LevelForXP(1_000_000))
}

func TestRankForLevel(t *testing.T) {
	assert.Equal(t, 1, RankForLevel(1))
	assert.Equal(t, 1, RankForLevel(9))
	assert.Equal(t, 2, RankForLevel(10))
	assert.Equal(t, 3, RankForLevel(25))
	assert.Equal(t, 4, RankForLevel(40))
	assert.Equal(t, 5, RankForLevel(60))
	assert.Equal(t, 6, RankForLevel(80))
	assert.Equal(t, 6, RankForLevel(100))
}

func TestRankName(t *testing.T) {
	assert.Equal(t, "Rookie", RankName(1))
	assert.Equal(t, "Bronze", RankName(2))
	assert.Equal(t, "Silver", RankName(3))
	assert.Equal(t, "Gold", RankName(4))
	assert.Equal(t, "Platinum", RankName(5))
	assert.Equal(t, "Diamond", RankName(6))
	assert.Equal(t, "Legend", RankName(7))
	assert.Equal(t, "Rookie", RankName(0))
}
