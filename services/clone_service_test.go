package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rap-battle-platform/models"
)

func TestAverageVerseScoresEmpty(t *testing.T) {
	avg := AverageVerseScores(nil)
	assert.Equal(t, CloneAverages{}, avg)
}

func TestAverageVerseScores(t *testing.T) {
	verses := []models.Verse{
		{RhymeScore: 80, FlowScore: 60, CreativityScore: 40, OverallScore: 63},
		{RhymeScore: 60, FlowScore: 80, CreativityScore: 60, OverallScore: 68},
	}

	avg := AverageVerseScores(verses)
	assert.Equal(t, 70.0, avg.Rhyme)
	assert.Equal(t, 70.0, avg.Flow)
	assert.Equal(t, 50.0, avg.Creativity)
	assert.Equal(t, 65.5, avg.Overall)
	assert.Equal(t, int64(2), avg.Verses)
}

func TestCloneDifficulty(t *testing.T) {
	assert.Equal(t, models.DifficultyEasy, CloneDifficulty(0))
	assert.Equal(t, models.DifficultyEasy, CloneDifficulty(44.9))
	assert.Equal(t, models.DifficultyMedium, CloneDifficulty(45))
	assert.Equal(t, models.DifficultyMedium, CloneDifficulty(69.9))
	assert.Equal(t, models.DifficultyHard, CloneDifficulty(70))
	assert.Equal(t, models.DifficultyHard, CloneDifficulty(100))
}

func TestCloneDisplayName(t *testing.T) {
	assert.Equal(t, "Mc Thunder's Clone", CloneDisplayName("mc thunder"))
	assert.Equal(t, "BigVerse's Clone", CloneDisplayName("BigVerse"))
}

func TestClonePersonaMentionsProfile(t *testing.T) {
	clone := &models.Clone{
		DisplayName:   "Mc Thunder's Clone",
		AvgRhyme:      72,
		AvgFlow:       65,
		AvgCreativity: 58,
	}

	persona := ClonePersona(clone)
	assert.Contains(t, persona, "Mc Thunder's Clone")
	assert.Contains(t, persona, "rhyme 72")
	assert.Contains(t, persona, "flow 65")
	assert.Contains(t, persona, "creativity 58")
}
