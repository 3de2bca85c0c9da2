package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rap-battle-platform/models"
)

func TestTournamentOpenForEntry(t *testing.T) {
	now := time.Now()

	open := &models.Tournament{
		Status:  models.TournamentStatusPublished,
		EndTime: now.Add(time.Hour),
	}
	assert.NoError(t, tournamentOpenForEntry(open, now))

	open.Status = models.TournamentStatusActive
	assert.NoError(t, tournamentOpenForEntry(open, now))

	// no end time means the tournament stays open
	assert.NoError(t, tournamentOpenForEntry(&models.Tournament{
		Status: models.TournamentStatusPublished,
	}, now))

	draft := &models.Tournament{Status: models.TournamentStatusDraft}
	assert.ErrorIs(t, tournamentOpenForEntry(draft, now), errTournamentNotOpen)

	completed := &models.Tournament{Status: models.TournamentStatusCompleted}
	assert.ErrorIs(t, tournamentOpenForEntry(completed, now), errTournamentNotOpen)

	ended := &models.Tournament{
		Status:  models.TournamentStatusActive,
		EndTime: now.Add(-time.Minute),
	}
	assert.ErrorIs(t, tournamentOpenForEntry(ended, now), errTournamentEnded)
}
