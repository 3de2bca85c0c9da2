package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	cases := map[string]string{
		"Start a battle against MC Venom": IntentStartBattle,
		"let's battle":                    IntentStartBattle,
		"show me my wallet":               IntentShowWallet,
		"what's my balance":               IntentShowWallet,
		"How many coins do I have":        IntentShowWallet,
		"open the leaderboard":            IntentShowLeaderboard,
		"who's winning right now":         IntentShowLeaderboard,
		"join the tournament":             IntentJoinTournament,
		"enter tournament please":         IntentJoinTournament,
		"show my progress":                IntentShowProgress,
		"what is my rank":                 IntentShowProgress,
		"play some music":                 IntentUnknown,
		"":                                IntentUnknown,
	}

	for transcript, want := range cases {
		assert.Equal(t, want, ParseIntent(transcript), "transcript %q", transcript)
	}
}

func TestParseIntentCaseInsensitive(t *testing.T) {
	assert.Equal(t, IntentStartBattle, ParseIntent("START A BATTLE"))
	assert.Equal(t, IntentShowWallet, ParseIntent("Show My WALLET"))
}
