package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const rhymingVerse = `I came to the stage with the heat in my veins
Spitting lightning precision while you're stuck in the rains
Every syllable calculated, devastating the lanes
Leaving permanent marks like ink-saturated stains`

const sloppyVerse = `yo yo yo
i rap
this is a really long line with way too many words crammed inside of it
ok`

func TestAnalyzeVerseEmpty(t *testing.T) {
	assert.Equal(t, VerseScore{}, AnalyzeVerse(""))
	assert.Equal(t, VerseScore{}, AnalyzeVerse("   \n  \n"))
}

func TestAnalyzeVerseRhymingBeatsSloppy(t *testing.T) {
	good := AnalyzeVerse(rhymingVerse)
	bad := AnalyzeVerse(sloppyVerse)

	assert.Greater(t, good.Rhyme, bad.Rhyme)
	assert.Greater(t, good.Flow, bad.Flow)
	assert.Greater(t, good.Overall, bad.Overall)
}

func TestAnalyzeVerseScoreBounds(t *testing.T) {
	for _, text := range []string{rhymingVerse, sloppyVerse, "one line only here"} {
		score := AnalyzeVerse(text)
		for _, v := range []int{score.Rhyme, score.Flow, score.Creativity, score.Overall} {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
	}
}

func TestRhymeScoreFullCouplets(t *testing.T) {
	lines := []string{
		"walking in the rain",
		"feeling all the pain",
		"staying in the main",
		"going down the drain",
	}
	assert.Equal(t, 100, rhymeScore(lines))
}

func TestRhymeScoreNoRhymes(t *testing.T) {
	lines := []string{
		"walking in the dark",
		"eating all the food",
		"driving very fast",
	}
	assert.Equal(t, 0, rhymeScore(lines))
}

func TestRhymeScoreSingleLine(t *testing.T) {
	assert.Equal(t, 0, rhymeScore([]string{"just one bar"}))
}

func TestWordsRhyme(t *testing.T) {
	assert.True(t, wordsRhyme("rain", "drain"))
	assert.True(t, wordsRhyme("veins", "rains"))

	// identical words don't rhyme
	assert.False(t, wordsRhyme("flow", "flow"))
	// vowel-free shared suffix doesn't count
	assert.False(t, wordsRhyme("want", "front"))
	// one shared character isn't enough
	assert.False(t, wordsRhyme("go", "toe"))
	assert.False(t, wordsRhyme("", "rain"))
}

func TestFlowScoreEvenLines(t *testing.T) {
	even := []string{
		"seven syllables in this bar",
		"seven syllables in this bar",
		"seven syllables in this bar",
	}
	assert.Equal(t, 100, flowScore(even))
}

func TestFlowScoreSingleLine(t *testing.T) {
	assert.Equal(t, 40, flowScore([]string{"one lonely bar standing here"}))
}

func TestFlowScoreUnevenLines(t *testing.T) {
	uneven := []string{
		"yo",
		"this is a substantially longer line with many more syllables inside",
	}
	assert.Less(t, flowScore(uneven), 40)
}

func TestCreativityScoreRepetition(t *testing.T) {
	repeated := splitWords("yo yo yo yo yo yo yo yo yo yo")
	varied := splitWords("incredible vocabulary demonstrates magnificent creativity throughout elaborate compositions tonight")

	assert.Greater(t, creativityScore(varied), creativityScore(repeated))
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"cat":     1,
		"rhyme":   1,
		"hello":   2,
		"battle":  2,
		"stage":   1,
		"window":  2,
		"syllable": 3,
	}
	for word, want := range cases {
		assert.Equal(t, want, CountSyllables(word), "word %q", word)
	}
	assert.Equal(t, 0, CountSyllables(""))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-5))
	assert.Equal(t, 100, clampScore(140))
	assert.Equal(t, 55, clampScore(55))
}

func TestLastWord(t *testing.T) {
	assert.Equal(t, "rain", lastWord("walking in the rain"))
	assert.Equal(t, "rain", lastWord("walking in the rain!!!"))
	assert.Equal(t, "", lastWord("   "))
}
