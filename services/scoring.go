// services/scoring.go
package services

import (
	"math"
	"strings"
	"unicode"
)

// VerseScore holds the heuristic analysis of a single verse, 0–100 per axis.
type VerseScore struct {
	Rhyme      int `json:"rhyme"`
	Flow       int `json:"flow"`
	Creativity int `json:"creativity"`
	Overall    int `json:"overall"`
}

// Overall weighting: rhyme carries the most, then flow, then creativity.
const (
	rhymeWeight      = 0.40
	flowWeight       = 0.35
	creativityWeight = 0.25
)

// AnalyzeVerse scores a verse on rhyme, flow and creativity. Deterministic
// and purely textual — no external calls.
func AnalyzeVerse(text string) VerseScore {
	lines := splitLines(text)
	words := splitWords(text)

	if len(lines) == 0 || len(words) == 0 {
		return VerseScore{}
	}

	rhyme := rhymeScore(lines)
	flow := flowScore(lines)
	creativity := creativityScore(words)

	overall := int(math.Round(
		float64(rhyme)*rhymeWeight +
			float64(flow)*flowWeight +
			float64(creativity)*creativityWeight,
	))

	return VerseScore{
		Rhyme:      rhyme,
		Flow:       flow,
		Creativity: creativity,
		Overall:    clampScore(overall),
	}
}

// rhymeScore checks end-of-line rhymes: adjacent lines (couplets) and
// alternating lines (ABAB) both count. A rhyme is a shared suffix of the
// normalized last words, at least 2 characters long.
func rhymeScore(lines []string) int {
	if len(lines) < 2 {
		return 0
	}

	endings := make([]string, len(lines))
	for i, line := range lines {
		endings[i] = normalizeWord(lastWord(line))
	}

	pairs := 0
	rhymed := 0
	for i := 1; i < len(endings); i++ {
		pairs++
		if wordsRhyme(endings[i-1], endings[i]) {
			rhymed++
		}
	}
	// ABAB credit: check the i-2 neighbor too, half weight
	altRhymed := 0
	altPairs := 0
	for i := 2; i < len(endings); i++ {
		altPairs++
		if wordsRhyme(endings[i-2], endings[i]) {
			altRhymed++
		}
	}

	score := float64(rhymed) / float64(pairs)
	if altPairs > 0 {
		score += 0.5 * float64(altRhymed) / float64(altPairs)
	}
	return clampScore(int(math.Round(score * 100)))
}

// wordsRhyme reports whether two normalized words share a rhyming suffix.
// Identical words don't count — repeating a word isn't rhyming it.
func wordsRhyme(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	n := suffixLen(a, b)
	if n < 2 {
		return false
	}
	// Require the shared suffix to contain a vowel, so "-nt"/"-st" style
	// consonant tails don't register as rhymes.
	suffix := a[len(a)-n:]
	return strings.ContainsAny(suffix, "aeiouy")
}

func suffixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

// flowScore rewards consistent syllable counts across lines, the way a
// steady delivery keeps bar lengths even. Perfectly even lines score 100;
// the score decays with the coefficient of variation.
func flowScore(lines []string) int {
	if len(lines) == 0 {
		return 0
	}

	counts := make([]float64, 0, len(lines))
	for _, line := range lines {
		s := 0
		for _, w := range splitWords(line) {
			s += CountSyllables(w)
		}
		if s > 0 {
			counts = append(counts, float64(s))
		}
	}
	if len(counts) == 0 {
		return 0
	}
	if len(counts) == 1 {
		// single bar: floor score, nothing to be consistent against
		return 40
	}

	mean := 0.0
	for _, cnt := range counts {
		mean += cnt
	}
	mean /= float64(len(counts))

	variance := 0.0
	for _, cnt := range counts {
		variance += (cnt - mean) * (cnt - mean)
	}
	variance /= float64(len(counts))
	cv := math.Sqrt(variance) / mean

	// cv 0 → 100, cv >= 0.6 → 0
	score := 100 * (1 - cv/0.6)

	// very short bars (< 4 syllables average) can't carry flow
	if mean < 4 {
		score *= mean / 4
	}

	return clampScore(int(math.Round(score)))
}

// creativityScore blends vocabulary breadth (unique-word ratio) with lexical
// reach (share of 3+ syllable words).
func creativityScore(words []string) int {
	if len(words) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(words))
	multisyllabic := 0
	for _, w := range words {
		norm := normalizeWord(w)
		if norm == "" {
			continue
		}
		seen[norm] = struct{}{}
		if CountSyllables(norm) >= 3 {
			multisyllabic++
		}
	}

	uniqueRatio := float64(len(seen)) / float64(len(words))
	bigWordRatio := float64(multisyllabic) / float64(len(words))

	// unique ratio dominates; big words cap out their bonus at 25%
	score := uniqueRatio*75 + math.Min(bigWordRatio/0.25, 1)*25

	// tiny verses get a haircut — 8 unique words is the floor for full credit
	if len(seen) < 8 {
		score *= float64(len(seen)) / 8
	}

	return clampScore(int(math.Round(score)))
}

// CountSyllables estimates syllables by counting vowel groups, with the
// usual silent-e adjustment. Good enough for relative flow comparison.
func CountSyllables(word string) int {
	word = normalizeWord(word)
	if word == "" {
		return 0
	}

	groups := 0
	prevVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			groups++
		}
		prevVowel = isVowel
	}

	// silent trailing e ("rhyme" → 1, not 2)
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && groups > 1 {
		groups--
	}

	if groups == 0 {
		return 1
	}
	return groups
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

func lastWord(line string) string {
	words := splitWords(line)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

func normalizeWord(w string) string {
	return strings.Trim(strings.ToLower(w), "'")
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
