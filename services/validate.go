package services

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"github.com/rs/zerolog/log"
)

// AliasSource lists the neighborhoods known for a city.
type AliasSource interface {
	Neighborhoods(ctx context.Context, city string) ([]string, error)
}

type Plausibility struct {
	Score     float64
	Plausible bool
	// Match is the known alias the neighborhood matched, if any.
	Match string
}

// Validator scores how plausible a (city, neighborhood) pair is.
type Validator struct {
	aliases   AliasSource
	threshold float64
}

func NewValidator(aliases AliasSource) *Validator {
	return &Validator{aliases: aliases, threshold: 0.4}
}

const (
	aliasMatchSimilarity = 0.85
	maxNameRunes         = 80
)

func (v *Validator) Check(ctx context.Context, city, neighborhood string) Plausibility {
	score := v.score(ctx, city, neighborhood)
	p := Plausibility{Score: score.value, Match: score.match}
	p.Plausible = p.Score >= v.threshold
	return p
}

type scored struct {
	value float64
	match string
}

func (v *Validator) score(ctx context.Context, city, neighborhood string) scored {
	n := strings.TrimSpace(neighborhood)
	c := strings.TrimSpace(city)
	if n == "" || c == "" || !hasWord(n) || !hasWord(c) {
		return scored{}
	}
	if utf8.RuneCountInString(n) > maxNameRunes || utf8.RuneCountInString(c) > maxNameRunes*2 {
		return scored{value: 0.1}
	}

	s := 0.6
	if looksLikeGibberish(n) {
		s -= 0.4
	}
	if normalizeKey(n) == normalizeKey(primaryCity(c)) {
		s -= 0.2
	}

	if v.aliases == nil {
		return scored{value: s}
	}
	known, err := v.aliases.Neighborhoods(ctx, c)
	if err != nil || len(known) == 0 {
		if err != nil {
			log.Debug().Err(err).Str("city", c).Msg("no known neighborhoods")
		}
		return scored{value: s}
	}
	best, match := 0.0, ""
	key := normalizeKey(n)
	for _, alias := range known {
		sim := levenshtein.Similarity(key, normalizeKey(alias), nil)
		if sim > best {
			best, match = sim, alias
		}
	}
	switch {
	case best >= aliasMatchSimilarity:
		return scored{value: 0.95, match: match}
	case best < 0.5:
		s -= 0.1
	}
	return scored{value: s}
}

// hasWord reports whether s contains at least two consecutive letters.
func hasWord(s string) bool {
	run := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			run++
			if run >= 2 {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}

// looksLikeGibberish flags ASCII tokens with no vowels or long runs of one
// repeated character, e.g. "xqzvbn" or "aaaaa".
func looksLikeGibberish(s string) bool {
	for _, tok := range strings.Fields(normalizeKey(s)) {
		if repeatedRun(tok) >= 4 {
			return true
		}
		if len(tok) < 5 || !isASCIILetters(tok) {
			continue
		}
		if !strings.ContainsAny(tok, "aeiouy") {
			return true
		}
	}
	return false
}

func repeatedRun(tok string) int {
	best, run := 0, 0
	var prev rune
	for i, r := range tok {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = r
	}
	return best
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
