package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"We love our little market!", "Visitors love the little market."},
		{"I'm sure you will enjoy it.", "Visitors are sure you will enjoy it."},
		{"Welcome to Katong, where we serve laksa.", "Katong, where visitors serve laksa."},
		{"Our streets are quiet.", "The streets are quiet."},
		{"The area is quiet.", "The area is quiet."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTone(tt.in), tt.in)
	}
}

func TestNormalizeTone_ProtectsNames(t *testing.T) {
	got := NormalizeTone("Our Lady of Grace sits near us.", "Our Lady of Grace")
	assert.Equal(t, "Our Lady of Grace sits near visitors.", got)

	got = NormalizeTone("de Pijp is busy!", "de Pijp")
	assert.Equal(t, "de Pijp is busy.", got)
}

func TestNormalizeTone_Idempotent(t *testing.T) {
	inputs := []string{
		"We're proud of our neighborhood! I think you'll love it.",
		"Welcome to Tiong Bahru. My favourite spot is the market.",
		"Las Conchas in Tlaquepaque, Mexico is home to nearby spots such as Parque Central.",
	}
	for _, in := range inputs {
		once := NormalizeTone(in, "Las Conchas")
		assert.Equal(t, once, NormalizeTone(once, "Las Conchas"), in)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second one!  Third? trailing")
	assert.Equal(t, []string{"First one.", "Second one!", "Third?", "trailing"}, got)
	assert.Equal(t, []string{"Version 2.0 ships."}, splitSentences("Version 2.0 ships."))
	assert.Nil(t, splitSentences("   "))
}

func TestInsertAfterFirstSentence(t *testing.T) {
	assert.Equal(t, "A. X. B.", insertAfterFirstSentence("A. B.", "X."))
	assert.Equal(t, "X.", insertAfterFirstSentence("", "X."))
	assert.Equal(t, "A.", insertAfterFirstSentence("A.", " "))
}

func TestSentences_KeepDottedName(t *testing.T) {
	text := "St. Kilda sits by the bay. It has a pier."
	assert.Equal(t, []string{"St. Kilda sits by the bay.", "It has a pier."}, splitSentences(text, "St. Kilda"))
	assert.Equal(t, "St. Kilda sits by the bay.", firstSentence(text, "St. Kilda"))
	assert.Equal(t, "St.", firstSentence(text))

	got := insertAfterFirstSentence(text, "Trams run often.", "St. Kilda")
	assert.Equal(t, "St. Kilda sits by the bay. Trams run often. It has a pier.", got)
}

func TestMentions(t *testing.T) {
	assert.True(t, mentions("Life in DE PIJP, today", "De Pijp"))
	assert.False(t, mentions("Pijpers are here", "Pijp"))
	assert.False(t, mentions("anything", ""))
}

func TestClampText(t *testing.T) {
	long := strings.Repeat("Sentence number one is here. ", 30)
	got := clampText(long, 100, "")
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 100)
	assert.True(t, strings.HasSuffix(got, "."))

	words := strings.Repeat("word ", 60)
	got = clampText(words, 50, "")
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 51)

	short := "Short text."
	assert.Equal(t, short, clampText(short, 100, ""))
}

func TestClampText_KeepsName(t *testing.T) {
	text := strings.Repeat("filler ", 20) + "Santa María Tequepexpan is here. More text follows after it."
	got := clampText(text, 60, "Santa María Tequepexpan")
	assert.Contains(t, got, "Santa María Tequepexpan")
}

func TestClampText_NeverTrimsIntoName(t *testing.T) {
	name := strings.Repeat("Ab ", 140) + "Zone-"
	got := clampText(name+" is a neighborhood in Paris.", 400, name)
	assert.Equal(t, name+"…", got)

	name = strings.Repeat("Cd ", 10) + "Park,"
	got = clampText(name+" "+strings.Repeat("x", 40), 30, name)
	assert.True(t, strings.HasPrefix(got, name), got)
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "", joinNames(nil))
	assert.Equal(t, "A", joinNames([]string{"A"}))
	assert.Equal(t, "A and B", joinNames([]string{"A", "B"}))
	assert.Equal(t, "A, B and C", joinNames([]string{"A", "B", "C"}))
}

func TestPrimaryCity(t *testing.T) {
	assert.Equal(t, "Tlaquepaque", primaryCity("Tlaquepaque, Mexico"))
	assert.Equal(t, "Singapore", primaryCity(" Singapore "))
}
