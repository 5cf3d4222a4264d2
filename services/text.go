package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// mentions reports whether name appears in text as a whole phrase, ignoring
// case and punctuation.
func mentions(text, name string) bool {
	n := normalizeKey(name)
	if n == "" {
		return false
	}
	return strings.Contains(" "+normalizeKey(text)+" ", " "+n+" ")
}

// primaryCity returns the locality part of "City, Country".
func primaryCity(city string) string {
	if i := strings.IndexByte(city, ','); i >= 0 {
		return strings.TrimSpace(city[:i])
	}
	return strings.TrimSpace(city)
}

// splitSentences breaks text after ., ! or ? when followed by whitespace.
// A keep phrase is never split, so "St. Kilda" stays one unit.
func splitSentences(text string, keep ...string) []string {
	text, restore := holdPhrases(strings.TrimSpace(collapseSpaces(text)), keep)
	if text == "" {
		return nil
	}
	var out []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, restore(s))
		}
		start = i + 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, restore(s))
		}
	}
	return out
}

func firstSentence(text string, keep ...string) string {
	s := splitSentences(text, keep...)
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// insertAfterFirstSentence splices sentence into text right after its first
// sentence, never inside a keep phrase.
func insertAfterFirstSentence(text, sentence string, keep ...string) string {
	parts := splitSentences(text, keep...)
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return text
	}
	if len(parts) == 0 {
		return sentence
	}
	out := make([]string, 0, len(parts)+1)
	out = append(out, parts[0], sentence)
	out = append(out, parts[1:]...)
	return strings.Join(out, " ")
}

var reSpaces = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return reSpaces.ReplaceAllString(s, " ")
}

// clampText shortens text to about max runes, cutting at a sentence or word
// boundary. The cut never lands before the end of keep when keep is present.
func clampText(text string, max int, keep string) string {
	text = strings.TrimSpace(collapseSpaces(text))
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	keepEnd := 0
	if keep != "" {
		if idx := strings.Index(text, keep); idx >= 0 {
			keepEnd = idx + len(keep)
		}
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if len(cut) < keepEnd {
		cut = text[:keepEnd]
	}
	if i := strings.LastIndexAny(cut, ".!?"); i >= 0 && i+1 >= keepEnd && i >= len(cut)/3 {
		return cut[:i+1]
	}
	if i := strings.LastIndexByte(cut, ' '); i > 0 && i >= keepEnd {
		cut = cut[:i]
	}
	return cut[:keepEnd] + strings.TrimRight(cut[keepEnd:], " ,;:-") + "…"
}

// joinNames renders "A", "A and B" or "A, B and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

var toneRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`^(?:Welcome to|Welcome To)\s+`), ""},
	{regexp.MustCompile(`\b(?:I am|I'm|We are|We're)\b`), "Visitors are"},
	{regexp.MustCompile(`\b(?:I was|We were)\b`), "Visitors were"},
	{regexp.MustCompile(`\b(?:I have|I've|We have|We've)\b`), "Visitors have"},
	{regexp.MustCompile(`\b(?:I'll|We'll)\b`), "Visitors will"},
	{regexp.MustCompile(`\b(?:I|We)\b`), "Visitors"},
	{regexp.MustCompile(`\b(?:My|Our)\b`), "The"},
	{regexp.MustCompile(`\b(?:me|us)\b`), "visitors"},
	{regexp.MustCompile(`\b(?:my|our)\b`), "the"},
	{regexp.MustCompile(`\bwe\b`), "visitors"},
}

// NormalizeTone rewrites first-person and promotional voice into a neutral
// third person. Occurrences of the protect phrases are left untouched.
// Applying it twice gives the same result as applying it once.
func NormalizeTone(text string, protect ...string) string {
	out, restore := holdPhrases(strings.TrimSpace(text), protect)
	for _, r := range toneRules {
		out = r.re.ReplaceAllString(out, r.repl)
	}
	out = strings.ReplaceAll(out, "!", ".")
	out = collapseSpaces(strings.TrimSpace(out))
	if out != "" {
		r, size := utf8.DecodeRuneInString(out)
		out = string(unicode.ToUpper(r)) + out[size:]
	}
	return restore(out)
}

// holdPhrases swaps each phrase found in text for an opaque placeholder,
// longest first, and returns the function that puts them back.
func holdPhrases(text string, phrases []string) (string, func(string) string) {
	sorted := append([]string(nil), phrases...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	var held []string
	for _, p := range sorted {
		p = strings.TrimSpace(p)
		if p == "" || !strings.Contains(text, p) {
			continue
		}
		text = strings.ReplaceAll(text, p, fmt.Sprintf("\x00%d\x00", len(held)))
		held = append(held, p)
	}
	return text, func(s string) string {
		for i, p := range held {
			s = strings.ReplaceAll(s, fmt.Sprintf("\x00%d\x00", i), p)
		}
		return s
	}
}
