package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Check(t *testing.T) {
	local := &fakeLocal{neighborhoods: map[string][]string{
		"Amsterdam, Netherlands": {"De Pijp", "Jordaan"},
	}}
	v := NewValidator(local)
	ctx := context.Background()

	tests := []struct {
		name      string
		city, n   string
		plausible bool
		match     string
	}{
		{"known alias", "Amsterdam, Netherlands", "De Pijp", true, "De Pijp"},
		{"fuzzy alias", "Amsterdam, Netherlands", "Jordan", true, "Jordaan"},
		{"unknown city", "Tlaquepaque, Mexico", "Las Conchas", true, ""},
		{"unknown name in known city", "Amsterdam, Netherlands", "Las Conchas", true, ""},
		{"keyboard mash", "zzzz", "xqzvbn qwrtp", false, ""},
		{"repeated letters", "Paris", "aaaaaa", false, ""},
		{"punctuation only", "Paris", "!!!", false, ""},
		{"empty city", "", "De Pijp", false, ""},
		{"too long", "Paris", strings.Repeat("abcde ", 20), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Check(ctx, tt.city, tt.n)
			assert.Equal(t, tt.plausible, got.Plausible, "score %.2f", got.Score)
			assert.Equal(t, tt.match, got.Match)
		})
	}
}

func TestValidator_NilAliases(t *testing.T) {
	v := NewValidator(nil)
	assert.True(t, v.Check(context.Background(), "Singapore", "Tiong Bahru").Plausible)
}
