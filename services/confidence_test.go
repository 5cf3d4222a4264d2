package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"guide-server/models"
)

func TestAssignConfidence(t *testing.T) {
	tests := []struct {
		source       models.Source
		corroborated bool
		want         models.Confidence
	}{
		{models.SourceLocalData, false, models.ConfidenceHigh},
		{models.SourceSearch, false, models.ConfidenceMedium},
		{models.SourceSearch, true, models.ConfidenceHigh},
		{models.SourceGeoEnriched, false, models.ConfidenceMedium},
		{models.SourceCache, false, models.ConfidenceMedium},
		{models.SourceSynthesized, false, models.ConfidenceLow},
		{models.SourceSynthesized.With("generated"), false, models.ConfidenceMedium},
		{models.SourceGeoEnriched.With("encyclopedia"), false, models.ConfidenceHigh},
		{models.SourceLocalData, true, models.ConfidenceHigh},
		{models.Source("mystery"), false, models.ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			assert.Equal(t, tt.want, AssignConfidence(tt.source, tt.corroborated))
		})
	}
}

func TestAssignConfidence_CorroboratedSearchOutranksTemplate(t *testing.T) {
	search := AssignConfidence(models.SourceSearch, true)
	template := AssignConfidence(models.SourceSynthesized, false)
	assert.GreaterOrEqual(t, search.Rank(), template.Rank())

	for _, composite := range []string{"search-evidence", "encyclopedia", "generated"} {
		layered := AssignConfidence(models.SourceSynthesized.With(composite), false)
		assert.GreaterOrEqual(t, search.Rank(), layered.Rank(), composite)
	}
}
