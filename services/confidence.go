package services

import "guide-server/models"

// confidenceTable maps the primary source of a guide to its base trust tier.
var confidenceTable = map[models.Source]models.Confidence{
	models.SourceLocalData:   models.ConfidenceHigh,
	models.SourceSearch:      models.ConfidenceMedium,
	models.SourceGeoEnriched: models.ConfidenceMedium,
	models.SourceCache:       models.ConfidenceMedium,
	models.SourceSynthesized: models.ConfidenceLow,
}

// AssignConfidence is the single place a guide's confidence is decided.
// Corroborating evidence, or a composite source carrying a layered
// secondary, raises the base tier by one step.
func AssignConfidence(source models.Source, corroborated bool) models.Confidence {
	base, ok := confidenceTable[source.Primary()]
	if !ok {
		base = models.ConfidenceLow
	}
	if corroborated || source.IsComposite() {
		return bump(base)
	}
	return base
}

func bump(c models.Confidence) models.Confidence {
	switch c {
	case models.ConfidenceLow:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceHigh
	}
}
