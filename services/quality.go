package services

import (
	"regexp"
	"strings"
)

// Lexical content-quality filters. They are deliberately cheap heuristics.

var (
	reDisambiguation = regexp.MustCompile(`(?i)\b(?:may|can|might) (?:also )?refer to\b|\bdisambiguation\b|\bis the name of (?:several|many|multiple)\b|\bmost commonly refers to\b|\bsearch results for\b|\bresults? \d+\s*(?:-|to)\s*\d+ of\b`)
	reListingHead    = regexp.MustCompile(`(?i)^\s*(?:top \d+|the \d+ best|\d+ best|best [a-z ]{0,30} in|list of|things to do in|all (?:hotels|restaurants|listings) in|homes? for sale in)\b`)
	reBullet         = regexp.MustCompile(`(?m)^\s*(?:[-*•·]|\d+[.)])\s+`)

	rePromoStrong = regexp.MustCompile(`(?i)\b(?:book now|buy now|call (?:us )?(?:now|today)|click here|sign up|subscribe|limited[- ]time|free shipping|best price|lowest prices?|special offer|promo code|discount code|act now|don'?t miss out|schedule a (?:tour|viewing)|contact (?:us|our agents?)|request a quote)\b|\d+\s?% off\b`)
	rePromoWeak   = regexp.MustCompile(`(?i)\b(?:luxury|exclusive|amazing|unbeatable|stunning|dream home|for sale|for rent|listings?|our (?:team|agents?|company|services)|we offer|we provide|award[- ]winning)\b`)

	reTopic = regexp.MustCompile(`(?i)\b(?:neighbou?rhoods?|district|borough|quarter|suburb|area|residential|residents|locals?|community|streets?|village|town|barrio|colonia|plaza|square|parks?|restaurants?|caf[eé]s?|bars?|shops?|shopping|markets?|nightlife|eateries|dining|housing|homes|apartments|rent|real estate|property|properties|schools?|transit|metro|walkable|quiet|lively|bustling|historic centre|historic center)\b`)
	reOffTopic = regexp.MustCompile(`(?i)\b(?:architect|architectural style|baroque|gothic revival|neoclassical|art deco|romanesque|facade|fa[cç]ade|built in \d{3,4}|consecrated|album|single|film|movie|tv series|television series|sitcom|episode|soundtrack|novel|video game|band|record label|box office|trademark|brand|subsidiary|headquartered|stock exchange|nasdaq|nyse)\b`)
)

// IsDisambiguation reports whether text reads like an index, listing or
// disambiguation page rather than a focused description.
func IsDisambiguation(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if reDisambiguation.MatchString(t) || reListingHead.MatchString(t) {
		return true
	}
	if len(reBullet.FindAllStringIndex(t, -1)) >= 3 {
		return true
	}
	return looksLikeList(t)
}

// looksLikeList flags text that is mostly short separator-delimited fragments.
func looksLikeList(t string) bool {
	seps := strings.Count(t, "|") + strings.Count(t, " · ") + strings.Count(t, " • ") + strings.Count(t, ";")
	if seps >= 4 {
		return true
	}
	lines := strings.Split(t, "\n")
	if len(lines) < 4 {
		return false
	}
	short := 0
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" && len(l) < 40 && !strings.ContainsAny(l, ".!?") {
			short++
		}
	}
	return short*2 >= len(lines)
}

// IsPromotional reports whether text reads like an advert or a sales page.
func IsPromotional(text string) bool {
	if rePromoStrong.MatchString(text) {
		return true
	}
	weak := len(rePromoWeak.FindAllStringIndex(text, -1))
	if strings.Count(text, "!") >= 2 {
		weak++
	}
	return weak >= 2
}

// HasTopicVocabulary reports whether text talks about a locality, its
// amenities or its housing.
func HasTopicVocabulary(text string) bool {
	return reTopic.MatchString(text)
}

// IsOffTopic reports whether text leans on architecture history, brands or
// media titles.
func IsOffTopic(text string) bool {
	return reOffTopic.MatchString(text)
}

// IsRelevant is the relevance test for a search candidate: it must name the
// neighborhood or city and talk about the place, not something else.
func IsRelevant(text, city, neighborhood string) bool {
	if !mentions(text, neighborhood) && !mentions(text, primaryCity(city)) {
		return false
	}
	return HasTopicVocabulary(text) && !IsOffTopic(text)
}
