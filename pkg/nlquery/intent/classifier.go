// Package intent scores a query against the four recognized intents
// and picks a primary (and, when the query is ambiguous, a secondary)
// guess. It combines keyword cues from the raw text with whichever
// entities the extraction stage has already found, since "who offers
// catering" and a filled-in Services field are both evidence for the
// same intent.
package intent

import (
	"sort"
	"strings"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

// ambiguityMargin is how close the top two scores must be before a
// query is flagged ambiguous and given a secondary intent.
const ambiguityMargin = 0.15

// keywordCue is one phrase that counts as evidence for an intent when
// it appears anywhere in the lowercased query text.
type keywordCue struct {
	phrase string
	weight float64
}

var keywordCues = map[model.IntentType][]keywordCue{
	model.IntentFindBusiness: {
		{"business", 0.3}, {"company", 0.25}, {"offers", 0.3}, {"provides", 0.25},
		{"services", 0.25}, {"vendor", 0.25}, {"turnover", 0.2}, {"revenue", 0.2},
	},
	model.IntentFindPeers: {
		{"classmate", 0.35}, {"batch", 0.3}, {"graduated", 0.2}, {"batchmate", 0.35},
		{"class of", 0.3}, {"peers", 0.3}, {"fellow", 0.2},
	},
	model.IntentFindSpecificPerson: {
		{"find ", 0.15}, {"is there", 0.25}, {"do you know", 0.3}, {"contact", 0.25},
		{"looking for", 0.1},
	},
	model.IntentFindAlumniBusiness: {
		{"alumni business", 0.45}, {"alumni-owned", 0.45}, {"alumni run", 0.35},
		{"started by an alum", 0.4}, {"founded by", 0.2},
	},
}

// Classify scores query (and whatever entities have already been
// extracted) against the four known intents and returns the ranked
// result.
func Classify(query string, entities model.ExtractedEntities) model.IntentResult {
	lower := strings.ToLower(query)

	scores := map[model.IntentType]float64{
		model.IntentFindBusiness:         0,
		model.IntentFindPeers:            0,
		model.IntentFindSpecificPerson:   0,
		model.IntentFindAlumniBusiness:   0,
	}

	for intentType, cues := range keywordCues {
		for _, cue := range cues {
			if strings.Contains(lower, cue.phrase) {
				scores[intentType] += cue.weight
			}
		}
	}

	if entities.Name != "" {
		scores[model.IntentFindSpecificPerson] += 0.4
	}
	if len(entities.Services) > 0 || entities.TurnoverTier != "" {
		scores[model.IntentFindBusiness] += 0.35
	}
	if entities.Organization != "" {
		scores[model.IntentFindAlumniBusiness] += 0.3
		scores[model.IntentFindBusiness] += 0.15
	}
	if len(entities.Branch) > 0 && len(entities.GraduationYear) > 0 {
		scores[model.IntentFindPeers] += 0.3
	}
	if len(entities.Skills) > 0 {
		scores[model.IntentFindPeers] += 0.15
	}

	type ranked struct {
		intent model.IntentType
		score  float64
	}
	rankedList := make([]ranked, 0, len(scores))
	for i, s := range scores {
		rankedList = append(rankedList, ranked{i, s})
	}
	sort.Slice(rankedList, func(a, b int) bool {
		if rankedList[a].score != rankedList[b].score {
			return rankedList[a].score > rankedList[b].score
		}
		return rankedList[a].intent < rankedList[b].intent
	})

	top := rankedList[0]
	second := rankedList[1]

	if top.score == 0 {
		return model.IntentResult{
			Primary:   model.IntentUnknown,
			Confidence: 0,
			Ambiguous: true,
		}
	}

	var sum float64
	for _, r := range rankedList {
		sum += r.score
	}
	confidence := top.score
	if sum > 0 {
		confidence = top.score / sum
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	ambiguous := (top.score - second.score) < ambiguityMargin && second.score > 0

	result := model.IntentResult{
		Primary:    top.intent,
		Confidence: confidence,
		Ambiguous:  ambiguous,
	}
	if ambiguous {
		result.Secondary = second.intent
	}
	return result
}

// IsAmbiguousQuery is a thin convenience wrapper for callers that only
// have raw text and extracted entities, not a full IntentResult yet.
func IsAmbiguousQuery(query string, entities model.ExtractedEntities) bool {
	return Classify(query, entities).Ambiguous
}

// SuggestRefinement returns a short clarifying question for an
// ambiguous classification, naming both candidate intents in plain
// language.
func SuggestRefinement(result model.IntentResult) string {
	if !result.Ambiguous || result.Secondary == "" {
		return ""
	}
	return "Are you looking for " + describeIntent(result.Primary) + " or " + describeIntent(result.Secondary) + "?"
}

func describeIntent(t model.IntentType) string {
	switch t {
	case model.IntentFindBusiness:
		return "a business"
	case model.IntentFindPeers:
		return "classmates from your batch"
	case model.IntentFindSpecificPerson:
		return "a specific person"
	case model.IntentFindAlumniBusiness:
		return "an alumni-owned business"
	default:
		return "something else"
	}
}
