package suggest

import (
	"testing"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

func assertThreeNonEmpty(t *testing.T, out []string) {
	t.Helper()
	if len(out) != 3 {
		t.Fatalf("expected exactly 3 suggestions, got %d: %v", len(out), out)
	}
	for i, s := range out {
		if s == "" {
			t.Errorf("suggestion %d is empty", i)
		}
	}
}

func TestGenerateAlwaysReturnsThree(t *testing.T) {
	cases := []model.IntentType{
		model.IntentFindBusiness, model.IntentFindPeers,
		model.IntentFindSpecificPerson, model.IntentFindAlumniBusiness, model.IntentUnknown,
	}
	for _, intent := range cases {
		assertThreeNonEmpty(t, Generate(intent, model.ExtractedEntities{}, 5))
	}
}

func TestGenerateEmptyResultNamesActiveFilter(t *testing.T) {
	out := Generate(model.IntentFindBusiness, model.ExtractedEntities{Services: []string{"catering"}}, 0)
	assertThreeNonEmpty(t, out)
	if out[0] != "Search without the services filter" {
		t.Errorf("expected services to be named first, got %q", out[0])
	}
}

func TestGenerateEmptyResultGenericWhenNoFilters(t *testing.T) {
	out := Generate(model.IntentFindBusiness, model.ExtractedEntities{}, 0)
	assertThreeNonEmpty(t, out)
	if out[0] != "Broaden your search with different keywords" {
		t.Errorf("expected a generic suggestion, got %q", out[0])
	}
}

func TestGeneratePeersSuggestsAdjacentBatches(t *testing.T) {
	out := Generate(model.IntentFindPeers, model.ExtractedEntities{GraduationYear: model.NewYearSet(1998)}, 5)
	assertThreeNonEmpty(t, out)
	if out[0] != "Check the 1997 and 1999 batches too" {
		t.Errorf("expected adjacent-batch suggestion, got %q", out[0])
	}
}

func TestGenerateSpecificPersonMentionsOrganization(t *testing.T) {
	out := Generate(model.IntentFindSpecificPerson, model.ExtractedEntities{Organization: "Acme"}, 5)
	assertThreeNonEmpty(t, out)
	found := false
	for _, s := range out {
		if s == "Find others working at Acme" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an organization-specific suggestion, got %v", out)
	}
}
