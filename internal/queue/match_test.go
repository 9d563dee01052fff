package queue

import (
	"testing"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

func TestCompatibleSymmetry(t *testing.T) {
	values := []string{"Easy", "Medium", "Hard", model.FilterRandom}
	for _, d1 := range values {
		for _, c1 := range values {
			for _, d2 := range values {
				for _, c2 := range values {
					a := model.MatchFilters{Difficulty: d1, Category: c1}
					b := model.MatchFilters{Difficulty: d2, Category: c2}
					if Compatible(a, b) != Compatible(b, a) {
						t.Fatalf("compatibility not symmetric for %+v vs %+v", a, b)
					}
				}
			}
		}
	}
}

func TestCompatibleRandomWildcard(t *testing.T) {
	easy := model.MatchFilters{Difficulty: "Easy", Category: "Arrays"}
	anyD := model.MatchFilters{Difficulty: model.FilterRandom, Category: "Arrays"}
	hard := model.MatchFilters{Difficulty: "Hard", Category: "Arrays"}

	if !Compatible(easy, anyD) {
		t.Fatalf("Random difficulty must match any concrete difficulty")
	}
	if Compatible(easy, hard) {
		t.Fatalf("two different concrete difficulties must not match")
	}
	if !Compatible(easy, easy) {
		t.Fatalf("identical filters must match")
	}
}

func TestResolveFiltersPrefersConcrete(t *testing.T) {
	a := model.MatchFilters{Difficulty: "Easy", Category: model.FilterRandom}
	b := model.MatchFilters{Difficulty: model.FilterRandom, Category: "Arrays"}

	got := ResolveFilters(a, b)
	if got.Difficulty != "Easy" || got.Category != "Arrays" {
		t.Fatalf("resolved = %+v, want Easy/Arrays", got)
	}

	both := ResolveFilters(
		model.MatchFilters{Difficulty: model.FilterRandom, Category: model.FilterRandom},
		model.MatchFilters{Difficulty: model.FilterRandom, Category: model.FilterRandom},
	)
	if both.Difficulty != model.FilterRandom || both.Category != model.FilterRandom {
		t.Fatalf("both-Random must stay Random, got %+v", both)
	}
}

func TestShouldOwnMatchCreation(t *testing.T) {
	early := &model.QueueEntry{EntryID: "b", JoinedAt: 100}
	late := &model.QueueEntry{EntryID: "a", JoinedAt: 200}

	if !ShouldOwnMatchCreation(early, late) {
		t.Fatalf("earlier joiner must own match creation")
	}
	if ShouldOwnMatchCreation(late, early) {
		t.Fatalf("later joiner must not own match creation")
	}

	// Equal timestamps: exactly one side owns via entry id ordering.
	tieA := &model.QueueEntry{EntryID: "a", JoinedAt: 100}
	tieB := &model.QueueEntry{EntryID: "b", JoinedAt: 100}
	if ShouldOwnMatchCreation(tieA, tieB) == ShouldOwnMatchCreation(tieB, tieA) {
		t.Fatalf("tie-break must give ownership to exactly one side")
	}
}

func TestPickCandidateFIFOAndFiltering(t *testing.T) {
	mine := &model.QueueEntry{
		EntryID: "mine", UserID: "u1", JoinedAt: 300,
		Status:  model.QueueWaiting,
		Filters: model.MatchFilters{Difficulty: "Easy", Category: model.FilterRandom},
	}
	entries := []*model.QueueEntry{
		mine,
		{EntryID: "self-dup", UserID: "u1", JoinedAt: 50, Status: model.QueueWaiting,
			Filters: model.MatchFilters{Difficulty: "Easy", Category: "Arrays"}},
		{EntryID: "matched-already", UserID: "u2", JoinedAt: 60, Status: model.QueueMatched,
			Filters: model.MatchFilters{Difficulty: "Easy", Category: "Arrays"}},
		{EntryID: "incompatible", UserID: "u3", JoinedAt: 70, Status: model.QueueWaiting,
			Filters: model.MatchFilters{Difficulty: "Hard", Category: "Arrays"}},
		{EntryID: "older", UserID: "u4", JoinedAt: 100, Status: model.QueueWaiting,
			Filters: model.MatchFilters{Difficulty: "Easy", Category: "Strings"}},
		{EntryID: "newer", UserID: "u5", JoinedAt: 200, Status: model.QueueWaiting,
			Filters: model.MatchFilters{Difficulty: model.FilterRandom, Category: "Arrays"}},
	}

	got := pickCandidate(mine, entries)
	if got == nil || got.EntryID != "older" {
		t.Fatalf("pickCandidate = %+v, want the oldest compatible stranger", got)
	}
}
