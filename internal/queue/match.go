package queue

import (
	"sort"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// Compatible reports whether two filter sets can be matched. Symmetric and
// permissive: equal concrete values match, Random on either side matches,
// two different concrete values do not.
func Compatible(a, b model.MatchFilters) bool {
	return fieldCompatible(a.Difficulty, b.Difficulty) && fieldCompatible(a.Category, b.Category)
}

func fieldCompatible(x, y string) bool {
	return x == model.FilterRandom || y == model.FilterRandom || x == y
}

// ResolveFilters merges two compatible filter sets into the concrete filters
// used for problem selection, preferring whichever side specified a concrete
// value. Both-Random stays Random and is resolved at pick time.
func ResolveFilters(a, b model.MatchFilters) model.MatchFilters {
	return model.MatchFilters{
		Difficulty: resolveField(a.Difficulty, b.Difficulty),
		Category:   resolveField(a.Category, b.Category),
	}
}

func resolveField(x, y string) string {
	if x != model.FilterRandom {
		return x
	}
	return y
}

// ShouldOwnMatchCreation is the deterministic tie-break: of two compatible
// entries, only the earlier-joined party materializes the match, so
// concurrent scanners never both create a battle for the same pair. Equal
// timestamps fall back to entry id ordering so the rule stays total.
func ShouldOwnMatchCreation(mine, candidate *model.QueueEntry) bool {
	if mine.JoinedAt != candidate.JoinedAt {
		return mine.JoinedAt < candidate.JoinedAt
	}
	return mine.EntryID < candidate.EntryID
}

// pickCandidate selects the oldest compatible waiting entry belonging to a
// different user. FIFO fairness: candidates sort by joinedAt ascending.
func pickCandidate(mine *model.QueueEntry, entries []*model.QueueEntry) *model.QueueEntry {
	var candidates []*model.QueueEntry
	for _, e := range entries {
		if e.EntryID == mine.EntryID || e.UserID == mine.UserID {
			continue
		}
		if e.Status != model.QueueWaiting {
			continue
		}
		if !Compatible(mine.Filters, e.Filters) {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].JoinedAt != candidates[j].JoinedAt {
			return candidates[i].JoinedAt < candidates[j].JoinedAt
		}
		return candidates[i].EntryID < candidates[j].EntryID
	})
	return candidates[0]
}
