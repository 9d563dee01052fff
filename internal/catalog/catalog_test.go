package catalog

import (
	"errors"
	"testing"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

func TestPickProblemHonorsFilters(t *testing.T) {
	c := NewCatalog()

	p, err := c.PickProblem(model.MatchFilters{Difficulty: "Easy", Category: "Arrays"})
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if p.Difficulty != "Easy" || p.Category != "Arrays" {
		t.Fatalf("picked %+v outside filters", p)
	}
}

func TestPickProblemRandomMatchesAnything(t *testing.T) {
	c := NewCatalog()
	for i := 0; i < 20; i++ {
		if _, err := c.PickProblem(model.MatchFilters{Difficulty: model.FilterRandom, Category: model.FilterRandom}); err != nil {
			t.Fatalf("random pick: %v", err)
		}
	}
}

func TestPickProblemNoMatch(t *testing.T) {
	c := NewCatalog()
	if _, err := c.PickProblem(model.MatchFilters{Difficulty: "Easy", Category: "Dynamic Programming"}); !errors.Is(err, ErrNoProblem) {
		t.Fatalf("impossible filters = %v, want ErrNoProblem", err)
	}
}

func TestBuiltinProblemsCarryEnoughTestCases(t *testing.T) {
	c := NewCatalog()
	for _, p := range c.problems {
		public, hidden := p.CountTestCases()
		if public < model.MinPublicTestCases || hidden < model.MinHiddenTestCases {
			t.Fatalf("problem %s has %d public / %d hidden test cases", p.ID, public, hidden)
		}
	}
}
