package catalog

import (
	"errors"
	"math/rand"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

var ErrNoProblem = errors.New("no problem matches the requested filters")

// Catalog is the problem source consulted when a battle is materialized. In
// production the problem payloads come from the external catalog service;
// this built-in set mirrors its shape and keeps the coordinator runnable
// standalone.
type Catalog struct {
	problems []model.Problem
}

func NewCatalog() *Catalog {
	return &Catalog{problems: builtinProblems}
}

// PickProblem returns a random problem matching the resolved filters. Fields
// left as Random match anything.
func (c *Catalog) PickProblem(filters model.MatchFilters) (model.Problem, error) {
	var matches []model.Problem
	for _, p := range c.problems {
		if filters.Difficulty != model.FilterRandom && p.Difficulty != filters.Difficulty {
			continue
		}
		if filters.Category != model.FilterRandom && p.Category != filters.Category {
			continue
		}
		matches = append(matches, p)
	}
	if len(matches) == 0 {
		return model.Problem{}, ErrNoProblem
	}
	return matches[rand.Intn(len(matches))], nil
}

func (c *Catalog) GetProblem(id string) (model.Problem, bool) {
	for _, p := range c.problems {
		if p.ID == id {
			return p, true
		}
	}
	return model.Problem{}, false
}

var builtinProblems = []model.Problem{
	{
		ID:          "two-sum",
		Title:       "Two Sum",
		Description: "Given an array of integers and a target, print the indices of the two numbers that add up to the target.",
		Difficulty:  "Easy",
		Category:    "Arrays",
		StarterCode: "def solve():\n    pass\n",
		TestCases: []model.TestCase{
			{Input: "4\n2 7 11 15\n9", ExpectedOutput: "0 1", IsPublic: true},
			{Input: "3\n3 2 4\n6", ExpectedOutput: "1 2"},
			{Input: "2\n3 3\n6", ExpectedOutput: "0 1"},
		},
	},
	{
		ID:          "reverse-string",
		Title:       "Reverse String",
		Description: "Read a line and print it reversed.",
		Difficulty:  "Easy",
		Category:    "Strings",
		StarterCode: "def solve():\n    pass\n",
		TestCases: []model.TestCase{
			{Input: "hello", ExpectedOutput: "olleh", IsPublic: true},
			{Input: "ab", ExpectedOutput: "ba"},
			{Input: "racecar", ExpectedOutput: "racecar"},
		},
	},
	{
		ID:          "max-subarray",
		Title:       "Maximum Subarray",
		Description: "Print the largest sum of any contiguous subarray.",
		Difficulty:  "Medium",
		Category:    "Arrays",
		StarterCode: "def solve():\n    pass\n",
		TestCases: []model.TestCase{
			{Input: "9\n-2 1 -3 4 -1 2 1 -5 4", ExpectedOutput: "6", IsPublic: true},
			{Input: "1\n-1", ExpectedOutput: "-1"},
			{Input: "5\n5 4 -1 7 8", ExpectedOutput: "23"},
		},
	},
	{
		ID:          "edit-distance",
		Title:       "Edit Distance",
		Description: "Print the minimum number of operations to convert one word into another.",
		Difficulty:  "Hard",
		Category:    "Dynamic Programming",
		StarterCode: "def solve():\n    pass\n",
		TestCases: []model.TestCase{
			{Input: "horse\nros", ExpectedOutput: "3", IsPublic: true},
			{Input: "intention\nexecution", ExpectedOutput: "5"},
			{Input: "a\na", ExpectedOutput: "0"},
		},
	},
}
