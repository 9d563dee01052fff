package model

// Custom lobby problems must carry at least one public and two hidden test
// cases, validated before any write.
const (
	MinPublicTestCases = 1
	MinHiddenTestCases = 2
	MinTotalTestCases  = 3
)

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	IsPublic       bool   `json:"isPublic"`
	Explanation    string `json:"explanation,omitempty"`
}

// Problem is the denormalized payload produced by the external problem
// catalog and embedded by value into battles, lobbies and challenges.
type Problem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty"`
	Category    string     `json:"category"`
	StarterCode string     `json:"starterCode"`
	TestCases   []TestCase `json:"testCases"`
	Solution    string     `json:"solution,omitempty"`
	Explanation string     `json:"explanation,omitempty"`
}

// CountTestCases returns (public, hidden).
func (p *Problem) CountTestCases() (int, int) {
	public, hidden := 0, 0
	for _, tc := range p.TestCases {
		if tc.IsPublic {
			public++
		} else {
			hidden++
		}
	}
	return public, hidden
}
