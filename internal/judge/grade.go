package judge

import (
	"context"
	"strings"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// CaseResult reports one test case run.
type CaseResult struct {
	Index    int    `json:"index"`
	Passed   bool   `json:"passed"`
	Actual   string `json:"actual,omitempty"`
	Expected string `json:"expected,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// GradeResult is the outcome of grading a submission against a problem's
// ordered test cases.
type GradeResult struct {
	Success     bool         `json:"success"`
	TestsPassed int          `json:"testsPassed"`
	TestsTotal  int          `json:"testsTotal"`
	FailedCase  *CaseResult  `json:"failedCase,omitempty"`
	Cases       []CaseResult `json:"cases"`
}

// NormalizeOutput collapses runs of whitespace to single spaces and trims the
// ends, so trailing newlines and tab-vs-space differences never fail a case.
func NormalizeOutput(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExecuteCode grades source against the problem's test cases in order,
// failing fast on the first mismatch. Judge errors (compile failure, runtime
// error, poll exhaustion) count as a failure of the case being run.
func (c *Client) ExecuteCode(ctx context.Context, sourceCode string, languageID int, testCases []model.TestCase) (*GradeResult, error) {
	grade := &GradeResult{TestsTotal: len(testCases)}

	for i, tc := range testCases {
		result, err := c.Run(ctx, sourceCode, languageID, tc.Input)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed := CaseResult{Index: i, Detail: err.Error()}
			grade.FailedCase = &failed
			grade.Cases = append(grade.Cases, failed)
			return grade, nil
		}

		if result.Status.ID != StatusAccepted {
			failed := CaseResult{Index: i, Detail: result.Status.Description}
			if result.CompileOutput != "" {
				failed.Detail = result.CompileOutput
			} else if result.Stderr != "" {
				failed.Detail = result.Stderr
			}
			grade.FailedCase = &failed
			grade.Cases = append(grade.Cases, failed)
			return grade, nil
		}

		actual := NormalizeOutput(result.Stdout)
		expected := NormalizeOutput(tc.ExpectedOutput)
		if actual != expected {
			failed := CaseResult{Index: i, Actual: actual, Expected: expected}
			grade.FailedCase = &failed
			grade.Cases = append(grade.Cases, failed)
			return grade, nil
		}

		grade.TestsPassed++
		grade.Cases = append(grade.Cases, CaseResult{Index: i, Passed: true})
	}

	grade.Success = grade.TestsPassed == grade.TestsTotal
	return grade, nil
}
