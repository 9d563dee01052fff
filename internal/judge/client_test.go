package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// fakeJudge serves the Judge0 submit/poll surface. Output per stdin is
// scripted by the echo function.
type fakeJudge struct {
	mu          sync.Mutex
	submissions map[string]string // token -> stdin
	runs        int
	echo        func(stdin string) SubmissionResult
}

func newFakeJudge(echo func(stdin string) SubmissionResult) *fakeJudge {
	return &fakeJudge{
		submissions: make(map[string]string),
		echo:        echo,
	}
}

func (f *fakeJudge) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/submissions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SourceCode string `json:"source_code"`
			Stdin      string `json:"stdin"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		f.runs++
		token := fmt.Sprintf("tok-%d", f.runs)
		f.submissions[token] = req.Stdin
		f.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
	mux.HandleFunc("/submissions/", func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.URL.Path, "/submissions/")

		f.mu.Lock()
		stdin, ok := f.submissions[token]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(f.echo(stdin))
	})
	return mux
}

func acceptedResult(stdout string) SubmissionResult {
	var r SubmissionResult
	r.Status.ID = StatusAccepted
	r.Status.Description = "Accepted"
	r.Stdout = stdout
	return r
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, time.Millisecond, 5)
}

func TestNormalizeOutput(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello\n", "hello"},
		{"  a   b\tc  \n\n", "a b c"},
		{"1\n2\n3", "1 2 3"},
		{"", ""},
		{"   \n\t ", ""},
	}
	for _, c := range cases {
		if got := NormalizeOutput(c.in); got != c.want {
			t.Fatalf("NormalizeOutput(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRunSubmitsOnceAndPolls(t *testing.T) {
	judge := newFakeJudge(func(stdin string) SubmissionResult {
		return acceptedResult("out:" + stdin)
	})
	srv := httptest.NewServer(judge.handler())
	defer srv.Close()

	client := newTestClient(srv)
	result, err := client.Run(context.Background(), "print(x)", 71, "abc")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Stdout != "out:abc" {
		t.Fatalf("stdout = %q", result.Stdout)
	}
	if judge.runs != 1 {
		t.Fatalf("submitted %d times, want 1", judge.runs)
	}
}

func TestRunPollBudgetExhausted(t *testing.T) {
	judge := newFakeJudge(func(string) SubmissionResult {
		var r SubmissionResult
		r.Status.ID = 2 // processing, never terminal
		return r
	})
	srv := httptest.NewServer(judge.handler())
	defer srv.Close()

	client := newTestClient(srv)
	if _, err := client.Run(context.Background(), "loop()", 71, ""); !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("run = %v, want ErrPollTimeout", err)
	}
	// Never auto-retried.
	if judge.runs != 1 {
		t.Fatalf("submitted %d times, want 1", judge.runs)
	}
}

func TestExecuteCodeAllPass(t *testing.T) {
	judge := newFakeJudge(func(stdin string) SubmissionResult {
		// Echo with messy whitespace; normalization must absorb it.
		return acceptedResult("  " + stdin + " \n")
	})
	srv := httptest.NewServer(judge.handler())
	defer srv.Close()

	client := newTestClient(srv)
	grade, err := client.ExecuteCode(context.Background(), "echo", 71, []model.TestCase{
		{Input: "1", ExpectedOutput: "1"},
		{Input: "2", ExpectedOutput: "2\n"},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !grade.Success || grade.TestsPassed != 2 {
		t.Fatalf("grade = %+v, want full pass", grade)
	}
}

func TestExecuteCodeFailFast(t *testing.T) {
	judge := newFakeJudge(func(stdin string) SubmissionResult {
		if stdin == "2" {
			return acceptedResult("wrong")
		}
		return acceptedResult(stdin)
	})
	srv := httptest.NewServer(judge.handler())
	defer srv.Close()

	client := newTestClient(srv)
	grade, err := client.ExecuteCode(context.Background(), "echo", 71, []model.TestCase{
		{Input: "1", ExpectedOutput: "1"},
		{Input: "2", ExpectedOutput: "2"},
		{Input: "3", ExpectedOutput: "3"},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if grade.Success {
		t.Fatalf("mismatch must fail the grade")
	}
	if grade.FailedCase == nil || grade.FailedCase.Index != 1 {
		t.Fatalf("failed case = %+v, want index 1", grade.FailedCase)
	}
	if grade.TestsPassed != 1 {
		t.Fatalf("tests passed = %d, want 1", grade.TestsPassed)
	}
	// Fail-fast: the third case never ran.
	if judge.runs != 2 {
		t.Fatalf("ran %d cases, want 2", judge.runs)
	}
}

func TestExecuteCodeRuntimeErrorFailsCase(t *testing.T) {
	judge := newFakeJudge(func(string) SubmissionResult {
		var r SubmissionResult
		r.Status.ID = 11
		r.Status.Description = "Runtime Error (NZEC)"
		r.Stderr = "panic"
		return r
	})
	srv := httptest.NewServer(judge.handler())
	defer srv.Close()

	client := newTestClient(srv)
	grade, err := client.ExecuteCode(context.Background(), "boom", 71, []model.TestCase{
		{Input: "1", ExpectedOutput: "1"},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if grade.Success || grade.FailedCase == nil {
		t.Fatalf("runtime error must fail the case: %+v", grade)
	}
	if grade.FailedCase.Detail != "panic" {
		t.Fatalf("detail = %q, want stderr surfaced", grade.FailedCase.Detail)
	}
}
