package testrunner

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/golox/interpreter"
)

type Result int

const (
	Pass Result = iota
	Fail
	Skip
	Error
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

type TestResult struct {
	Path    string
	Result  Result
	Message string
	Elapsed time.Duration
}

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int
	Elapsed time.Duration
}

type Config struct {
	Dir     string
	Filter  string
	Limit   int
	Verbose bool
	Timeout time.Duration
}

// expectation is the outcome a script declares in its comments:
//
//	// expect: <stdout line>
//	// expect error: <static diagnostic substring>
//	// expect runtime error: <message>
//
// A script with no expectation comments passes when it runs without error
// and prints nothing.
type expectation struct {
	Output       []string
	StaticErrors []string
	RuntimeError string
	HasRuntime   bool
}

// Run discovers .lox scripts under cfg.Dir, executes each in a fresh
// interpreter, and checks the outcome against the script's expectation
// comments.
func Run(cfg Config) ([]TestResult, Summary) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	var scripts []string
	filepath.Walk(cfg.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".lox") {
			return nil
		}
		if cfg.Filter != "" {
			rel, _ := filepath.Rel(cfg.Dir, path)
			if !strings.Contains(rel, cfg.Filter) {
				return nil
			}
		}
		scripts = append(scripts, path)
		return nil
	})

	if cfg.Limit > 0 && len(scripts) > cfg.Limit {
		scripts = scripts[:cfg.Limit]
	}

	start := time.Now()
	var results []TestResult
	var summary Summary
	summary.Total = len(scripts)

	for _, path := range scripts {
		rel, _ := filepath.Rel(cfg.Dir, path)
		tr := runScript(path, rel, cfg.Timeout)
		results = append(results, tr)

		switch tr.Result {
		case Pass:
			summary.Passed++
		case Fail:
			summary.Failed++
		case Skip:
			summary.Skipped++
		case Error:
			summary.Errors++
		}

		if cfg.Verbose {
			msg := ""
			if tr.Message != "" {
				msg = " " + tr.Message
			}
			fmt.Printf("%s %s%s\n", tr.Result, rel, msg)
		}
	}

	summary.Elapsed = time.Since(start)
	return results, summary
}

func parseExpectations(source string) expectation {
	var exp expectation
	for _, line := range strings.Split(source, "\n") {
		if idx := strings.Index(line, "// expect runtime error:"); idx >= 0 {
			exp.RuntimeError = strings.TrimSpace(line[idx+len("// expect runtime error:"):])
			exp.HasRuntime = true
			continue
		}
		if idx := strings.Index(line, "// expect error:"); idx >= 0 {
			exp.StaticErrors = append(exp.StaticErrors, strings.TrimSpace(line[idx+len("// expect error:"):]))
			continue
		}
		if idx := strings.Index(line, "// expect:"); idx >= 0 {
			exp.Output = append(exp.Output, strings.TrimSpace(line[idx+len("// expect:"):]))
		}
	}
	return exp
}

type evalResult struct {
	err error
}

func runScript(path, rel string, timeout time.Duration) TestResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return TestResult{Path: rel, Result: Error, Message: "read error: " + err.Error()}
	}

	exp := parseExpectations(string(source))

	start := time.Now()
	var stdout bytes.Buffer
	interp := interpreter.New(&stdout)

	resultCh := make(chan evalResult, 1)
	go func() {
		_, err := interp.Eval(string(source))
		resultCh <- evalResult{err: err}
	}()

	var res evalResult
	select {
	case res = <-resultCh:
	case <-time.After(timeout):
		return TestResult{Path: rel, Result: Error, Message: fmt.Sprintf("timeout (%s)", timeout), Elapsed: time.Since(start)}
	}
	elapsed := time.Since(start)

	fail := func(format string, args ...interface{}) TestResult {
		return TestResult{Path: rel, Result: Fail, Message: fmt.Sprintf(format, args...), Elapsed: elapsed}
	}

	var static *interpreter.StaticError
	var rt *interpreter.RuntimeError

	switch {
	case res.err == nil:
		if len(exp.StaticErrors) > 0 {
			return fail("expected static error")
		}
		if exp.HasRuntime {
			return fail("expected runtime error: %s", exp.RuntimeError)
		}

	case errors.As(res.err, &static):
		if len(exp.StaticErrors) == 0 {
			return fail("unexpected static error: %s", firstLine(static.Error()))
		}
		for _, want := range exp.StaticErrors {
			if !strings.Contains(static.Error(), want) {
				return fail("missing static error: %s", want)
			}
		}
		return TestResult{Path: rel, Result: Pass, Elapsed: elapsed}

	case errors.As(res.err, &rt):
		if !exp.HasRuntime {
			return fail("unexpected runtime error: %s", rt.Message)
		}
		if exp.RuntimeError != "" && rt.Message != exp.RuntimeError {
			return fail("runtime error %q, want %q", rt.Message, exp.RuntimeError)
		}
		return TestResult{Path: rel, Result: Pass, Elapsed: elapsed}

	default:
		return TestResult{Path: rel, Result: Error, Message: res.err.Error(), Elapsed: elapsed}
	}

	got := splitOutput(stdout.String())
	if len(got) != len(exp.Output) {
		return fail("got %d output lines, want %d", len(got), len(exp.Output))
	}
	for i, want := range exp.Output {
		if got[i] != want {
			return fail("output line %d: got %q, want %q", i+1, got[i], want)
		}
	}
	return TestResult{Path: rel, Result: Pass, Elapsed: elapsed}
}

func splitOutput(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
