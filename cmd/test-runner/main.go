// Command test-runner drives the repository's test suites. It fronts
// `go test` with named scopes so CI and the Makefile share one invocation
// surface:
//
//	test-runner test               run everything
//	test-runner test unit          short tests only
//	test-runner test integration   store/scoring integration tests
//	test-runner test functional    HTTP API end-to-end tests
//	test-runner lint               run golangci-lint when installed
//
// Exit codes and test output pass through from the spawned tool unmodified.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// Runner holds the flags shared by all test scopes.
type Runner struct {
	Pattern    string
	Timeout    time.Duration
	Verbose    bool
	FailFast   bool
	MaxRetries int
	Count      int
}

// scopes maps a scope name to the extra `go test` arguments selecting it.
// Suites are split by test-name convention rather than directory: functional
// suites are named *Functional*, integration tests *Integration*, and unit
// tests honor -short.
var scopes = map[string][]string{
	"unit":        {"-short"},
	"integration": {"-run", "Integration"},
	"functional":  {"-run", "Functional"},
}

func main() {
	runner := &Runner{}

	rootCmd := &cobra.Command{
		Use:           "test-runner",
		Short:         "Test and lint driver for the scoring service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	testCmd := &cobra.Command{
		Use:       "test [scope]",
		Short:     "Run the test suite, optionally limited to one scope",
		Long:      "Runs go test over the repository. Scope is one of: unit, integration, functional. Without a scope the full suite runs.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"unit", "integration", "functional"},
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := ""
			if len(args) == 1 {
				scope = args[0]
			}
			return runner.RunTests(cmd.Context(), scope)
		},
	}
	testCmd.Flags().StringVar(&runner.Pattern, "pattern", "./...", "package pattern to test")
	testCmd.Flags().DurationVar(&runner.Timeout, "timeout", 10*time.Minute, "timeout for the whole run")
	testCmd.Flags().BoolVar(&runner.Verbose, "verbose", true, "verbose test output")
	testCmd.Flags().BoolVar(&runner.FailFast, "fail-fast", false, "stop on first test failure")
	testCmd.Flags().IntVar(&runner.MaxRetries, "max-retries", 0, "retries for a failing run, for flaky environments")
	testCmd.Flags().IntVar(&runner.Count, "count", 1, "run each test N times, disabling the test cache")

	lintCmd := &cobra.Command{
		Use:   "lint",
		Short: "Run golangci-lint when it is installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.RunLint(cmd.Context())
		},
	}

	rootCmd.AddCommand(testCmd, lintCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Pass the spawned tool's exit code through unmodified.
			os.Exit(exitErr.ExitCode())
		}
		log.Fatal(err)
	}
}

// RunTests executes one scope of the suite.
func (r *Runner) RunTests(ctx context.Context, scope string) error {
	args := []string{"test"}
	if r.Verbose {
		args = append(args, "-v")
	}
	if r.FailFast {
		args = append(args, "-failfast")
	}
	if r.Count != 1 {
		args = append(args, fmt.Sprintf("-count=%d", r.Count))
	}
	args = append(args, fmt.Sprintf("-timeout=%s", r.Timeout))

	if scope != "" {
		extra, ok := scopes[scope]
		if !ok {
			return fmt.Errorf("unknown scope %q, want unit, integration or functional", scope)
		}
		args = append(args, extra...)
	}
	args = append(args, r.Pattern)

	var err error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("retrying failed run (attempt %d/%d)", attempt+1, r.MaxRetries+1)
		}
		err = r.run(ctx, "go", args...)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// RunLint runs golangci-lint if present on PATH and succeeds quietly
// otherwise, so the target stays usable on machines without the linter.
func (r *Runner) RunLint(ctx context.Context) error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		log.Printf("golangci-lint not installed, skipping lint")
		return nil
	}
	return r.run(ctx, "golangci-lint", "run", "./...")
}

func (r *Runner) run(ctx context.Context, name string, args ...string) error {
	log.Printf("exec: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}
