package shell_test

import (
	"bytes"
	"context"
	"testing"

	"go.strata.build/strata/internal/adapters/shell"
	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func TestExecutor_Execute(t *testing.T) {
	executor := shell.NewExecutor(nopLogger{})

	t.Run("Success", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		task := &domain.Task{
			ID:      "test",
			Command: "echo",
			Args:    []string{"hello"},
			Options: domain.DefaultTaskOptions(),
		}

		res, err := executor.Execute(context.Background(), ports.ExecRequest{
			Task: task, Dir: t.TempDir(), Stdout: &stdout, Stderr: &stderr,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ExitCode != 0 {
			t.Errorf("ExitCode = %d, want 0", res.ExitCode)
		}
		if got := stdout.String(); got != "hello\n" {
			t.Errorf("stdout = %q, want %q", got, "hello\n")
		}
	})

	t.Run("Failure", func(t *testing.T) {
		task := &domain.Task{
			ID:      "fail",
			Command: "sh",
			Args:    []string{"-c", "exit 1"},
			Options: domain.DefaultTaskOptions(),
		}

		res, err := executor.Execute(context.Background(), ports.ExecRequest{
			Task: task, Dir: t.TempDir(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{},
		})
		if err == nil {
			t.Fatal("expected an error")
		}
		if res.ExitCode != 1 {
			t.Errorf("ExitCode = %d, want 1", res.ExitCode)
		}
	})

	t.Run("EmptyCommand", func(t *testing.T) {
		task := &domain.Task{ID: "empty", Options: domain.DefaultTaskOptions()}

		res, err := executor.Execute(context.Background(), ports.ExecRequest{
			Task: task, Dir: t.TempDir(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ExitCode != 0 {
			t.Errorf("ExitCode = %d, want 0", res.ExitCode)
		}
	})
}
