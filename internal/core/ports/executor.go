package ports

import (
	"context"
	"io"

	"go.strata.build/strata/internal/core/domain"
)

// ExecRequest bundles everything Executor.Execute needs to spawn a task's
// command, already fully resolved by the task runner.
type ExecRequest struct {
	Task    *domain.Task
	Dir     string
	Env     []string
	Stdout  io.Writer
	Stderr  io.Writer
	// Interactive, if true, attaches the process to a PTY and inherits stdin
	// instead of closing it.
	Interactive bool
}

// ExecResult reports how a spawned process finished.
type ExecResult struct {
	ExitCode int
	TimedOut bool
}

// Executor spawns a task's command as a subprocess (C7, the process layer).
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	Execute(ctx context.Context, req ExecRequest) (ExecResult, error)
}
