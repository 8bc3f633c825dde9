// Package shell spawns a task's command as a subprocess (C7): it merges
// the hermetic toolchain environment with task overrides, wires output to
// the caller's writers or a PTY, and translates process exit into ports.ExecResult.
package shell

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
)

var _ ports.Executor = (*Executor)(nil)

// Executor runs a task's command with os/exec, optionally shell-wrapped or
// attached to a PTY for interactive tasks.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs req.Task's command with req.Env, rooted at req.Dir, streaming
// output to req.Stdout/req.Stderr. Environments are merged low-to-high
// priority: os.Environ(), then req.Env (the hermetic toolchain environment,
// PATH prepended rather than replaced), then the task's own Env overrides.
func (e *Executor) Execute(ctx context.Context, req ports.ExecRequest) (ports.ExecResult, error) {
	task := req.Task
	if task.Command == "" {
		return ports.ExecResult{}, nil
	}

	cmdEnv := resolveEnvironment(os.Environ(), req.Env, task.Env)

	name, args := task.Command, task.Args
	if task.Options.Shell {
		name, args = wrapInShell(task.Command, task.Args)
	}

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // command comes from task configuration
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Dir = req.Dir
	cmd.Env = cmdEnv

	if req.Interactive {
		return e.runInteractive(ctx, cmd)
	}

	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr

	if err := cmd.Run(); err != nil {
		return exitResult(ctx, err)
	}
	return ports.ExecResult{ExitCode: 0}, nil
}

// runInteractive attaches the command to a PTY and inherits the controlling
// terminal's stdin, for tasks with Options.Interactive set.
func (e *Executor) runInteractive(ctx context.Context, cmd *exec.Cmd) (ports.ExecResult, error) {
	f, err := pty.Start(cmd)
	if err != nil {
		return ports.ExecResult{}, zerr.Wrap(err, "start pty")
	}
	defer f.Close() //nolint:errcheck

	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(os.Stdout, f)
		close(done)
	}()
	go func() { _, _ = io.Copy(f, os.Stdin) }()

	err = cmd.Wait()
	<-done
	if err != nil {
		return exitResult(ctx, err)
	}
	return ports.ExecResult{ExitCode: 0}, nil
}

func exitResult(ctx context.Context, err error) (ports.ExecResult, error) {
	if ctx != nil && ctx.Err() != nil {
		return ports.ExecResult{ExitCode: -1, TimedOut: true}, zerr.With(domain.ErrActionTimedOut, "cause", ctx.Err().Error())
	}

	var exitCode int
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok {
		exitCode = exitErr.ExitCode()
	} else {
		exitCode = -1
	}
	return ports.ExecResult{ExitCode: exitCode}, zerr.With(zerr.Wrap(err, domain.ErrActionFailed.Error()), "exit_code", exitCode)
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}

// wrapInShell wraps command+args in "$SHELL -c" (fallback /bin/sh) on POSIX,
// or "powershell.exe -NoProfile -Command" on Windows. The joined command line
// is passed as an argument in both cases, not over stdin.
func wrapInShell(command string, args []string) (string, []string) {
	full := strings.Join(append([]string{command}, args...), " ")
	if runtime.GOOS == "windows" {
		return "powershell.exe", []string{"-NoProfile", "-Command", full}
	}
	sh := os.Getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}
	return sh, []string{"-c", full}
}

// resolveEnvironment merges environments with priority: system, then
// hermetic toolchain env (PATH prepended, not replaced), then task overrides.
func resolveEnvironment(sysEnv, toolchainEnv []string, taskEnv map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	for _, entry := range toolchainEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				envMap[k] = v + string(os.PathListSeparator) + sysPath
				continue
			}
		}
		envMap[k] = v
	}

	for k, v := range taskEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
