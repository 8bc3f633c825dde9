package domain

import "time"

// OutputStyle controls how the task runner's reporter presents captured output.
type OutputStyle string

const (
	// OutputStyleBuffer buffers output and prints it all at once on completion.
	OutputStyleBuffer OutputStyle = "buffer"
	// OutputStyleStream streams output live as it is produced.
	OutputStyleStream OutputStyle = "stream"
	// OutputStyleHash only prints the hash, suppressing command output.
	OutputStyleHash OutputStyle = "hash"
	// OutputStyleNone suppresses all output.
	OutputStyleNone OutputStyle = "none"
)

// TaskDependency is one entry in a task's declared dependency list.
type TaskDependency struct {
	Target   Target
	Optional bool
}

// TaskOptions groups the task-level toggles spec.md §3 defines.
type TaskOptions struct {
	// Cache, if false, means the task is never hashed and never restored from cache.
	Cache bool
	// Persistent tasks never terminate voluntarily (e.g. dev servers); they are
	// scheduled last and may have no RunTask dependents.
	Persistent bool
	// Interactive tasks reserve stdin and cannot run concurrently with another
	// interactive task.
	Interactive bool
	// RunInCI controls whether the task runs under CI.
	RunInCI bool
	// RunFromWorkspaceRoot, if true, spawns the process with the workspace root
	// as its working directory instead of the project root.
	RunFromWorkspaceRoot bool
	// Shell, if true, wraps the command in the platform shell.
	Shell bool
	// RetryCount is how many additional attempts are made after a failing exit.
	RetryCount int
	// OutputStyle controls reporter presentation of captured output.
	OutputStyle OutputStyle
	// MergeEnv, MergeInputs, MergeOutputs, MergeDeps control whether this task's
	// lists were merged with, or replaced, the project/workspace defaults they
	// inherit from. Resolved entirely by the configuration collaborator; carried
	// here only because Task is its post-merge, fully resolved form.
	MergeEnv     bool
	MergeInputs  bool
	MergeOutputs bool
	MergeDeps    bool
	// AllowFailure means a failing exit does not abort dependents. No other task
	// may declare a dependency on an allow-failure task (builder invariant).
	AllowFailure bool
	// ExpectOutputs, when true (the default), makes a missing declared output
	// after a successful exit an Invalid status rather than merely a warning.
	ExpectOutputs bool
	// Mutex, if non-empty, names a pipeline-wide FIFO mutex this task must hold
	// for the duration of its execute step.
	Mutex string
	// Timeout, if non-zero, bounds the task's execute step; expiry behaves as a
	// cancellation of that task alone and yields TimedOut.
	Timeout time.Duration
}

// DefaultTaskOptions returns the defaults spec.md names explicitly: cache on,
// expect_outputs on, buffered output, everything else off.
func DefaultTaskOptions() TaskOptions {
	return TaskOptions{
		Cache:         true,
		ExpectOutputs: true,
		OutputStyle:   OutputStyleBuffer,
	}
}

// Task is a unit of work a project exposes, fully resolved (globs expanded,
// merges applied) by the configuration collaborator.
type Task struct {
	ID     Id
	Target Target

	Command string
	Args    []string

	// Dependencies are other targets (qualified or scoped) this task must run after.
	Dependencies []TaskDependency

	Env map[string]string

	// Inputs are workspace-relative file paths, already glob-expanded.
	Inputs []string
	// InputEnvVars are names of environment variables that participate in the
	// task's cache key, by their resolved value.
	InputEnvVars []string
	// Outputs are workspace-relative file or directory paths the task declares.
	Outputs []string

	// Toolchains are the toolchain ids the task runs against.
	Toolchains []Id

	Options TaskOptions
}

// RequiresToolchainSetup reports whether the task names any toolchain at all.
func (t *Task) RequiresToolchainSetup() bool {
	return len(t.Toolchains) > 0
}
